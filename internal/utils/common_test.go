package utils

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SQLite", "sqlite"},
		{"  Done\t", "done"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short", "milk", 10, "milk"},
		{"exact", "milk", 4, "milk"},
		{"cut", "write the report", 8, "write..."},
		{"tiny max", "report", 2, "re"},
		{"zero", "report", 0, ""},
		{"runes", "café au lait", 6, "caf..."},
		{"multibyte kept whole", "日本語のテキスト", 5, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"#", ""},
		{"/title", "title"},
		{"#/tasks/0/title", "tasks[0].title"},
		{"/a~1b/c~0d", "a/b.c~d"},
		{"/0", "[0]"},
	}

	for _, tt := range tests {
		if got := JSONPointerToPath(tt.input); got != tt.want {
			t.Errorf("JSONPointerToPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
