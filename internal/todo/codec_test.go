package todo

import (
	"errors"
	"strings"
	"testing"
)

func TestMarshalRoundTrip(t *testing.T) {
	tasks := []Task{
		{ID: 1, Title: "a", Description: "", Completed: false, DateCreated: "June 10, 2024 at 02:53 PM"},
		{ID: 1718031234567, Title: "Write report", Description: "Q3 summary", Completed: true, DateCreated: "x"},
		{ID: 9007199254740993, Title: "unicode ✓ \"quoted\"", Description: "line1\nline2", DateCreated: ""},
	}

	for _, want := range tasks {
		value, err := Marshal(want)
		if err != nil {
			t.Fatalf("Marshal(%+v) error: %v", want, err)
		}
		got, err := Unmarshal(value)
		if err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", value, err)
		}
		if got != want {
			t.Errorf("round trip = %+v, want %+v", got, want)
		}
	}
}

func TestMarshalFieldNames(t *testing.T) {
	value, err := Marshal(Task{ID: 3, Title: "t", DateCreated: "d"})
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"id":3`, `"title":"t"`, `"description":""`, `"completed":false`, `"dateCreated":"d"`} {
		if !strings.Contains(value, field) {
			t.Errorf("Marshal() = %s, missing %s", value, field)
		}
	}
}

func TestUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantPath string
	}{
		{"not json", `not json`, ""},
		{"empty", ``, ""},
		{"array", `[1,2]`, ""},
		{"trailing data", `{"id":1,"title":"a","description":"","completed":false,"dateCreated":""} {}`, ""},
		{"missing title", `{"id":1,"description":"","completed":false,"dateCreated":""}`, ""},
		{"string id", `{"id":"1","title":"a","description":"","completed":false,"dateCreated":""}`, "id"},
		{"fractional id", `{"id":1.5,"title":"a","description":"","completed":false,"dateCreated":""}`, "id"},
		{"zero id", `{"id":0,"title":"a","description":"","completed":false,"dateCreated":""}`, "id"},
		{"completed string", `{"id":1,"title":"a","description":"","completed":"yes","dateCreated":""}`, "completed"},
		{"null title", `{"id":1,"title":null,"description":"","completed":false,"dateCreated":""}`, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.value)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantPath == "" {
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if ve.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", ve.Path, tt.wantPath)
			}
		})
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	got, err := Unmarshal(`{"id":5,"title":"a","description":"b","completed":true,"dateCreated":"c","color":"red"}`)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	want := Task{ID: 5, Title: "a", Description: "b", Completed: true, DateCreated: "c"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestValidationErrorFormat(t *testing.T) {
	base := errors.New("boom")
	withPath := &ValidationError{Path: "id", Err: base}
	if withPath.Error() != "id: boom" {
		t.Errorf("Error() = %q", withPath.Error())
	}
	if (&ValidationError{Err: base}).Error() != "boom" {
		t.Error("expected bare message without path")
	}
	if !errors.Is(withPath, base) {
		t.Error("expected Unwrap to expose the cause")
	}
}
