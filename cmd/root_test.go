// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/nibzard/taskpad/internal/export"
)

var taskpadEnv = []string{
	"TASKPAD_BACKEND", "TASKPAD_DATA_DIR", "TASKPAD_DSN", "TASKPAD_TIMEOUT",
	"TASKPAD_CACHE_TTL", "TASKPAD_FETCH_WORKERS", "TASKPAD_HOOK", "TASKPAD_LOG_DIR",
	"TASKPAD_LOG_LEVEL", "TASKPAD_LOG_FORMAT", "TASKPAD_LOG_TIMESTAMPS",
	"TASKPAD_LOG_CALLER", "TASKPAD_VIEW",
}

// isolate points HOME and the working directory at temp dirs and returns
// global flags that keep storage and logs inside them.
func isolate(t *testing.T) (project string, globals []string) {
	t.Helper()
	home := t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range taskpadEnv {
		t.Setenv(name, "")
	}
	t.Chdir(project)

	old := logStderr
	logStderr = io.Discard
	t.Cleanup(func() { logStderr = old })

	return project, []string{
		"--data-dir", filepath.Join(project, "data"),
		"--log-dir", filepath.Join(project, "logs"),
	}
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()

	runErr := fn()
	_ = w.Close()

	output, readErr := io.ReadAll(r)
	_ = r.Close()
	if readErr != nil {
		t.Fatalf("ReadAll() error = %v", readErr)
	}

	return string(output), runErr
}

// run executes the CLI with globals prepended and returns stdout.
func run(t *testing.T, globals []string, args ...string) (string, error) {
	t.Helper()
	return captureStdout(t, func() error {
		return Run(context.Background(), append(append([]string{}, globals...), args...))
	})
}

func mustRun(t *testing.T, globals []string, args ...string) string {
	t.Helper()
	out, err := run(t, globals, args...)
	if err != nil {
		t.Fatalf("taskpad %v: %v\n%s", args, err, out)
	}
	return out
}

var addedRe = regexp.MustCompile(`Added (\d+): `)

func addedID(t *testing.T, out string) string {
	t.Helper()
	m := addedRe.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no id in %q", out)
	}
	return m[1]
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	_, globals := isolate(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"help flag", []string{"--help"}, "Commands:"},
		{"short help flag", []string{"-h"}, "Commands:"},
		{"help command", []string{"help"}, "Commands:"},
		{"version flag", []string{"--version"}, "taskpad version dev"},
		{"version command", []string{"version"}, "taskpad version dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, globals, tt.args...)
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}

	t.Run("unknown command returns error", func(t *testing.T) {
		_, err := run(t, globals, "unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("bad config value", func(t *testing.T) {
		_, err := run(t, nil, "--backend", "redis", "ls")
		if err == nil || !strings.Contains(err.Error(), "loading config") {
			t.Errorf("expected config error, got %v", err)
		}
	})
}

func TestTaskCommands(t *testing.T) {
	_, globals := isolate(t)

	id := addedID(t, mustRun(t, globals, "add", "Buy milk", "two liters"))
	mustRun(t, globals, "add", "Walk dog")

	out := mustRun(t, globals, "ls")
	if !strings.Contains(out, "Todos (2):") || strings.Index(out, "Walk dog") > strings.Index(out, "Buy milk") {
		t.Errorf("ls should list newest first:\n%s", out)
	}

	out = mustRun(t, globals, "ls", "-search", "MILK", "-v")
	if !strings.Contains(out, "Todos (1):") || !strings.Contains(out, "Description: two liters") {
		t.Errorf("search output:\n%s", out)
	}

	out = mustRun(t, globals, "done", id)
	if !strings.Contains(out, "Completed "+id) {
		t.Errorf("done output: %q", out)
	}
	out = mustRun(t, globals, "ls", "-view", "completed", "-json")
	var doc export.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("ls -json: %v\n%s", err, out)
	}
	if doc.Title != "Completed" || doc.Count != 1 || doc.Tasks[0].Title != "Buy milk" || !doc.Tasks[0].Completed {
		t.Errorf("unexpected document %+v", doc)
	}

	out = mustRun(t, globals, "edit", "todo:"+id, "Buy oat milk")
	if !strings.Contains(out, "Updated "+id+": Buy oat milk") {
		t.Errorf("edit output: %q", out)
	}
	out = mustRun(t, globals, "ls", "-view", "done", "-v")
	if !strings.Contains(out, "Buy oat milk") || !strings.Contains(out, "two liters") {
		t.Errorf("edit should keep the description:\n%s", out)
	}

	out = mustRun(t, globals, "rm", id)
	if !strings.Contains(out, "Deleted "+id) {
		t.Errorf("rm output: %q", out)
	}
	if _, err := run(t, globals, "rm", id); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("second rm should fail with not found, got %v", err)
	}
	if out := mustRun(t, globals, "ls", "-view", "completed"); !strings.Contains(out, "No tasks found.") {
		t.Errorf("completed view should be empty:\n%s", out)
	}
}

func TestTaskCommandErrors(t *testing.T) {
	_, globals := isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"add without title", []string{"add"}},
		{"add blank title", []string{"add", "   "}},
		{"edit missing title", []string{"edit", "1"}},
		{"edit unknown id", []string{"edit", "99", "x"}},
		{"done bad id", []string{"done", "abc"}},
		{"done unknown id", []string{"done", "99"}},
		{"rm no id", []string{"rm"}},
		{"ls bad view", []string{"ls", "-view", "archived"}},
		{"ls extra args", []string{"ls", "extra"}},
		{"export bad format", []string{"export", "-format", "csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, globals, tt.args...); err == nil {
				t.Errorf("taskpad %v: expected error", tt.args)
			}
		})
	}

	if out := mustRun(t, globals, "ls"); !strings.Contains(out, "Todos (0):") {
		t.Errorf("failed commands should not add tasks:\n%s", out)
	}
}

func TestExportCommand(t *testing.T) {
	project, globals := isolate(t)
	mustRun(t, globals, "add", "Buy milk")

	yamlPath := filepath.Join(project, "tasks.yaml")
	mustRun(t, globals, "export", "-o", yamlPath)
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "title: Buy milk") {
		t.Errorf("expected YAML inferred from extension:\n%s", data)
	}

	pdfPath := filepath.Join(project, "report.out")
	mustRun(t, globals, "export", "-format", "pdf", "-o", pdfPath)
	data, err = os.ReadFile(pdfPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Error("expected a PDF document")
	}

	out := mustRun(t, globals, "export")
	if !strings.Contains(out, `"title": "Todos"`) {
		t.Errorf("default export should be JSON on stdout:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	project, globals := isolate(t)

	out := mustRun(t, globals, "config", "-sources")
	for _, want := range []string{"# config files: none", "storage.data_dir", "flag", "[storage]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, globals, "init-config")
	if !strings.Contains(out, "[storage]") {
		t.Errorf("init-config should print the example:\n%s", out)
	}

	out = mustRun(t, globals, "init-config", "-w")
	path := filepath.Join(project, "taskpad.toml")
	if !strings.Contains(out, "Wrote "+path) {
		t.Errorf("init-config -w output: %q", out)
	}
	out = mustRun(t, globals, "init-config", "-w")
	if !strings.Contains(out, "Skipped") {
		t.Errorf("second init-config -w should skip: %q", out)
	}

	out = mustRun(t, globals, "config", "-sources")
	if !strings.Contains(out, "# config file: "+path) {
		t.Errorf("written config should be picked up:\n%s", out)
	}
}

func TestDoctorCommand(t *testing.T) {
	project, globals := isolate(t)

	out, err := run(t, globals, "doctor", "-v")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All checks passed") || !strings.Contains(out, "0 task(s)") {
		t.Errorf("doctor output:\n%s", out)
	}

	bad := append(append([]string{}, globals...), "--hook", filepath.Join(project, "missing-hook.sh"))
	out, err = run(t, bad, "doctor")
	if err == nil {
		t.Errorf("doctor should fail for a missing hook:\n%s", out)
	}
}

func TestTailCommand(t *testing.T) {
	_, globals := isolate(t)

	if out := mustRun(t, globals, "tail"); !strings.Contains(out, "No log files found.") {
		t.Errorf("tail before any session: %q", out)
	}

	mustRun(t, append(append([]string{}, globals...), "--log-level", "debug"), "add", "Buy milk")
	out := mustRun(t, globals, "tail", "-n", "5")
	if !strings.Contains(out, "Tailing:") || !strings.Contains(out, ".jsonl") {
		t.Errorf("tail output:\n%s", out)
	}
}

func TestTUIRequiresTTY(t *testing.T) {
	_, globals := isolate(t)

	_, err := run(t, globals)
	if err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Errorf("expected TTY error, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{" 1712345678901 ", 1712345678901, false},
		{"todo:7", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"todo:007", 0, true},
	}

	for _, tt := range tests {
		got, err := parseID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseID(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name, flag, output string
		want               export.Format
		wantErr            bool
	}{
		{"flag wins", "pdf", "out.yaml", export.FormatPDF, false},
		{"from extension", "", "out.yml", export.FormatYAML, false},
		{"unknown extension", "", "out.txt", export.FormatJSON, false},
		{"stdout", "", "", export.FormatJSON, false},
		{"bad flag", "xml", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveFormat(tt.flag, tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
