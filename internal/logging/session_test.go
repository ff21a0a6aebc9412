package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewSessionLog(t *testing.T) {
	t.Run("successful creation with valid paths", func(t *testing.T) {
		session, err := NewSessionLog(t.TempDir(), t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer session.Close()

		if session.Dir == "" || session.RunID == "" || session.LogPath == "" {
			t.Errorf("expected fields to be set, got %+v", session)
		}
		if _, err := os.Stat(session.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
		if !strings.HasSuffix(session.LogPath, session.RunID+".jsonl") {
			t.Errorf("unexpected log path %s", session.LogPath)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		_, err := NewSessionLog("", t.TempDir())
		if err == nil {
			t.Fatal("expected error for empty base dir, got nil")
		}
		if !strings.Contains(err.Error(), "empty") {
			t.Errorf("expected empty dir error, got %v", err)
		}
	})

	t.Run("creates log directory if missing", func(t *testing.T) {
		newLogDir := filepath.Join(t.TempDir(), "new-logs", "nested")

		session, err := NewSessionLog(newLogDir, t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer session.Close()

		if _, err := os.Stat(newLogDir); err != nil {
			t.Errorf("log directory not created: %v", err)
		}
	})
}

func TestSessionLogLogger(t *testing.T) {
	session, err := NewSessionLog(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	logger := session.Logger(OptionsFromConfig("debug", "text", false, false))
	logger.Info("saved task", "key", "todo:9")
	if err := session.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(session.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", line, err)
	}
	if entry["msg"] != "saved task" || entry["key"] != "todo:9" {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp in session log entries")
	}
}

func TestSessionLogNil(t *testing.T) {
	var session *SessionLog
	if err := session.Close(); err != nil {
		t.Errorf("Close on nil session = %v", err)
	}
	if _, err := session.Writer().Write([]byte("x")); err != nil {
		t.Errorf("Writer on nil session = %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"my-project", "my-project"},
		{"My Project", "My_Project"},
		{"a//b", "a_b"},
		{"   ", "project"},
		{"***", "project"},
		{"v1.2_final", "v1.2_final"},
	}

	for _, tt := range tests {
		if got := slugify(tt.input); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHashPath(t *testing.T) {
	a := hashPath("/home/me/project")
	if len(a) != 8 {
		t.Errorf("expected 8 hex chars, got %q", a)
	}
	if a != hashPath("/home/me/project") {
		t.Error("hash should be stable")
	}
	if a == hashPath("/home/me/other") {
		t.Error("different paths should hash differently")
	}
}

func TestProjectSlug(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "taskpad")
	got := projectSlug(root)
	if !strings.HasPrefix(got, "taskpad-") || len(got) != len("taskpad-")+8 {
		t.Errorf("projectSlug(%q) = %q", root, got)
	}
}

func TestRunID(t *testing.T) {
	id := runID()
	if !strings.HasSuffix(id, "-"+strconv.Itoa(os.Getpid())) {
		t.Errorf("runID %q should end with the pid", id)
	}
	if _, err := time.Parse("20060102-150405", id[:15]); err != nil {
		t.Errorf("runID %q should start with a timestamp: %v", id, err)
	}
}

func TestResolveBaseDir(t *testing.T) {
	work := filepath.Join(string(filepath.Separator), "work")
	abs := filepath.Join(string(filepath.Separator), "var", "log")

	if got := resolveBaseDir(abs, work); got != abs {
		t.Errorf("absolute base dir changed: %s", got)
	}
	if got, want := resolveBaseDir("logs", work), filepath.Join(work, "logs"); got != want {
		t.Errorf("resolveBaseDir = %s, want %s", got, want)
	}
}

func TestFindLogDir(t *testing.T) {
	t.Run("is under the base dir", func(t *testing.T) {
		baseDir := t.TempDir()
		logDir, err := FindLogDir(baseDir, t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(logDir, baseDir) {
			t.Errorf("log directory %s should be under %s", logDir, baseDir)
		}
	})

	t.Run("matches the session log dir", func(t *testing.T) {
		baseDir, workDir := t.TempDir(), t.TempDir()
		session, err := NewSessionLog(baseDir, workDir)
		if err != nil {
			t.Fatal(err)
		}
		defer session.Close()

		logDir, err := FindLogDir(baseDir, workDir)
		if err != nil {
			t.Fatal(err)
		}
		if logDir != session.Dir {
			t.Errorf("FindLogDir = %s, session dir = %s", logDir, session.Dir)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		if _, err := FindLogDir("", t.TempDir()); err == nil {
			t.Fatal("expected error for empty base dir, got nil")
		}
	})
}

func TestFindLatestLog(t *testing.T) {
	t.Run("finds latest log in directory", func(t *testing.T) {
		logDir := t.TempDir()
		base := time.Now().Add(-time.Hour)
		for i, name := range []string{"a.jsonl", "c.jsonl", "b.jsonl"} {
			path := filepath.Join(logDir, name)
			if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
				t.Fatal(err)
			}
			mod := base.Add(time.Duration(i) * time.Minute)
			if err := os.Chtimes(path, mod, mod); err != nil {
				t.Fatal(err)
			}
		}

		latest, err := FindLatestLog(logDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if filepath.Base(latest) != "b.jsonl" {
			t.Errorf("expected b.jsonl, got %s", latest)
		}
	})

	t.Run("returns empty for non-existent directory", func(t *testing.T) {
		latest, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
		if err != nil {
			t.Fatalf("expected no error for non-existent dir, got %v", err)
		}
		if latest != "" {
			t.Errorf("expected empty path, got %s", latest)
		}
	})

	t.Run("ignores non-jsonl files and subdirectories", func(t *testing.T) {
		logDir := t.TempDir()
		os.WriteFile(filepath.Join(logDir, "readme.txt"), []byte("readme"), 0644)
		os.Mkdir(filepath.Join(logDir, "sub.jsonl"), 0755)

		latest, err := FindLatestLog(logDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if latest != "" {
			t.Errorf("expected no log, got %s", latest)
		}
	})
}

func TestTailLog(t *testing.T) {
	ctx := context.Background()
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "test.jsonl")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("tails entire file when n=0", func(t *testing.T) {
		content := "line1\nline2\nline3\n"
		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, write(t, content), 0, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if buf.String() != content {
			t.Errorf("got %q, want %q", buf.String(), content)
		}
	})

	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"last two lines", "line1\nline2\nline3\nline4\nline5\n", 2, "line4\nline5\n"},
		{"no trailing newline", "line1\nline2\nline3", 2, "line2\nline3"},
		{"more lines than file", "line1\nline2\n", 10, "line1\nline2\n"},
		{"empty file", "", 3, ""},
		{"long file", strings.Repeat("x\n", 5000) + "end\n", 1, "end\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(ctx, &buf, write(t, tt.content), tt.n, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("returns error for non-existent file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, filepath.Join(t.TempDir(), "missing.jsonl"), 0, false); err == nil {
			t.Fatal("expected error for non-existent file, got nil")
		}
	})

	t.Run("follow mode with file write", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("skipping follow test on Windows due to file locking issues")
		}

		path := write(t, "initial\n")
		followCtx, cancel := context.WithCancel(ctx)
		var buf syncBuffer
		done := make(chan error, 1)
		go func() {
			done <- TailLog(followCtx, &buf, path, 0, true)
		}()

		time.Sleep(50 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.WriteString("appended line\n"); err != nil {
			t.Fatal(err)
		}
		f.Close()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) && !strings.Contains(buf.String(), "appended") {
			time.Sleep(20 * time.Millisecond)
		}
		cancel()

		if err := <-done; err != nil {
			t.Errorf("follow returned %v", err)
		}
		got := buf.String()
		if !strings.Contains(got, "initial") || !strings.Contains(got, "appended") {
			t.Errorf("unexpected follow output %q", got)
		}
	})
}
