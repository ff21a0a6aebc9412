// Package hooks invokes an external command after task mutations.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Events passed to the hook command.
const (
	EventAdd    = "add"
	EventUpdate = "update"
	EventToggle = "toggle"
	EventRemove = "remove"
)

const (
	// maxOutput caps the captured hook output.
	maxOutput = 64 * 1024
	// waitDelay bounds how long Invoke waits for output pipes after the
	// hook exits or is killed.
	waitDelay = time.Second
)

// Options configures a hook invocation.
type Options struct {
	Command string
	Event   string
	TaskID  int64
	Key     string
	// Payload is written to the hook's stdin, usually the task's JSON.
	Payload string
	WorkDir string
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
	Output   string
}

// Invoke runs the hook command as `<command> <event> <id> <key>`.
// Output is captured rather than inherited so it cannot draw over the
// terminal UI. An empty command is a no-op.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if strings.TrimSpace(opts.Command) == "" {
		return Result{}, nil
	}
	if opts.Event == "" {
		return Result{}, errors.New("hook event is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	id := strconv.FormatInt(opts.TaskID, 10)
	cmd := exec.CommandContext(ctx, opts.Command, opts.Event, id, opts.Key)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = append(os.Environ(),
		"TASKPAD_EVENT="+opts.Event,
		"TASKPAD_TASK_ID="+id,
		"TASKPAD_TASK_KEY="+opts.Key,
	)
	cmd.Stdin = strings.NewReader(opts.Payload)
	cmd.WaitDelay = waitDelay

	var out cappedBuffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
		Output:   strings.TrimSpace(out.String()),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

// Check reports whether command can be started. An empty command is valid.
func Check(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}

	if strings.ContainsRune(command, filepath.Separator) || strings.ContainsRune(command, '/') {
		info, err := os.Stat(command)
		if err != nil {
			return fmt.Errorf("hook command: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("hook command is a directory: %s", command)
		}
		if runtime.GOOS == "windows" {
			if !hasExecutableExt(command, os.Getenv("PATHEXT")) {
				return fmt.Errorf("hook command is not executable: %s", command)
			}
			return nil
		}
		if info.Mode().Perm()&0111 == 0 {
			return fmt.Errorf("hook command is not executable: %s", command)
		}
		return nil
	}

	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("hook command not found: %w", err)
	}
	return nil
}

// hasExecutableExt matches the extension of path against a PATHEXT list.
func hasExecutableExt(path, pathext string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	for _, e := range strings.Split(pathext, ";") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// cappedBuffer keeps the first maxOutput bytes and discards the rest.
type cappedBuffer struct {
	buf bytes.Buffer
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := maxOutput - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
