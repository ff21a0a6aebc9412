// Package ui provides the terminal interface for the task list.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskpad/internal/tasklist"
)

// DefaultReconcileInterval is how often the TUI retries failed writes.
const DefaultReconcileInterval = 30 * time.Second

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	reconcileInterval time.Duration
	altScreen         bool
}

// WithReconcileInterval sets how often pending writes are retried in the
// background. Zero disables the retry tick.
func WithReconcileInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		c.reconcileInterval = d
	}
}

// WithAltScreen controls whether the TUI takes over the whole terminal.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

// RunTUI starts the TUI over ctrl and blocks until the user quits or ctx
// is cancelled.
func RunTUI(ctx context.Context, ctrl *tasklist.Controller, opts ...TUIOption) error {
	c := &tuiConfig{
		reconcileInterval: DefaultReconcileInterval,
		altScreen:         true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(ctx, ctrl, c.reconcileInterval)
	return runProgram(ctx, model, c.altScreen)
}

func runProgram(ctx context.Context, model *tuiModel, altScreen bool) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(model, programOpts...)
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
