package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad/internal/config"
	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/logging"
	"github.com/nibzard/taskpad/internal/tasklist"
	"github.com/nibzard/taskpad/internal/todo"
)

// logMode selects where an app logs.
type logMode int

const (
	// logConsole logs to stderr only. Used by read-only commands.
	logConsole logMode = iota
	// logSession logs to stderr and a new session file.
	logSession
	// logFileOnly logs only to a new session file, for when the TUI owns
	// the terminal.
	logFileOnly
)

// logStderr is where console logs go. Tests replace it.
var logStderr io.Writer = os.Stderr

// app bundles the storage, store and controller one command works with.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	session *logging.SessionLog
	storage kv.Storage
	store   *todo.Store
	ctrl    *tasklist.Controller
}

// openApp opens storage from cfg and loads the task list.
func openApp(ctx context.Context, cfg *config.Config, mode logMode) (*app, error) {
	a := &app{cfg: cfg}
	opts := logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	switch mode {
	case logConsole:
		a.logger = logging.New(logStderr, opts)
	case logSession, logFileOnly:
		session, err := logging.NewSessionLog(cfg.LogDir, cfg.ProjectRoot)
		if err != nil {
			return nil, fmt.Errorf("opening session log: %w", err)
		}
		a.session = session
		if mode == logFileOnly {
			a.logger = session.Logger(opts)
		} else {
			a.logger = logging.New(io.MultiWriter(logStderr, session.Writer()), opts)
		}
	}

	storage, err := kv.Open(kv.Options{
		Backend:  cfg.Storage.Backend,
		DataDir:  cfg.Storage.DataDir,
		DSN:      cfg.Storage.DSN,
		CacheTTL: cfg.CacheTTL(),
	})
	if err != nil {
		_ = a.session.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	a.storage = storage
	a.logger.Debug("storage opened", "backend", cfg.Storage.Backend, "data_dir", cfg.Storage.DataDir)

	view, err := tasklist.ParseView(cfg.DefaultView)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.store = todo.NewStore(storage,
		todo.WithLogger(a.logger),
		todo.WithFetchWorkers(cfg.Storage.FetchWorkers),
		todo.WithTimeout(cfg.StorageTimeout()),
	)
	a.ctrl = tasklist.New(a.store,
		tasklist.WithLogger(a.logger),
		tasklist.WithHook(cfg.HookCommand, cfg.ProjectRoot),
		tasklist.WithView(view),
	)
	a.ctrl.Initialize(ctx)
	return a, nil
}

// flush retries failed writes once and reports the ones that are lost.
func (a *app) flush(ctx context.Context) error {
	if a.ctrl.Pending() == 0 {
		return nil
	}
	if n := a.ctrl.Reconcile(ctx); n > 0 {
		return fmt.Errorf("%d change(s) could not be saved to %s storage", n, a.cfg.Storage.Backend)
	}
	return nil
}

// Close releases storage and the session log.
func (a *app) Close() error {
	var errs []error
	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}
	errs = append(errs, a.session.Close())
	return errors.Join(errs...)
}
