package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/taskpad/internal/config"
	"github.com/nibzard/taskpad/internal/hooks"
	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/logging"
	"github.com/nibzard/taskpad/internal/taskdir"
	"github.com/nibzard/taskpad/internal/todo"
)

// configCommand prints the effective configuration as TOML.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskpad config", flag.ContinueOnError)
	showSources := fs.Bool("sources", false, "Show where each value came from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if *showSources {
		if len(cws.Files) == 0 {
			fmt.Println("# config files: none")
		}
		for _, f := range cws.Files {
			fmt.Printf("# config file: %s\n", f)
		}
		keys := make([]string, 0, len(cws.Sources))
		for k := range cws.Sources {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Printf("# %-26s %s\n", k, cws.Sources[k])
		}
		fmt.Println()
	}

	if err := toml.NewEncoder(os.Stdout).Encode(cws.Config); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// initConfigCommand prints the example config or writes it to disk.
func initConfigCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad init-config", flag.ContinueOnError)
	write := fs.Bool("w", false, "Write taskpad.toml in the project root")
	user := fs.Bool("user", false, "Write the user config (~/.taskpad/taskpad.toml)")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var path string
	switch {
	case *user:
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		path = taskdir.ConfigPath(home)
	case *write:
		path = filepath.Join(cfg.ProjectRoot, taskdir.DefaultConfigFile)
	default:
		fmt.Print(config.ExampleConfig())
		return nil
	}

	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Printf("Skipped %s (already exists, use -force to overwrite)\n", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// tailCommand tails the latest session log.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad tail", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	workDir := cfg.ProjectRoot
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, workDir)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	return logging.TailLog(ctx, os.Stdout, logPath, *n, *follow)
}

// doctorCommand checks the project root, storage, hook and log directory.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskpad doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Println("taskpad doctor")
	fmt.Println("==============")
	fmt.Println()

	allOK := true

	fmt.Printf("Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	fmt.Println("Config:")
	if file := cws.GetConfigFile(); file != "" {
		fmt.Printf("  ✅ %s\n", file)
	} else {
		fmt.Println("  ⚠️  No config file (using defaults, run 'taskpad init-config -w')")
	}
	fmt.Println()

	if !checkStorage(ctx, cfg, *verbose) {
		allOK = false
	}
	fmt.Println()

	fmt.Println("Hook:")
	if cfg.HookCommand == "" {
		fmt.Println("  ⚠️  Not configured")
	} else if err := hooks.Check(cfg.HookCommand); err != nil {
		fmt.Printf("  ❌ %s: %v\n", cfg.HookCommand, err)
		allOK = false
	} else {
		fmt.Printf("  ✅ %s\n", cfg.HookCommand)
	}
	fmt.Println()

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		fmt.Printf("Log directory: %s\n", cfg.LogDir)
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Printf("Log directory: %s\n", logDir)
		if _, err := os.Stat(logDir); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("  ⚠️  Not found (will be created on first change)")
			} else {
				fmt.Printf("  ❌ Error: %v\n", err)
				allOK = false
			}
		} else {
			fmt.Println("  ✅ OK")
		}
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. taskpad may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkStorage opens the configured backend and counts readable entries.
func checkStorage(ctx context.Context, cfg *config.Config, verbose bool) bool {
	fmt.Printf("Storage: %s\n", cfg.Storage.Backend)
	if verbose {
		fmt.Printf("  Data dir: %s\n", cfg.Storage.DataDir)
	}

	storage, err := kv.Open(kv.Options{
		Backend: cfg.Storage.Backend,
		DataDir: cfg.Storage.DataDir,
		DSN:     cfg.Storage.DSN,
	})
	if err != nil {
		fmt.Printf("  ❌ Open failed: %v\n", err)
		return false
	}
	defer storage.Close()

	listCtx := ctx
	if timeout := cfg.StorageTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		listCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	keys, err := storage.List(listCtx, todo.KeyPrefix)
	if err != nil {
		fmt.Printf("  ❌ List failed: %v\n", err)
		return false
	}

	store := todo.NewStore(storage, todo.WithFetchWorkers(cfg.Storage.FetchWorkers), todo.WithTimeout(cfg.StorageTimeout()))
	tasks := store.ListAll(ctx)
	fmt.Printf("  ✅ OK (%d task(s))\n", len(tasks))
	if skipped := len(keys) - len(tasks); skipped > 0 {
		fmt.Printf("  ⚠️  %d stored entries under %q could not be read and are skipped\n", skipped, todo.KeyPrefix)
	}
	if verbose {
		for _, t := range tasks {
			state := "pending"
			if t.Completed {
				state = "done"
			}
			fmt.Printf("    - [%s] %d: %s\n", state, t.ID, t.Title)
		}
	}
	return true
}
