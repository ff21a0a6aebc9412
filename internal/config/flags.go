package config

import (
	"flag"
)

// flagFields maps flag names to the config fields they set.
var flagFields = map[string]string{
	"backend":        "storage.backend",
	"data-dir":       "storage.data_dir",
	"dsn":            "storage.dsn",
	"timeout":        "storage.timeout_seconds",
	"cache-ttl":      "storage.cache_ttl_seconds",
	"fetch-workers":  "storage.fetch_workers",
	"hook":           "hook_command",
	"log-dir":        "log_dir",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
	"view":           "default_view",
}

// parseFlags defines the global flags on fs bound to cfg, parses args and
// marks every flag that was set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskpad", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.Storage.Backend, "backend", cfg.Storage.Backend, "Storage backend (memory, file, sqlite, mysql)")
	fs.StringVar(&cfg.Storage.DataDir, "data-dir", cfg.Storage.DataDir, "Directory for file and sqlite storage")
	fs.StringVar(&cfg.Storage.DSN, "dsn", cfg.Storage.DSN, "MySQL data source name")
	fs.IntVar(&cfg.Storage.TimeoutSeconds, "timeout", cfg.Storage.TimeoutSeconds, "Storage call timeout in seconds (0 = none)")
	fs.IntVar(&cfg.Storage.CacheTTLSeconds, "cache-ttl", cfg.Storage.CacheTTLSeconds, "Read cache lifetime in seconds (0 = off)")
	fs.IntVar(&cfg.Storage.FetchWorkers, "fetch-workers", cfg.Storage.FetchWorkers, "Concurrent reads when loading tasks (0 = unbounded)")

	// Hooks
	fs.StringVar(&cfg.HookCommand, "hook", cfg.HookCommand, "Hook command to run after each change")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	// View
	fs.StringVar(&cfg.DefaultView, "view", cfg.DefaultView, "Initial view (pending, completed)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagFields[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
