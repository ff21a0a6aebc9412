package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceDotEnv   ConfigSource = ".env"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultBackend         = "file"
	DefaultDataDir         = "~/.taskpad/data"
	DefaultLogDir          = "~/.taskpad/logs"
	DefaultTimeoutSeconds  = 5
	DefaultFetchWorkers    = 8
	DefaultCacheTTLSeconds = 0
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultView            = "pending"
)

// Config holds the full configuration for taskpad.
type Config struct {
	// Storage backend settings
	Storage StorageConfig `toml:"storage"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// View shown when the TUI starts (pending or completed)
	DefaultView string `toml:"default_view"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// StorageConfig selects and tunes the key-value backend.
type StorageConfig struct {
	Backend         string `toml:"backend"` // memory, file, sqlite or mysql
	DataDir         string `toml:"data_dir"`
	DSN             string `toml:"dsn"` // mysql only
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	FetchWorkers    int    `toml:"fetch_workers"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"storage.backend",
		"storage.data_dir",
		"storage.dsn",
		"storage.timeout_seconds",
		"storage.cache_ttl_seconds",
		"storage.fetch_workers",
		"hook_command",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"default_view",
	}
}

// setDefaults fills cfg with built-in defaults.
func setDefaults(cfg *Config) {
	cfg.Storage = StorageConfig{
		Backend:         DefaultBackend,
		DataDir:         DefaultDataDir,
		TimeoutSeconds:  DefaultTimeoutSeconds,
		CacheTTLSeconds: DefaultCacheTTLSeconds,
		FetchWorkers:    DefaultFetchWorkers,
	}
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.DefaultView = DefaultView
}
