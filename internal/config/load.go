package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/taskpad/internal/utils"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskpad/taskpad.toml or OS-specific config dir)
// 3. Project config file (taskpad.toml or .taskpad.toml in current directory)
// 4. .env in the current directory
// 5. Environment variables
// 6. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}
	var files []string

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg.ProjectRoot = wd

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFileWithSources(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		files = append(files, userConfigFile)
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(cfg.ProjectRoot); projectConfigFile != "" {
		if err := loadConfigFileWithSources(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		files = append(files, projectConfigFile)
	}

	// 4 and 5. Override from .env and the environment
	dotenv, err := readDotEnv(filepath.Join(cfg.ProjectRoot, ".env"))
	if err != nil {
		return nil, err
	}
	loadFromEnv(cfg, envLookup(dotenv), sources)

	// 6. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 7. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// GetConfigFile returns the highest-priority config file that was read, or "".
func (cws *ConfigWithSources) GetConfigFile() string {
	if cws == nil || len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// loadConfigFileWithSources decodes a TOML file over cfg and marks every
// key the file defines with source.
func loadConfigFileWithSources(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	for _, field := range configFields() {
		if md.IsDefined(strings.Split(field, ".")...) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig normalizes values, expands paths and validates the result.
func finalizeConfig(cfg *Config) error {
	cfg.Storage.Backend = utils.Normalize(cfg.Storage.Backend)
	cfg.DefaultView = utils.Normalize(cfg.DefaultView)
	cfg.LogLevel = utils.Normalize(cfg.LogLevel)
	cfg.LogFormat = utils.Normalize(cfg.LogFormat)

	switch cfg.Storage.Backend {
	case "memory", "file", "sqlite":
	case "mysql":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for the mysql backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (expected memory|file|sqlite|mysql)", cfg.Storage.Backend)
	}

	switch cfg.DefaultView {
	case "pending", "completed":
	default:
		return fmt.Errorf("invalid default_view %q (expected pending|completed)", cfg.DefaultView)
	}

	if cfg.Storage.TimeoutSeconds < 0 {
		return fmt.Errorf("storage.timeout_seconds must be >= 0, got %d", cfg.Storage.TimeoutSeconds)
	}
	if cfg.Storage.CacheTTLSeconds < 0 {
		return fmt.Errorf("storage.cache_ttl_seconds must be >= 0, got %d", cfg.Storage.CacheTTLSeconds)
	}
	if cfg.Storage.FetchWorkers < 0 {
		return fmt.Errorf("storage.fetch_workers must be >= 0, got %d", cfg.Storage.FetchWorkers)
	}

	// Expand ~ in paths
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir)

	// Make paths absolute if they're relative
	if cfg.Storage.DataDir != "" && !filepath.IsAbs(cfg.Storage.DataDir) {
		cfg.Storage.DataDir = filepath.Join(cfg.ProjectRoot, cfg.Storage.DataDir)
	}

	return nil
}

func boolFromString(s string) bool {
	switch utils.Normalize(s) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
