package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// readDotEnv parses a .env file. A missing file yields no values.
func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// envLookup resolves a variable from the process environment first and
// falls back to .env values.
func envLookup(dotenv map[string]string) func(string) (string, ConfigSource, bool) {
	return func(key string) (string, ConfigSource, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, SourceEnv, true
		}
		if v, ok := dotenv[key]; ok && v != "" {
			return v, SourceDotEnv, true
		}
		return "", "", false
	}
}

// envBinding maps one environment variable onto a config field.
type envBinding struct {
	name  string
	field string
	apply func(cfg *Config, value string) bool
}

func stringEnv(target func(*Config) *string) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		*target(cfg) = v
		return true
	}
}

func intEnv(target func(*Config) *int) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		i, err := strconv.Atoi(v)
		if err != nil {
			return false
		}
		*target(cfg) = i
		return true
	}
}

func boolEnv(target func(*Config) *bool) func(*Config, string) bool {
	return func(cfg *Config, v string) bool {
		*target(cfg) = boolFromString(v)
		return true
	}
}

var envBindings = []envBinding{
	{"TASKPAD_BACKEND", "storage.backend", stringEnv(func(c *Config) *string { return &c.Storage.Backend })},
	{"TASKPAD_DATA_DIR", "storage.data_dir", stringEnv(func(c *Config) *string { return &c.Storage.DataDir })},
	{"TASKPAD_DSN", "storage.dsn", stringEnv(func(c *Config) *string { return &c.Storage.DSN })},
	{"TASKPAD_TIMEOUT", "storage.timeout_seconds", intEnv(func(c *Config) *int { return &c.Storage.TimeoutSeconds })},
	{"TASKPAD_CACHE_TTL", "storage.cache_ttl_seconds", intEnv(func(c *Config) *int { return &c.Storage.CacheTTLSeconds })},
	{"TASKPAD_FETCH_WORKERS", "storage.fetch_workers", intEnv(func(c *Config) *int { return &c.Storage.FetchWorkers })},
	{"TASKPAD_HOOK", "hook_command", stringEnv(func(c *Config) *string { return &c.HookCommand })},
	{"TASKPAD_LOG_DIR", "log_dir", stringEnv(func(c *Config) *string { return &c.LogDir })},
	{"TASKPAD_LOG_LEVEL", "log_level", stringEnv(func(c *Config) *string { return &c.LogLevel })},
	{"TASKPAD_LOG_FORMAT", "log_format", stringEnv(func(c *Config) *string { return &c.LogFormat })},
	{"TASKPAD_LOG_TIMESTAMPS", "log_timestamps", boolEnv(func(c *Config) *bool { return &c.LogTimestamps })},
	{"TASKPAD_LOG_CALLER", "log_caller", boolEnv(func(c *Config) *bool { return &c.LogCaller })},
	{"TASKPAD_VIEW", "default_view", stringEnv(func(c *Config) *string { return &c.DefaultView })},
}

// loadFromEnv overrides config from environment variables. Integers that
// do not parse are ignored.
func loadFromEnv(cfg *Config, lookup func(string) (string, ConfigSource, bool), sources map[string]ConfigSource) {
	for _, b := range envBindings {
		v, source, ok := lookup(b.name)
		if !ok {
			continue
		}
		if b.apply(cfg, v) && sources != nil {
			sources[b.field] = source
		}
	}
}
