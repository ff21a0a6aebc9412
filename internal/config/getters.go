package config

import "time"

// StorageTimeout returns the per-call storage timeout. Zero disables it.
func (c *Config) StorageTimeout() time.Duration {
	if c == nil || c.Storage.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Storage.TimeoutSeconds) * time.Second
}

// CacheTTL returns the read cache lifetime. Zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c == nil || c.Storage.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Storage.CacheTTLSeconds) * time.Second
}
