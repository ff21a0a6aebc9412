// Package kv defines the key-value storage contract tasks are persisted
// through, and the backends that implement it.
//
// The contract is deliberately small:
//
//	List(prefix)     -> keys sharing the prefix
//	Get(key)         -> value, present
//	Set(key, value)  -> error
//	Delete(key)      -> error
//
// Values are opaque strings. Deleting a missing key is not an error.
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrClosed is returned by every operation on a closed store.
var ErrClosed = errors.New("storage closed")

// Storage is the key-value service tasks are persisted through.
type Storage interface {
	// List returns every key starting with prefix, in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Removing a missing key succeeds.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Default file names inside the data directory.
const (
	DefaultFileName   = "store.json"
	DefaultSQLiteName = "taskpad.db"
)

// Options selects and configures a backend.
type Options struct {
	// Backend is one of memory, file, sqlite or mysql.
	Backend string
	// DataDir holds the file and sqlite stores.
	DataDir string
	// DSN overrides the sqlite path or provides the mysql data source name.
	DSN string
	// CacheTTL wraps the backend in a read cache when positive.
	CacheTTL time.Duration
}

// Open creates the backend described by opts.
func Open(opts Options) (Storage, error) {
	var (
		s   Storage
		err error
	)

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		s = NewMemory()
	case "", BackendFile:
		if opts.DataDir == "" {
			return nil, fmt.Errorf("file backend: data dir is empty")
		}
		s, err = NewFileStore(filepath.Join(opts.DataDir, DefaultFileName))
	case BackendSQLite:
		path := opts.DSN
		if path == "" {
			if opts.DataDir == "" {
				return nil, fmt.Errorf("sqlite backend: data dir is empty")
			}
			path = filepath.Join(opts.DataDir, DefaultSQLiteName)
		}
		s, err = NewSQLite(path)
	case BackendMySQL:
		if opts.DSN == "" {
			return nil, fmt.Errorf("mysql backend: dsn is empty")
		}
		s, err = NewMySQL(opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q, must be one of: memory, file, sqlite, mysql", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.CacheTTL > 0 {
		s = NewCached(s, opts.CacheTTL)
	}
	return s, nil
}

// hasPrefix reports whether key belongs under prefix.
func hasPrefix(key, prefix string) bool {
	return prefix == "" || strings.HasPrefix(key, prefix)
}
