package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore keeps every key in one JSON object on disk.
//
// Reads take a shared file lock and writes an exclusive one, so several
// taskpad processes can point at the same file. Within one process every
// call holds mu for the whole lock/unlock span, because goroutines share
// the single *flock.Flock. Writes go to a temp file that is renamed over
// the store.
type FileStore struct {
	path string
	flk  *flock.Flock

	mu     sync.Mutex
	closed bool
}

// NewFileStore opens (creating if needed) the store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{
		path: path,
		flk:  flock.New(path + ".lock"),
	}, nil
}

func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.read(ctx, func(m map[string]string) {
		for k := range m {
			if hasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.read(ctx, func(m map[string]string) {
		value, ok = m[key]
	})
	return value, ok, err
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.write(ctx, func(m map[string]string) bool {
		m[key] = value
		return true
	})
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	return s.write(ctx, func(m map[string]string) bool {
		if _, ok := m[key]; !ok {
			return false
		}
		delete(m, key)
		return true
	})
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStore) read(ctx context.Context, fn func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	locked, err := s.flk.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", s.path)
	}
	defer func() { _ = s.flk.Unlock() }()

	m, err := s.load()
	if err != nil {
		return err
	}
	fn(m)
	return nil
}

// write applies fn and persists the result when fn reports a change.
func (s *FileStore) write(ctx context.Context, fn func(map[string]string) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	locked, err := s.flk.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", s.path)
	}
	defer func() { _ = s.flk.Unlock() }()

	m, err := s.load()
	if err != nil {
		return err
	}
	if !fn(m) {
		return nil
	}
	return s.save(m)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	m := make(map[string]string)
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return m, nil
}

func (s *FileStore) save(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}
	data = append(data, '\n')

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
