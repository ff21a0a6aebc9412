package todo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/parallel"
)

const (
	// DefaultFetchWorkers bounds concurrent Get calls during ListAll.
	DefaultFetchWorkers = 8
	// DefaultTimeout applies to each storage call.
	DefaultTimeout = 5 * time.Second
)

// Store reads and writes tasks through a kv.Storage.
type Store struct {
	kv      kv.Storage
	logger  *log.Logger
	workers int
	timeout time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFetchWorkers bounds concurrent fetches in ListAll. Zero means unbounded.
func WithFetchWorkers(n int) StoreOption {
	return func(s *Store) {
		if n >= 0 {
			s.workers = n
		}
	}
}

// WithTimeout sets the per-call storage timeout. Zero disables it.
func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// NewStore wraps storage.
func NewStore(storage kv.Storage, opts ...StoreOption) *Store {
	s := &Store{
		kv:      storage,
		logger:  log.New(io.Discard),
		workers: DefaultFetchWorkers,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "store")
	return s
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListAll returns every decodable task, newest id first. It never fails:
// unreadable entries are skipped and a failed listing yields nil.
func (s *Store) ListAll(ctx context.Context) []Task {
	listCtx, cancel := s.withTimeout(ctx)
	keys, err := s.kv.List(listCtx, KeyPrefix)
	cancel()
	if err != nil {
		s.logger.Warn("list tasks", "err", err)
		return nil
	}

	pool := parallel.NewWorkerPool[Task](ctx, s.workers, false)
	for _, key := range keys {
		id, err := ParseKey(key)
		if err != nil {
			s.logger.Debug("skip entry", "key", key, "err", err)
			continue
		}
		pool.Submit(key, func(ctx context.Context) (Task, error) {
			return s.fetch(ctx, key, id)
		})
	}

	results, _ := pool.Wait()
	tasks := make([]Task, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			s.logger.Debug("skip entry", "key", r.Key, "err", r.Error)
			continue
		}
		tasks = append(tasks, r.Value)
	}

	slices.SortFunc(tasks, func(a, b Task) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return tasks
}

func (s *Store) fetch(ctx context.Context, key string, id int64) (Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	value, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return Task{}, err
	}
	if !ok {
		return Task{}, errors.New("key vanished")
	}

	t, err := Unmarshal(value)
	if err != nil {
		return Task{}, err
	}
	if t.ID != id {
		return Task{}, fmt.Errorf("id %d does not match key", t.ID)
	}
	return t, nil
}

// Save writes t under Key(t.ID).
func (s *Store) Save(ctx context.Context, t Task) error {
	key := Key(t.ID)
	value, err := Marshal(t)
	if err != nil {
		s.logger.Error("save task", "key", key, "err", err)
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.kv.Set(ctx, key, value); err != nil {
		err = fmt.Errorf("save %s: %w", key, err)
		s.logger.Error("save task", "key", key, "err", err)
		return err
	}
	s.logger.Debug("saved task", "key", key)
	return nil
}

// Remove deletes the entry for id.
func (s *Store) Remove(ctx context.Context, id int64) error {
	key := Key(id)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.kv.Delete(ctx, key); err != nil {
		err = fmt.Errorf("remove %s: %w", key, err)
		s.logger.Error("remove task", "key", key, "err", err)
		return err
	}
	s.logger.Debug("removed task", "key", key)
	return nil
}
