package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result is the outcome of one submitted job.
type Result[T any] struct {
	Key      string
	Value    T
	Error    error
	Duration time.Duration
}

// WorkerPool runs jobs with bounded concurrency and collects their results.
type WorkerPool[T any] struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	results    []Result[T]
	errors     []error
	failFast   bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool with bounded concurrency.
// If maxWorkers is 0, unlimited workers are allowed (bounded by submitted jobs).
// If failFast is true, the pool context is cancelled on the first error.
func NewWorkerPool[T any](ctx context.Context, maxWorkers int, failFast bool) *WorkerPool[T] {
	if maxWorkers < 0 {
		maxWorkers = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool[T]{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		failFast:   failFast,
		ctx:        ctx,
		cancel:     cancel,
		results:    make([]Result[T], 0),
	}
}

// Context returns the pool context. Jobs should pass it to blocking calls
// so Cancel and fail-fast reach them.
func (p *WorkerPool[T]) Context() context.Context {
	return p.ctx
}

// Submit schedules fn under key. Jobs that have not started when the pool
// is cancelled are skipped and produce no result.
func (p *WorkerPool[T]) Submit(key string, fn func(ctx context.Context) (T, error)) {
	select {
	case <-p.ctx.Done():
		return
	default:
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Acquire semaphore slot
		if p.maxWorkers > 0 {
			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-p.ctx.Done():
				return
			}
		}

		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		value, err := fn(p.ctx)
		duration := time.Since(start)

		p.mu.Lock()
		defer p.mu.Unlock()

		p.results = append(p.results, Result[T]{
			Key:      key,
			Value:    value,
			Error:    err,
			Duration: duration,
		})
		if err != nil {
			p.errors = append(p.errors, fmt.Errorf("%s: %w", key, err))
			if p.failFast {
				p.cancel()
			}
		}
	}()
}

// Wait blocks until every started job finishes and returns the results in
// completion order together with the wrapped errors.
func (p *WorkerPool[T]) Wait() ([]Result[T], []error) {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancel()

	results := make([]Result[T], len(p.results))
	copy(results, p.results)

	errs := make([]error, len(p.errors))
	copy(errs, p.errors)

	return results, errs
}

// Cancel cancels all pending work in the pool.
func (p *WorkerPool[T]) Cancel() {
	p.cancel()
}
