package parallel

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestNewWorkerPool(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pool with max workers", func(t *testing.T) {
		pool := NewWorkerPool[string](ctx, 4, false)
		if pool == nil {
			t.Fatal("NewWorkerPool returned nil")
		}
		if pool.maxWorkers != 4 {
			t.Errorf("expected maxWorkers=4, got %d", pool.maxWorkers)
		}
		if pool.failFast {
			t.Error("expected failFast=false")
		}
	})

	t.Run("negative workers means unlimited", func(t *testing.T) {
		pool := NewWorkerPool[string](ctx, -3, false)
		if pool.maxWorkers != 0 {
			t.Errorf("expected maxWorkers=0, got %d", pool.maxWorkers)
		}
	})
}

func TestWorkerPool_SubmitAndWait(t *testing.T) {
	ctx := context.Background()

	t.Run("single job", func(t *testing.T) {
		pool := NewWorkerPool[string](ctx, 2, false)
		pool.Submit("todo:1", func(ctx context.Context) (string, error) {
			return "one", nil
		})

		results, errs := pool.Wait()
		if len(errs) != 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Key != "todo:1" || results[0].Value != "one" {
			t.Errorf("unexpected result %+v", results[0])
		}
	})

	t.Run("multiple jobs", func(t *testing.T) {
		pool := NewWorkerPool[int](ctx, 4, false)
		for i := 0; i < 10; i++ {
			n := i
			pool.Submit(strconv.Itoa(n), func(ctx context.Context) (int, error) {
				return n * n, nil
			})
		}

		results, errs := pool.Wait()
		if len(errs) != 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
		if len(results) != 10 {
			t.Fatalf("expected 10 results, got %d", len(results))
		}
		for _, r := range results {
			n, _ := strconv.Atoi(r.Key)
			if r.Value != n*n {
				t.Errorf("key %s: got %d, want %d", r.Key, r.Value, n*n)
			}
		}
	})

	t.Run("respects max workers limit", func(t *testing.T) {
		pool := NewWorkerPool[struct{}](ctx, 2, false)

		maxConcurrent := 0
		current := 0
		var mu sync.Mutex

		for i := 0; i < 6; i++ {
			pool.Submit("", func(ctx context.Context) (struct{}, error) {
				mu.Lock()
				current++
				if current > maxConcurrent {
					maxConcurrent = current
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				current--
				mu.Unlock()
				return struct{}{}, nil
			})
		}
		pool.Wait()

		if maxConcurrent > 2 {
			t.Errorf("expected max 2 concurrent jobs, got %d", maxConcurrent)
		}
	})
}

func TestWorkerPool_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("errors are wrapped with the key", func(t *testing.T) {
		pool := NewWorkerPool[string](ctx, 2, false)
		boom := errors.New("boom")

		pool.Submit("todo:1", func(ctx context.Context) (string, error) { return "ok", nil })
		pool.Submit("todo:2", func(ctx context.Context) (string, error) { return "", boom })
		pool.Submit("todo:3", func(ctx context.Context) (string, error) { return "ok", nil })

		results, errs := pool.Wait()
		if len(results) != 3 {
			t.Errorf("expected 3 results, got %d", len(results))
		}
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %d", len(errs))
		}
		if !errors.Is(errs[0], boom) {
			t.Errorf("expected wrapped boom, got %v", errs[0])
		}
		for _, r := range results {
			if r.Error != nil && r.Key != "todo:2" {
				t.Errorf("unexpected failure for %s", r.Key)
			}
		}
	})

	t.Run("failFast cancels the job context", func(t *testing.T) {
		pool := NewWorkerPool[string](ctx, 1, true)
		pool.Submit("first", func(ctx context.Context) (string, error) {
			return "", errors.New("fail")
		})
		pool.Wait()

		if pool.Context().Err() == nil {
			t.Error("expected pool context to be cancelled")
		}
	})
}

func TestWorkerPool_Cancel(t *testing.T) {
	pool := NewWorkerPool[string](context.Background(), 1, false)
	pool.Cancel()

	ran := false
	pool.Submit("late", func(ctx context.Context) (string, error) {
		ran = true
		return "", nil
	})
	results, _ := pool.Wait()

	if ran {
		t.Error("job submitted after Cancel should not run")
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestWorkerPool_Duration(t *testing.T) {
	pool := NewWorkerPool[string](context.Background(), 2, false)
	pool.Submit("slow", func(ctx context.Context) (string, error) {
		time.Sleep(30 * time.Millisecond)
		return "", nil
	})

	results, _ := pool.Wait()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Duration < 30*time.Millisecond {
		t.Errorf("expected duration >= 30ms, got %v", results[0].Duration)
	}
}
