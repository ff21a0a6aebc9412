package kv

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	val string
	exp time.Time
}

// Cached is a read-through TTL cache in front of another Storage.
// Only present values are cached; Set and Delete invalidate the key.
type Cached struct {
	next Storage
	ttl  time.Duration
	now  func() time.Time

	mu sync.RWMutex
	m  map[string]cacheEntry
	// gen counts invalidations. A read fetched under an older gen is
	// returned but not cached.
	gen uint64
}

// NewCached wraps next with a cache whose entries live for ttl.
func NewCached(next Storage, ttl time.Duration) *Cached {
	return &Cached{
		next: next,
		ttl:  ttl,
		now:  time.Now,
		m:    make(map[string]cacheEntry),
	}
}

func (c *Cached) List(ctx context.Context, prefix string) ([]string, error) {
	return c.next.List(ctx, prefix)
}

func (c *Cached) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok && c.now().Before(e.exp) {
		return e.val, true, nil
	}

	v, ok, err := c.next.Get(ctx, key)
	if err != nil || !ok {
		c.invalidate(key)
		return v, ok, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.m[key] = cacheEntry{val: v, exp: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()
	return v, true, nil
}

func (c *Cached) Set(ctx context.Context, key, value string) error {
	c.invalidate(key)
	return c.next.Set(ctx, key, value)
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	c.invalidate(key)
	return c.next.Delete(ctx, key)
}

// Close drops the cache and closes the wrapped store.
func (c *Cached) Close() error {
	c.mu.Lock()
	c.m = make(map[string]cacheEntry)
	c.mu.Unlock()
	return c.next.Close()
}

func (c *Cached) invalidate(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.gen++
	c.mu.Unlock()
}
