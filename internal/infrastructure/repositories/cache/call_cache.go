package cache

import (
	"context"
	"sync"
	"time"

	"crypto-valuation-service/internal/infrastructure/metrics"

	"golang.org/x/sync/singleflight"
)

// Dedup outcomes
const (
	DedupMiss   = "miss"
	DedupHit    = "hit"
	DedupShared = "shared"
)

type callEntry[T any] struct {
	value    T
	err      error
	storedAt time.Time
}

// CallCache memoizes the outcome of a call per key. The first caller runs the
// producer, concurrent callers join the in-flight call and later callers get
// the stored outcome. Errors are stored too and stay until Invalidate.
type CallCache[T any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]*callEntry[T]
}

// CallCacheOption configura un CallCache
type CallCacheOption func(*callCacheOptions)

type callCacheOptions struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL bounds how long a resolved outcome is reused; 0 means forever
func WithTTL(ttl time.Duration) CallCacheOption {
	return func(o *callCacheOptions) { o.ttl = ttl }
}

// WithClock injects the clock used for TTL checks
func WithClock(now func() time.Time) CallCacheOption {
	return func(o *callCacheOptions) { o.now = now }
}

// NewCallCache creates an empty call cache; name labels its metrics
func NewCallCache[T any](name string, opts ...CallCacheOption) *CallCache[T] {
	o := callCacheOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &CallCache[T]{
		name:    name,
		ttl:     o.ttl,
		now:     o.now,
		entries: make(map[string]*callEntry[T]),
	}
}

// Do returns the outcome for key, invoking producer at most once per key
// until the entry is invalidated or expires. The producer runs detached from
// the caller's cancellation; a cancelled caller stops waiting but the shared
// call keeps going for everyone else.
func (c *CallCache[T]) Do(ctx context.Context, key string, producer func(context.Context) (T, error)) (T, error) {
	if entry, ok := c.lookup(key); ok {
		metrics.RecordDedupCall(c.name, DedupHit)
		return entry.value, entry.err
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// otra goroutine pudo haber resuelto la clave mientras esperábamos el vuelo
		if entry, ok := c.lookup(key); ok {
			return entry.value, entry.err
		}

		metrics.RecordDedupCall(c.name, DedupMiss)
		value, err := producer(detached)
		c.store(key, value, err)
		return value, err
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.RecordDedupCall(c.name, DedupShared)
		}
		value, _ := res.Val.(T)
		return value, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Invalidate drops the resolved entry for key so the next Do runs the producer
func (c *CallCache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateIf drops the entry for key only when drop reports true for it
func (c *CallCache[T]) InvalidateIf(key string, drop func(value T, err error) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok && drop(entry.value, entry.err) {
		delete(c.entries, key)
	}
}

// Len returns the number of resolved entries
func (c *CallCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every resolved entry
func (c *CallCache[T]) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]*callEntry[T])
	c.mu.Unlock()
}

func (c *CallCache[T]) lookup(key string) (*callEntry[T], bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(entry.storedAt) >= c.ttl {
		c.InvalidateIf(key, func(T, error) bool { return true })
		return nil, false
	}
	return entry, true
}

func (c *CallCache[T]) store(key string, value T, err error) {
	c.mu.Lock()
	c.entries[key] = &callEntry[T]{value: value, err: err, storedAt: c.now()}
	c.mu.Unlock()
}
