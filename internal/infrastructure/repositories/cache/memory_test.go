package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "valuation:latest", `{"id":"r1"}`, time.Minute))

	v, err := c.Get(ctx, "valuation:latest")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"r1"}`, v)
}

func TestMemoryCache_GetMissing(t *testing.T) {
	_, err := NewMemoryCache().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_Expiration(t *testing.T) {
	clock := newFakeClock()
	c := newMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	clock.Advance(2 * time.Second)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyExpired)

	// la clave expirada se elimina en el Get
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	clock := newFakeClock()
	c := newMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	clock.Advance(365 * 24 * time.Hour)

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestMemoryCache_SetSweepsExpired(t *testing.T) {
	clock := newFakeClock()
	c := newMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "old", "v", time.Second))
	clock.Advance(time.Minute)
	require.NoError(t, c.Set(ctx, "new", "v", time.Hour))

	assert.Equal(t, 1, c.Size())
}

func TestMemoryCache_ExistsDeleteClose(t *testing.T) {
	clock := newFakeClock()
	c := newMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", time.Second))
	require.NoError(t, c.Set(ctx, "b", "2", time.Hour))

	ok, err := c.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	ok, _ = c.Exists(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.Delete(ctx, "b"))
	ok, _ = c.Exists(ctx, "b")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "c", "3", time.Hour))
	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_Cleanup(t *testing.T) {
	clock := newFakeClock()
	c := newMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, "v", time.Second))
	}
	clock.Advance(time.Minute)
	c.Cleanup()

	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "k"
			if i%2 == 0 {
				_ = c.Set(ctx, key, "v", time.Minute)
			} else {
				_, _ = c.Get(ctx, key)
				_, _ = c.Exists(ctx, key)
			}
		}(i)
	}
	wg.Wait()
}
