package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== DEDUPLICACIÓN =====

func TestCallCache_ConcurrentCallersShareOneProducer(t *testing.T) {
	c := NewCallCache[int]("test")

	var calls int32
	release := make(chan struct{})
	producer := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	const callers = 25
	var wg sync.WaitGroup
	results := make([]int, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Do(context.Background(), "poloniex", producer)
		}(i)
	}

	// dar tiempo a que todas las goroutines se unan al vuelo
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 42, results[i])
	}
	assert.Equal(t, 1, c.Len())
}

func TestCallCache_SequentialCallsHitStoredValue(t *testing.T) {
	c := NewCallCache[string]("test")
	calls := 0
	producer := func(ctx context.Context) (string, error) {
		calls++
		return "snapshot", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Do(context.Background(), "k", producer)
		require.NoError(t, err)
		assert.Equal(t, "snapshot", v)
	}
	assert.Equal(t, 1, calls)
}

func TestCallCache_DifferentKeysAreIndependent(t *testing.T) {
	c := NewCallCache[string]("test")
	calls := 0
	producer := func(ctx context.Context) (string, error) {
		calls++
		return "v", nil
	}

	_, _ = c.Do(context.Background(), "a", producer)
	_, _ = c.Do(context.Background(), "b", producer)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, c.Len())
}

// ===== ERRORES =====

func TestCallCache_ErrorsAreMemoized(t *testing.T) {
	c := NewCallCache[int]("test")
	boom := errors.New("boom")
	calls := 0
	producer := func(ctx context.Context) (int, error) {
		calls++
		return 0, boom
	}

	_, err := c.Do(context.Background(), "k", producer)
	assert.ErrorIs(t, err, boom)
	_, err = c.Do(context.Background(), "k", producer)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, calls)
}

func TestCallCache_InvalidateForcesNewCall(t *testing.T) {
	c := NewCallCache[int]("test")
	calls := 0
	producer := func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 7, nil
	}

	_, err := c.Do(context.Background(), "k", producer)
	require.Error(t, err)

	c.Invalidate("k")
	v, err := c.Do(context.Background(), "k", producer)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestCallCache_InvalidateIf(t *testing.T) {
	c := NewCallCache[int]("test")
	_, _ = c.Do(context.Background(), "ok", func(ctx context.Context) (int, error) { return 1, nil })
	_, _ = c.Do(context.Background(), "failed", func(ctx context.Context) (int, error) { return 0, errors.New("x") })

	onlyErrors := func(_ int, err error) bool { return err != nil }
	c.InvalidateIf("ok", onlyErrors)
	c.InvalidateIf("failed", onlyErrors)
	c.InvalidateIf("missing", onlyErrors)

	assert.Equal(t, 1, c.Len())
}

// ===== TTL Y CANCELACIÓN =====

func TestCallCache_TTLExpiresEntries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewCallCache[int]("test", WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	calls := 0
	producer := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _ := c.Do(context.Background(), "k", producer)
	assert.Equal(t, 1, v)

	now = now.Add(30 * time.Second)
	v, _ = c.Do(context.Background(), "k", producer)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	v, _ = c.Do(context.Background(), "k", producer)
	assert.Equal(t, 2, v)
}

func TestCallCache_CancelledCallerDoesNotCancelSharedCall(t *testing.T) {
	c := NewCallCache[int]("test")

	var calls int32
	release := make(chan struct{})
	producerCtxErr := make(chan error, 1)
	producer := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		producerCtxErr <- ctx.Err()
		return 5, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Do(ctx, "k", producer)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.NoError(t, <-producerCtxErr)

	v, err := c.Do(context.Background(), "k", producer)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCallCache_Reset(t *testing.T) {
	c := NewCallCache[int]("test")
	_, _ = c.Do(context.Background(), "k", func(ctx context.Context) (int, error) { return 1, nil })
	c.Reset()
	assert.Equal(t, 0, c.Len())
}
