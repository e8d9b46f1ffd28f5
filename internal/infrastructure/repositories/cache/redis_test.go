package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient implementa redisCommander para tests
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	args := m.Called(ctx)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// ===== CASOS DE ÉXITO =====

func TestRedisCache_Get(t *testing.T) {
	client := new(MockRedisClient)
	ctx := context.Background()
	client.On("Get", ctx, "valuation:latest").Return(redis.NewStringResult(`{"id":"r1"}`, nil))

	v, err := newRedisCacheWithCommander(client).Get(ctx, "valuation:latest")

	require.NoError(t, err)
	assert.Equal(t, `{"id":"r1"}`, v)
	client.AssertExpectations(t)
}

func TestRedisCache_SetDeleteExists(t *testing.T) {
	client := new(MockRedisClient)
	ctx := context.Background()
	client.On("Set", ctx, "k", "v", time.Minute).Return(redis.NewStatusResult("OK", nil))
	client.On("Del", ctx, []string{"k"}).Return(redis.NewIntResult(1, nil))
	client.On("Exists", ctx, []string{"k"}).Return(redis.NewIntResult(1, nil)).Once()
	client.On("Exists", ctx, []string{"missing"}).Return(redis.NewIntResult(0, nil)).Once()
	client.On("Close").Return(nil)

	c := newRedisCacheWithCommander(client)
	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Close())
	client.AssertExpectations(t)
}

// ===== CASOS DE ERROR =====

func TestRedisCache_GetMissingMapsToErrKeyNotFound(t *testing.T) {
	client := new(MockRedisClient)
	ctx := context.Background()
	client.On("Get", ctx, "k").Return(redis.NewStringResult("", redis.Nil))

	_, err := newRedisCacheWithCommander(client).Get(ctx, "k")

	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisCache_PropagatesBackendErrors(t *testing.T) {
	client := new(MockRedisClient)
	ctx := context.Background()
	down := errors.New("connection refused")
	client.On("Get", ctx, "k").Return(redis.NewStringResult("", down))
	client.On("Exists", ctx, []string{"k"}).Return(redis.NewIntResult(0, down))

	c := newRedisCacheWithCommander(client)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrKeyNotFound)

	_, err = c.Exists(ctx, "k")
	assert.ErrorIs(t, err, down)
}
