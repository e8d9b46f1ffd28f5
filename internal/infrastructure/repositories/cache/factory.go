package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-valuation-service/internal/domain/interfaces"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/logging"

	"github.com/redis/go-redis/v9"
)

// CacheType represents the type of cache implementation
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// pingTimeout limita la verificación inicial de Redis
const pingTimeout = 5 * time.Second

// Factory provides methods to create cache instances
type Factory struct {
	newRedisClient func(opts *redis.Options) redisCommander
}

// NewFactory creates a new cache factory
func NewFactory() *Factory {
	return &Factory{
		newRedisClient: func(opts *redis.Options) redisCommander { return redis.NewClient(opts) },
	}
}

// CreateCache creates the report store backend described by the configuration
func (f *Factory) CreateCache(cfg config.CacheConfig) (interfaces.Cache, error) {
	ctx := context.Background()

	switch CacheType(strings.ToLower(cfg.Backend)) {
	case CacheTypeMemory:
		logging.Info(ctx, "Creating memory cache", logging.Fields{
			"type": string(CacheTypeMemory),
		})
		return NewMemoryCache(), nil

	case CacheTypeRedis:
		logging.Info(ctx, "Creating Redis cache", logging.Fields{
			"type":     string(CacheTypeRedis),
			"addr":     cfg.Redis.Addr,
			"database": cfg.Redis.DB,
		})
		return f.createRedisCache(cfg.Redis)

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Backend)
	}
}

// createRedisCache creates and tests Redis connection
func (f *Factory) createRedisCache(cfg config.RedisConfig) (interfaces.Cache, error) {
	client := f.newRedisClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	logging.Info(context.Background(), "Redis connection established successfully", logging.Fields{
		"addr":     cfg.Addr,
		"database": cfg.DB,
	})
	return newRedisCacheWithCommander(client), nil
}
