package xcache

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/store"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"

	"github.com/glosshub/glosshub/internal/log"
)

// Cache is an alias to the gocache CacheInterface for convenience.
// It exposes the common methods:
//   - Get(ctx, key) (T, error)
//   - Set(ctx, key, value, options ...Option) error
//   - Delete(ctx, key) error
//   - Invalidate(ctx, options ...store.InvalidateOption) error
//   - Clear(ctx) error
//   - GetType() string
type Cache[T any] = cachelib.CacheInterface[T]

type SetterCache[T any] = cachelib.SetterCacheInterface[T]

// NewMemory creates a pure in-memory cache using patrickmn/go-cache as
// the backend.
func NewMemory[T any](defaultExpiration, cleanupInterval time.Duration, options ...Option) SetterCache[T] {
	client := gocache.New(defaultExpiration, cleanupInterval)
	return cachelib.New[T](gocache_store.NewGoCache(client, options...))
}

// NewRedis creates a pure Redis cache on top of an existing client.
func NewRedis[T any](client *redis.Client, options ...Option) SetterCache[T] {
	return cachelib.New[T](redis_store.NewRedis(client, options...))
}

// NewTwoLevel constructs a 2-level cache: memory first, then Redis.
func NewTwoLevel[T any](memory, redis SetterCache[T]) Cache[T] {
	return cachelib.NewChain[T](memory, redis)
}

// NewFromConfig builds a typed cache from the given Config.
// Modes:
//   - memory: in-memory only
//   - redis: redis only
//   - two-level: memory + redis chain
//
// If mode is not set or invalid, a noop cache that stores nothing is
// returned, so callers never need nil checks.
func NewFromConfig[T any](cfg Config) Cache[T] {
	if cfg.Mode == "" {
		return NewNoop[T]()
	}

	memExpiration := defaultIfZero(cfg.Memory.Expiration, 5*time.Minute)
	memCleanupInterval := defaultIfZero(cfg.Memory.CleanupInterval, 10*time.Minute)
	mem := NewMemory[T](memExpiration, memCleanupInterval, store.WithExpiration(memExpiration))

	var rds SetterCache[T]

	if cfg.Redis.Addr != "" && cfg.Mode != ModeMemory {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		redisExpiration := defaultIfZero(cfg.Redis.Expiration, 30*time.Minute)
		rds = NewRedis[T](client, store.WithExpiration(redisExpiration))
	}

	switch cfg.Mode {
	case ModeTwoLevel:
		if rds != nil {
			log.Info(context.Background(), "Using two-level cache")
			return NewTwoLevel[T](mem, rds)
		}

		return mem
	case ModeRedis:
		if rds == nil {
			log.Warn(context.Background(), "Redis cache config is invalid, disabling cache")
			return NewNoop[T]()
		}

		log.Info(context.Background(), "Using redis cache")

		return rds
	case ModeMemory:
		log.Info(context.Background(), "Using memory cache")
		return mem
	default:
		log.Info(context.Background(), "Disable cache")
		return NewNoop[T]()
	}
}

func defaultIfZero(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}

	return d
}
