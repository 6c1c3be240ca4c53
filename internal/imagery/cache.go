package imagery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved image URLs per country id.
type Cache interface {
	Get(ctx context.Context, id string) (string, bool, error)
	Set(ctx context.Context, id, url string) error
}

// MemoryCache keeps URLs for the lifetime of the process.
type MemoryCache struct {
	mu   sync.RWMutex
	urls map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{urls: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, id string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.urls[id]
	return u, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, id, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls[id] = url
	return nil
}

// DefaultRedisTTL is how long a URL stays in Redis.
const DefaultRedisTTL = 24 * time.Hour

// RedisCache shares URLs between server instances.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to redisURL and pings it.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisCacheFromClient(rdb, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func imageKey(id string) string { return "overland:image:" + id }

func (c *RedisCache) Get(ctx context.Context, id string) (string, bool, error) {
	u, err := c.rdb.Get(ctx, imageKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get image url: %w", err)
	}
	return u, true, nil
}

func (c *RedisCache) Set(ctx context.Context, id, url string) error {
	return c.rdb.Set(ctx, imageKey(id), url, c.ttl).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error { return c.rdb.Close() }
