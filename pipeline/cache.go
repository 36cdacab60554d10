package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores rendered activities between invocations.
type Cache interface {
	Get(ctx context.Context, key string) (*RenderedActivity, bool, error)
	Set(ctx context.Context, key string, r *RenderedActivity) error
}

// DefaultCacheTTL bounds how long a rendering is reused.
const DefaultCacheTTL = 24 * time.Hour

// RedisCache keeps JSON-encoded renderings in Redis.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache wraps an open client. The caller closes it.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the rendering stored under key; a missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) (*RenderedActivity, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var r RenderedActivity
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return &r, true, nil
}

// Set stores r under key for the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, r *RenderedActivity) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
