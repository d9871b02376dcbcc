// Package cache stores resolved reference values in Redis so repeated
// references (the same planet or film across many people) are fetched once.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the requested reference is not cached.
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "swapi:ref:"

// ReferenceCache maps (url, field) to a resolved display value.
type ReferenceCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewReferenceCache creates a cache backed by redisClient. A ttl <= 0 keeps
// entries until evicted.
func NewReferenceCache(redisClient *redis.Client, ttl time.Duration) *ReferenceCache {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &ReferenceCache{redis: redisClient, ttl: ttl}
}

// Get returns ErrCacheMiss if nothing is stored for url and field.
func (c *ReferenceCache) Get(ctx context.Context, url, field string) (string, error) {
	v, err := c.redis.Get(ctx, Key(url, field)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheMisses.Inc()
			return "", ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return "", fmt.Errorf("redis get: %w", err)
	}
	cacheHits.Inc()
	return v, nil
}

func (c *ReferenceCache) Set(ctx context.Context, url, field, value string) error {
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.redis.Set(ctx, Key(url, field), value, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Key is the Redis key for one resolved reference.
func Key(url, field string) string {
	return keyPrefix + field + ":" + url
}
