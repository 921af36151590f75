package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds one value that expires after a fixed time to live.
type Cache[T any] interface {
	// Get reports false when nothing is cached or the value expired.
	Get(ctx context.Context) (T, bool, error)
	Set(ctx context.Context, value T) error
	Invalidate(ctx context.Context) error
}

// RedisCache stores the JSON-encoded value with a Redis expiry.
type RedisCache[T any] struct {
	client redisClient
	key    string
	ttl    time.Duration
}

func NewRedisCache[T any](client redisClient, key string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{client: client, key: key, ttl: ttl}
}

func (c *RedisCache[T]) Get(ctx context.Context) (T, bool, error) {
	var value T

	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("read cache %s: %w", c.key, err)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("decode cache %s: %w", c.key, err)
	}
	return value, true, nil
}

func (c *RedisCache[T]) Set(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", c.key, err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cache %s: %w", c.key, err)
	}
	return nil
}

func (c *RedisCache[T]) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidate cache %s: %w", c.key, err)
	}
	return nil
}

// MemoryCache keeps the value in process memory.
type MemoryCache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	value   T
	expires time.Time
	set     bool

	now func() time.Time
}

func NewMemoryCache[T any](ttl time.Duration) *MemoryCache[T] {
	return &MemoryCache[T]{ttl: ttl, now: time.Now}
}

func (c *MemoryCache[T]) Get(_ context.Context) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.set || !c.now().Before(c.expires) {
		var zero T
		return zero, false, nil
	}
	return c.value, true, nil
}

func (c *MemoryCache[T]) Set(_ context.Context, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.expires = c.now().Add(c.ttl)
	c.set = true
	return nil
}

func (c *MemoryCache[T]) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.set = false
	return nil
}
