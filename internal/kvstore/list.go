package kvstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// List persists a whole slice under one key. Writers replace the slice.
type List[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
}

// RedisList stores a msgpack-encoded slice under a single key without expiry.
type RedisList[T any] struct {
	client redisClient
	key    string
}

func NewRedisList[T any](client redisClient, key string) *RedisList[T] {
	return &RedisList[T]{client: client, key: key}
}

func (l *RedisList[T]) Load(ctx context.Context) ([]T, error) {
	data, err := l.client.Get(ctx, l.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.key, err)
	}

	var items []T
	if err := msgpack.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.key, err)
	}
	return items, nil
}

func (l *RedisList[T]) Save(ctx context.Context, items []T) error {
	if len(items) == 0 {
		if err := l.client.Del(ctx, l.key).Err(); err != nil {
			return fmt.Errorf("clear %s: %w", l.key, err)
		}
		return nil
	}

	data, err := msgpack.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", l.key, err)
	}
	if err := l.client.Set(ctx, l.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", l.key, err)
	}
	return nil
}

// MemoryList keeps the slice in process memory.
type MemoryList[T any] struct {
	mu    sync.Mutex
	items []T
}

func NewMemoryList[T any]() *MemoryList[T] {
	return &MemoryList[T]{}
}

func (l *MemoryList[T]) Load(_ context.Context) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items), nil
}

func (l *MemoryList[T]) Save(_ context.Context, items []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = slices.Clone(items)
	return nil
}
