package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis answers Get/Set/Del from a map and ignores expiry.
type fakeRedis struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

type record struct {
	ID     string `msgpack:"id" json:"id"`
	Status string `msgpack:"status" json:"status"`
}

func TestRedisListRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	list := NewRedisList[record](rdb, "uploadQueue")

	items, err := list.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if items != nil {
		t.Fatalf("expected no items, got %v", items)
	}

	want := []record{{ID: "1", Status: "pending"}, {ID: "2", Status: "error"}}
	if err := list.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rdb.ttls["uploadQueue"] != 0 {
		t.Fatalf("queue must not expire")
	}

	got, err := list.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1] != want[1] {
		t.Fatalf("unexpected items %v", got)
	}

	if err := list.Save(ctx, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if _, ok := rdb.data["uploadQueue"]; ok {
		t.Fatalf("expected key to be removed")
	}
}

func TestRedisListReportsConnectionErrors(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")

	_, err := NewRedisList[record](rdb, "uploadQueue").Load(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestRedisCacheUsesTTL(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	cache := NewRedisCache[record](rdb, "postingsSummary", 5*time.Minute)

	if _, ok, err := cache.Get(ctx); ok || err != nil {
		t.Fatalf("expected miss, got %v, %v", ok, err)
	}

	if err := cache.Set(ctx, record{ID: "x"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if rdb.ttls["postingsSummary"] != 5*time.Minute {
		t.Fatalf("unexpected ttl %s", rdb.ttls["postingsSummary"])
	}

	got, ok, err := cache.Get(ctx)
	if err != nil || !ok || got.ID != "x" {
		t.Fatalf("expected hit, got %v, %v, %v", got, ok, err)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	cache := NewMemoryCache[int](5 * time.Minute)
	cache.now = func() time.Time { return now }

	_ = cache.Set(ctx, 7)
	if v, ok, _ := cache.Get(ctx); !ok || v != 7 {
		t.Fatalf("expected hit, got %d, %v", v, ok)
	}

	now = now.Add(5 * time.Minute)
	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatalf("expected value to expire")
	}

	_ = cache.Set(ctx, 8)
	_ = cache.Invalidate(ctx)
	if _, ok, _ := cache.Get(ctx); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestMemoryListCopiesItems(t *testing.T) {
	ctx := context.Background()
	list := NewMemoryList[record]()

	items := []record{{ID: "1"}}
	_ = list.Save(ctx, items)
	items[0].ID = "changed"

	got, _ := list.Load(ctx)
	if got[0].ID != "1" {
		t.Fatalf("expected stored copy, got %v", got)
	}
}
