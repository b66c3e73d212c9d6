package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "structured_markup/internal/adapters/redis"
	"structured_markup/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_RoundTripRecords(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	key := domain.RecordsCacheKey(domain.CategoryHome)

	var got []domain.Record
	ok, err := c.Get(ctx, key, &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := []domain.Record{{
		ID: 7, Category: domain.CategoryHome, Kind: domain.KindLocalBusiness, Active: true,
		Options: []byte(`{"name":"Cafe X"}`),
	}}
	if err := c.Set(ctx, key, in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("schema:" + key) {
		t.Fatalf("expected prefixed key in redis")
	}

	ok, err = c.Get(ctx, key, &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != 7 || string(got[0].Options) != `{"name":"Cafe X"}` {
		t.Fatalf("unexpected records: %+v", got)
	}

	mr.FastForward(61 * time.Second)
	ok, _ = c.Get(ctx, key, &got)
	if ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCache_DelAndCorruptEntry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := mr.Set("schema:broken", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var dst []domain.Record
	if ok, err := c.Get(ctx, "broken", &dst); ok || err != nil {
		t.Fatalf("corrupt entry should read as miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "k", []string{"a"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists("schema:k") {
		t.Fatalf("expected key to be deleted")
	}
}
