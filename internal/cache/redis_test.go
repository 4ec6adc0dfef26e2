package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), RedisOptions{Addr: server.Addr(), Prefix: prefix})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, server
}

func TestRedisStore(t *testing.T) {
	store, _ := newTestRedis(t, "stylegen:")
	exerciseStore(t, store)
}

func TestRedisStoreClearKeepsOtherPrefixes(t *testing.T) {
	store, server := newTestRedis(t, "stylegen:")
	ctx := context.Background()

	if err := server.Set("other-app:session", "keep"); err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}
	if err := store.Put(ctx, "style_analysis:abc", []byte(`{}`), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !server.Exists("stylegen:style_analysis:abc") {
		t.Fatal("expected prefixed key in redis")
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if !server.Exists("other-app:session") {
		t.Fatal("Clear removed a key outside the prefix")
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 0 || stats.Backend != "redis" || stats.Location != server.Addr() {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRedisStoreExpiryIsAMiss(t *testing.T) {
	store, server := newTestRedis(t, "")
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte(`1`), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := server.TTL("k"); ttl != time.Hour {
		t.Fatalf("ttl = %s, want 1h", ttl)
	}
	server.FastForward(2 * time.Hour)

	value, ok, err := store.Get(ctx, "k")
	if err != nil || ok || value != nil {
		t.Fatalf("Get after expiry = %q, ok %v, err %v", value, ok, err)
	}
}

func TestRedisStoreUnreachable(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	addr := server.Addr()
	server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := NewRedisStore(ctx, RedisOptions{Addr: addr}); err == nil {
		t.Fatal("expected ping error for a closed server")
	}
}

func TestRedisStoreGetErrorIsReported(t *testing.T) {
	store, server := newTestRedis(t, "")
	server.SetError("ERR disk failure")
	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected server error to surface from Get")
	}
}
