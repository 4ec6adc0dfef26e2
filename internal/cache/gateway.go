package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"stylegen/internal/logging"
)

// Gateway is the typed front of a Store. A nil Gateway or nil Store behaves
// as an always-missing cache.
type Gateway struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewGateway wraps store with JSON encoding and failure isolation.
func NewGateway(store Store, ttl time.Duration, logger *slog.Logger) *Gateway {
	return &Gateway{
		store:  store,
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "cache"),
	}
}

// Get decodes the cached value for key into dst and reports whether it was
// found. Backend and decode errors are logged and reported as a miss.
func (g *Gateway) Get(ctx context.Context, key string, dst any) bool {
	if g == nil || g.store == nil {
		return false
	}
	data, ok, err := g.store.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "cache read failed", "cache_get_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache backend connectivity"),
			logging.String(logging.FieldImpact, "stage result will be recomputed"))
		g.misses.Add(1)
		return false
	}
	if !ok {
		g.misses.Add(1)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "cache entry undecodable", "cache_decode_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'stylegen cache clear' if entries were written by an older version"),
			logging.String(logging.FieldImpact, "stage result will be recomputed"))
		g.misses.Add(1)
		return false
	}
	g.hits.Add(1)
	return true
}

// Put encodes value and stores it under key with the gateway TTL. Failures
// are logged and otherwise ignored.
func (g *Gateway) Put(ctx context.Context, key string, value any) {
	if g == nil || g.store == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "cache entry unencodable", "cache_encode_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "result not cached"))
		return
	}
	if err := g.store.Put(ctx, key, data, g.ttl); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "cache write failed", "cache_put_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache backend connectivity and disk space"),
			logging.String(logging.FieldImpact, "result not cached; the next run will recompute it"))
	}
}

// Hits returns the number of successful lookups since creation.
func (g *Gateway) Hits() int64 {
	if g == nil {
		return 0
	}
	return g.hits.Load()
}

// Misses returns the number of lookups that fell through to a recompute.
func (g *Gateway) Misses() int64 {
	if g == nil {
		return 0
	}
	return g.misses.Load()
}

// Store exposes the backend for maintenance commands.
func (g *Gateway) Store() Store {
	if g == nil {
		return nil
	}
	return g.store
}
