package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Store is a byte-oriented key/value store with TTL semantics. Expired
// entries must behave as misses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats summarizes backend contents for the cache command.
type Stats struct {
	Backend  string
	Location string
	Entries  int
}

// Fingerprint returns the hex SHA-256 digest of image content.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key derives the cache key for one stage of one image. The stage comes first
// so keys for different stages of the same image never collide.
func Key(fingerprint, stage string) string {
	return strings.TrimSpace(stage) + ":" + strings.TrimSpace(fingerprint)
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}
