package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stylegen/internal/sqlitedb"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	stored_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
)`

// SQLiteStore keeps entries in a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore opens (or creates) the cache database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, err
	}
	if err := sqlitedb.Exec(ctx, db, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := sqlitedb.RetryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
		).Scan(&value, &expiresAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache entry: %w", err)
	}
	if expiresAt > 0 && s.now().UnixNano() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()
	var expiresAt int64
	if exp := expiry(now, ttl); !exp.IsZero() {
		expiresAt = exp.UnixNano()
	}
	err := sqlitedb.Exec(ctx, s.db, `
		INSERT INTO cache_entries (key, value, stored_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at, expires_at = excluded.expires_at`,
		key, value, now.UnixNano(), expiresAt)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := sqlitedb.Exec(ctx, s.db, "DELETE FROM cache_entries"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM cache_entries WHERE expires_at = 0 OR expires_at > ?", s.now().UnixNano(),
	).Scan(&count)
	if err != nil {
		return Stats{}, fmt.Errorf("count cache entries: %w", err)
	}
	return Stats{Backend: "sqlite", Location: s.path, Entries: count}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
