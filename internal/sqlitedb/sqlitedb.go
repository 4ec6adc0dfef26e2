// Package sqlitedb opens SQLite databases with the pragmas and busy-retry
// behaviour shared by the batch store and the sqlite cache backend.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteBusy is the primary result code for SQLITE_BUSY.
const sqliteBusy = 5

// Waits between attempts while the database reports busy.
var backoff = []time.Duration{
	10 * time.Millisecond,
	20 * time.Millisecond,
	40 * time.Millisecond,
	80 * time.Millisecond,
}

// connPragmas are applied by the driver to every pooled connection.
var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// DSN returns the driver name for path with the connection pragmas attached.
func DSN(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// Open creates the parent directory if needed and opens path with WAL mode.
func Open(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// sql.Open is lazy; surface bad paths and pragma failures here.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}
	return db, nil
}

// IsBusy reports whether err is SQLITE_BUSY or an equivalent lock error.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var coded interface{ Code() int }
	if errors.As(err, &coded) && coded.Code()&0xff == sqliteBusy {
		return true
	}
	text := err.Error()
	for _, marker := range []string{"SQLITE_BUSY", "database is locked"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// RetryOnBusy runs op until it succeeds, fails with a non-busy error, or the
// backoff schedule is exhausted.
func RetryOnBusy(ctx context.Context, op func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := op()
	for _, wait := range backoff {
		if !IsBusy(err) {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = op()
	}
	return err
}

// Exec runs a statement with busy retry.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) error {
	return RetryOnBusy(ctx, func() error {
		_, err := db.ExecContext(ctx, query, args...)
		return err
	})
}
