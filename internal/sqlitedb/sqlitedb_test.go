package sqlitedb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRetryOnBusyRetriesOnlyBusyErrors(t *testing.T) {
	calls := 0
	err := RetryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success after 3 calls, got err=%v calls=%d", err, calls)
	}

	calls = 0
	plain := errors.New("syntax error")
	if err := RetryOnBusy(context.Background(), func() error { calls++; return plain }); !errors.Is(err, plain) || calls != 1 {
		t.Fatalf("expected single attempt for non-busy error, got err=%v calls=%d", err, calls)
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}
}

func TestRetryOnBusyGivesUp(t *testing.T) {
	calls := 0
	busy := errors.New("SQLITE_BUSY: database busy")
	err := RetryOnBusy(context.Background(), func() error { calls++; return busy })
	if !errors.Is(err, busy) {
		t.Fatalf("expected busy error, got %v", err)
	}
	if calls != len(backoff)+1 {
		t.Fatalf("calls = %d, want %d", calls, len(backoff)+1)
	}
}

func TestRetryOnBusyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryOnBusy(ctx, func() error { return errors.New("database is locked") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
