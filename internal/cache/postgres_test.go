package cache

import (
	"context"
	"os"
	"testing"
)

// Set STYLEGEN_TEST_POSTGRES_DSN to a disposable database to run these.
func newTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("STYLEGEN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STYLEGEN_TEST_POSTGRES_DSN not set")
	}
	store, err := NewPostgresStore(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	return store
}

func TestPostgresStore(t *testing.T) {
	exerciseStore(t, newTestPostgres(t))
}

func TestPostgresStoreRejectsBadDSN(t *testing.T) {
	if _, err := NewPostgresStore(context.Background(), "postgres://%zz"); err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}
