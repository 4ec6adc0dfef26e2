package testsupport

import (
	"testing"

	"stylegen/internal/config"
	"stylegen/internal/store"
)

// MustOpenStore opens the batch store for cfg and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
