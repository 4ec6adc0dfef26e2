package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"stylegen/internal/logging"
)

type failingStore struct {
	getErr error
	putErr error
	puts   int
}

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.getErr
}

func (f *failingStore) Put(context.Context, string, []byte, time.Duration) error {
	f.puts++
	return f.putErr
}

func (f *failingStore) Clear(context.Context) error { return nil }

func (f *failingStore) Stats(context.Context) (Stats, error) { return Stats{}, nil }

func (f *failingStore) Close() error { return nil }

type analysisRecord struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

func TestGatewayRoundTrip(t *testing.T) {
	gw := NewGateway(NewMemoryStore(nil), time.Hour, logging.NewNop())
	ctx := context.Background()
	key := Key(Fingerprint([]byte("img")), "style_analysis")

	var miss analysisRecord
	if gw.Get(ctx, key, &miss) {
		t.Fatal("expected miss on empty cache")
	}

	gw.Put(ctx, key, analysisRecord{Category: "ボブ", Keywords: []string{"透明感"}})

	var got analysisRecord
	if !gw.Get(ctx, key, &got) {
		t.Fatal("expected hit after put")
	}
	if got.Category != "ボブ" || len(got.Keywords) != 1 {
		t.Fatalf("unexpected value %+v", got)
	}
	if gw.Hits() != 1 || gw.Misses() != 1 {
		t.Fatalf("hits=%d misses=%d", gw.Hits(), gw.Misses())
	}
}

func TestGatewayBackendErrorsDegradeToMiss(t *testing.T) {
	store := &failingStore{getErr: errors.New("connection refused"), putErr: errors.New("disk full")}
	gw := NewGateway(store, time.Hour, logging.NewNop())
	ctx := context.Background()

	var v analysisRecord
	if gw.Get(ctx, "k", &v) {
		t.Fatal("expected miss when backend fails")
	}
	gw.Put(ctx, "k", analysisRecord{Category: "ミディアム"})
	if store.puts != 1 {
		t.Fatalf("expected put attempt, got %d", store.puts)
	}
}

func TestGatewayUndecodableEntryIsMiss(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	if err := store.Put(ctx, "k", []byte(`"just a string"`), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	gw := NewGateway(store, time.Hour, nil)
	var v analysisRecord
	if gw.Get(ctx, "k", &v) {
		t.Fatal("expected miss for undecodable entry")
	}
}

func TestNilGateway(t *testing.T) {
	var gw *Gateway
	var v analysisRecord
	if gw.Get(context.Background(), "k", &v) {
		t.Fatal("nil gateway should miss")
	}
	gw.Put(context.Background(), "k", v)
	if gw.Hits() != 0 || gw.Misses() != 0 || gw.Store() != nil {
		t.Fatal("nil gateway should report zero counters")
	}
}
