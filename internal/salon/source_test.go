package salon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stylegen/internal/cache"
	"stylegen/internal/logging"
	"stylegen/internal/services"
)

const salonURL = "https://beauty.hotpepper.jp/slnH000123456/"

const salonYAML = `url: https://beauty.hotpepper.jp/slnH000123456
stylists:
  - name: 佐藤
    specialties: ボブ ショート
    description: 骨格に合わせたカット
  - name: "  "
coupons:
  - name: カット+カラー
    price: "¥8,800"
    description: 透明感カラー
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestFileSourceYAML(t *testing.T) {
	src := NewFileSource(writeFile(t, "salon.yaml", salonYAML))
	data, err := src.FetchAll(context.Background(), salonURL)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(data.Stylists) != 1 || data.Stylists[0].Name != "佐藤" {
		t.Fatalf("unexpected stylists %+v", data.Stylists)
	}
	if len(data.Coupons) != 1 || data.Coupons[0].Price != "¥8,800" {
		t.Fatalf("unexpected coupons %+v", data.Coupons)
	}
	if data.URL != salonURL {
		t.Fatalf("URL = %q", data.URL)
	}
}

func TestFileSourceJSON(t *testing.T) {
	src := NewFileSource(writeFile(t, "salon.json", `{"stylists":[{"name":"鈴木"}],"coupons":[]}`))
	data, err := src.FetchAll(context.Background(), salonURL)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(data.Stylists) != 1 || len(data.Coupons) != 0 {
		t.Fatalf("unexpected data %+v", data)
	}
}

func TestFileSourceErrors(t *testing.T) {
	good := writeFile(t, "salon.yaml", salonYAML)
	tests := []struct {
		name string
		path string
		url  string
	}{
		{"foreign host", good, "https://example.com/salon"},
		{"empty url", good, ""},
		{"missing file", filepath.Join(t.TempDir(), "missing.yaml"), salonURL},
		{"mismatched url", good, "https://beauty.hotpepper.jp/slnH999/"},
		{"bad yaml", writeFile(t, "bad.yaml", "stylists: [unclosed"), salonURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileSource(tt.path).FetchAll(context.Background(), tt.url)
			if err == nil {
				t.Fatal("expected error")
			}
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected FetchError, got %T", err)
			}
			if !errors.Is(err, services.ErrFetch) {
				t.Fatal("expected ErrFetch marker")
			}
		})
	}
}

type countingSource struct {
	calls int
	data  Data
	err   error
}

func (s *countingSource) FetchAll(context.Context, string) (Data, error) {
	s.calls++
	return s.data, s.err
}

func TestCachedSourceMemoizes(t *testing.T) {
	next := &countingSource{data: Data{URL: salonURL}}
	gw := cache.NewGateway(cache.NewMemoryStore(nil), time.Hour, logging.NewNop())
	src := NewCachedSource(next, gw)

	for range 3 {
		if _, err := src.FetchAll(context.Background(), salonURL); err != nil {
			t.Fatalf("FetchAll: %v", err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("calls = %d, want 1", next.calls)
	}
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	next := &countingSource{err: &FetchError{URL: salonURL, Cause: errors.New("boom")}}
	src := NewCachedSource(next, cache.NewGateway(cache.NewMemoryStore(nil), time.Hour, nil))
	for range 2 {
		if _, err := src.FetchAll(context.Background(), salonURL); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Fatalf("calls = %d, want 2", next.calls)
	}
}
