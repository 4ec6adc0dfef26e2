package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"stylegen/internal/config"
)

// SampleTemplatesCSV is a small catalog covering three categories.
const SampleTemplatesCSV = `category,title,menu,comment,hashtag
ショート,ハンサムショート,カット+カラー,襟足すっきりのショート,#ショート
ボブ,切りっぱなしボブ,カット,透明感カラーと相性抜群の外ハネボブ,#ボブ#外ハネ
ボブ,くびれボブ,カット+パーマ,くびれで小顔見え,#くびれボブ
ロング,韓国風レイヤー,カット+トリートメント,顔まわりレイヤーで韓国風,#レイヤー
`

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The cache uses the in-memory backend and a sample template catalog is
// written under the temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Gemini.APIKey = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.OutputDir = filepath.Join(base, "exports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TemplateCSV = filepath.Join(base, "templates.csv")
	cfgVal.Cache.Backend = "memory"
	cfgVal.Cache.Path = ""

	if err := os.WriteFile(cfgVal.Paths.TemplateCSV, []byte(SampleTemplatesCSV), 0o644); err != nil {
		t.Fatalf("write template csv: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithGeminiKey sets the API key on the test config.
func WithGeminiKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gemini.APIKey = key
	}
}

// WithCacheBackend switches the cache backend; file-based backends get a
// path under the temp directory.
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
		switch backend {
		case "file":
			b.cfg.Cache.Path = filepath.Join(b.baseDir, "state", "cache.json")
		case "sqlite":
			b.cfg.Cache.Path = filepath.Join(b.baseDir, "state", "cache.db")
		}
	}
}

// WithTemplates replaces the catalog contents.
func WithTemplates(csv string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.WriteFile(b.cfg.Paths.TemplateCSV, []byte(csv), 0o644); err != nil {
			b.t.Fatalf("write template csv: %v", err)
		}
	}
}

// WithSalonData writes a salon data file and points the config at it.
func WithSalonData(url, content string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "salon.yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			b.t.Fatalf("write salon data: %v", err)
		}
		b.cfg.Salon.URL = url
		b.cfg.Salon.DataFile = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WithNtfyTopic points notifications at the given endpoint.
func WithNtfyTopic(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = url
	}
}
