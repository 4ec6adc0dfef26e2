package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stylegen/internal/config"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "stylegen")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Gemini.APIKey != "test-key" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Cache.Backend != "file" {
		t.Fatalf("unexpected cache backend %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != filepath.Join(wantState, "cache.json") {
		t.Fatalf("unexpected cache path %q", cfg.Cache.Path)
	}
	if !cfg.Processing.UseCache {
		t.Fatal("expected cache enabled by default")
	}
	if cfg.Processing.Concurrency != 2 {
		t.Fatalf("unexpected default concurrency %d", cfg.Processing.Concurrency)
	}
	if cfg.Export.Prefix != "hairstyle_analysis" {
		t.Fatalf("unexpected export prefix %q", cfg.Export.Prefix)
	}
	if cfg.CacheTTL().Hours() != 30*24 {
		t.Fatalf("unexpected cache ttl %v", cfg.CacheTTL())
	}
}

func TestLoadCustomFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "stylegen.toml")

	custom := config.Default()
	custom.Paths.StateDir = filepath.Join(dir, "state")
	custom.Processing.Concurrency = 40
	custom.Processing.UseCache = false
	custom.Cache.Backend = "SQLite"
	custom.Export.TableFormat = "CSV"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Processing.Concurrency != 16 {
		t.Fatalf("expected concurrency clamped to 16, got %d", cfg.Processing.Concurrency)
	}
	if cfg.Processing.UseCache {
		t.Fatal("expected use_cache=false to be honoured")
	}
	if cfg.Cache.Backend != "sqlite" {
		t.Fatalf("expected normalized backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != filepath.Join(dir, "state", "cache.db") {
		t.Fatalf("unexpected sqlite cache path %q", cfg.Cache.Path)
	}
	if cfg.Export.TableFormat != "csv" {
		t.Fatalf("expected normalized table format, got %q", cfg.Export.TableFormat)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"cache backend", func(c *config.Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"postgres without dsn", func(c *config.Config) { c.Cache.Backend = "postgres"; c.Cache.PostgresDSN = "" }, "postgres_dsn"},
		{"salon url host", func(c *config.Config) { c.Salon.URL = "https://example.com/salon" }, "salon.url"},
		{"table format", func(c *config.Config) { c.Export.TableFormat = "pdf" }, "export.table_format"},
		{"matcher", func(c *config.Config) { c.Processing.Matcher = "random" }, "processing.matcher"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Path = "/tmp/cache.json"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestValidateAcceptsHotPepperURL(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Path = "/tmp/cache.json"
	cfg.Salon.URL = "https://beauty.hotpepper.jp/slnH000123456/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load: exists=%v err=%v", exists, err)
	}
}

func TestValidateNotificationsTopic(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		wantErr bool
	}{
		{"disabled", "", false},
		{"https topic", "https://ntfy.sh/salon", false},
		{"bare topic name", "salon", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Path = "/tmp/cache.json"
			cfg.Notifications.NtfyTopic = tt.topic
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogFilePath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = ""
	if got := cfg.LogFilePath(); got != "" {
		t.Fatalf("expected empty path without log dir, got %q", got)
	}
	cfg.Paths.LogDir = "/var/log/stylegen"
	if got := cfg.LogFilePath(); got != "/var/log/stylegen/stylegen.log" {
		t.Fatalf("LogFilePath() = %q", got)
	}
}

func TestRedactedHidesSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Gemini.APIKey = "secret-key"
	cfg.Cache.PostgresDSN = "postgres://u:p@db/stylegen"

	redacted := cfg.Redacted()
	if redacted.Gemini.APIKey != "********" || redacted.Cache.PostgresDSN != "********" {
		t.Fatalf("secrets not redacted: %+v", redacted.Gemini)
	}
	if redacted.Cache.RedisPassword != "" {
		t.Fatalf("empty secret should stay empty, got %q", redacted.Cache.RedisPassword)
	}
	if cfg.Gemini.APIKey != "secret-key" {
		t.Fatal("Redacted modified the original config")
	}
}
