package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"stylegen/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir    string `toml:"state_dir"`
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
	TemplateCSV string `toml:"template_csv"`
}

// Gemini contains settings for the Gemini image-understanding model.
type Gemini struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxRetries     int     `toml:"max_retries"`
}

// Processing controls how a batch is executed.
type Processing struct {
	Concurrency         int  `toml:"concurrency"`
	StageTimeoutSeconds int  `toml:"stage_timeout_seconds"`
	UseCache            bool `toml:"use_cache"`
	MaxAlternatives     int  `toml:"max_alternatives"`
	// Matcher selects the stylist/coupon matcher: "gemini" or "keyword".
	Matcher string `toml:"matcher"`
	// RankTemplates asks Gemini to re-rank catalog candidates and explain the choice.
	RankTemplates bool `toml:"rank_templates"`
}

// Cache contains configuration for the analysis cache.
type Cache struct {
	Backend       string `toml:"backend"` // memory, file, sqlite, redis, postgres
	TTLDays       int    `toml:"ttl_days"`
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisUsername string `toml:"redis_username"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisTLS      bool   `toml:"redis_tls"`
	PostgresDSN   string `toml:"postgres_dsn"`
	KeyPrefix     string `toml:"key_prefix"`
}

// Salon identifies where stylist and coupon data comes from.
type Salon struct {
	URL      string `toml:"url"`
	DataFile string `toml:"data_file"`
}

// Export contains configuration for exported documents.
type Export struct {
	Prefix      string `toml:"prefix"`
	TableFormat string `toml:"table_format"` // xlsx, csv, parquet
	TextFormat  string `toml:"text_format"`  // txt, yaml
}

// Notifications configures ntfy push messages for batch events.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for stylegen.
//
// Configuration sections by subsystem:
//   - Paths: state, output, and log directories plus the template catalog
//   - Gemini: model access for analysis, matching, and ranking
//   - Processing: worker pool size, per-stage timeout, cache usage
//   - Cache: analysis cache backend and TTL
//   - Salon: stylist/coupon reference data
//   - Export: output document naming and formats
//   - Notifications: optional ntfy topic for batch events
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Gemini        Gemini        `toml:"gemini"`
	Processing    Processing    `toml:"processing"`
	Cache         Cache         `toml:"cache"`
	Salon         Salon         `toml:"salon"`
	Export        Export        `toml:"export"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stylegen/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stylegen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a batch run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StageTimeout returns the per-collaborator call budget.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Processing.StageTimeoutSeconds) * time.Second
}

// CacheTTL returns the lifetime of cached stage results.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLDays) * 24 * time.Hour
}

// StoreDBPath is the SQLite database that persists batch state between
// invocations.
func (c *Config) StoreDBPath() string {
	return filepath.Join(c.Paths.StateDir, "batches.db")
}

// LogFilePath is the file log output is mirrored to, or empty when no log
// directory is configured.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "stylegen.log")
}

// LockPath guards against two batches running against the same state dir.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "stylegen.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// redactedValue replaces secrets in Redacted output.
const redactedValue = "********"

// Redacted returns a copy with credentials replaced, for display.
func (c Config) Redacted() Config {
	redact := func(v string) string {
		if v == "" {
			return ""
		}
		return redactedValue
	}
	c.Gemini.APIKey = redact(c.Gemini.APIKey)
	c.Cache.RedisPassword = redact(c.Cache.RedisPassword)
	c.Cache.PostgresDSN = redact(c.Cache.PostgresDSN)
	return c
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.WriteAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
