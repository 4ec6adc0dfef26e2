package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeProcessing()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeSalon(); err != nil {
		return err
	}
	c.normalizeExport()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.TemplateCSV, err = expandPath(c.Paths.TemplateCSV); err != nil {
		return fmt.Errorf("paths.template_csv: %w", err)
	}
	return nil
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeout
	}
	if c.Gemini.MaxRetries < 0 {
		c.Gemini.MaxRetries = 0
	}
}

func (c *Config) normalizeProcessing() {
	switch {
	case c.Processing.Concurrency <= 0:
		c.Processing.Concurrency = defaultConcurrency
	case c.Processing.Concurrency > maxConcurrency:
		c.Processing.Concurrency = maxConcurrency
	}
	if c.Processing.StageTimeoutSeconds <= 0 {
		c.Processing.StageTimeoutSeconds = defaultStageTimeoutSeconds
	}
	if c.Processing.MaxAlternatives < 0 {
		c.Processing.MaxAlternatives = 0
	}
	c.Processing.Matcher = strings.ToLower(strings.TrimSpace(c.Processing.Matcher))
	if c.Processing.Matcher == "" {
		c.Processing.Matcher = defaultMatcher
	}
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if c.Cache.TTLDays <= 0 {
		c.Cache.TTLDays = defaultCacheTTLDays
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		switch c.Cache.Backend {
		case "file":
			c.Cache.Path = filepath.Join(c.Paths.StateDir, "cache.json")
		case "sqlite":
			c.Cache.Path = filepath.Join(c.Paths.StateDir, "cache.db")
		}
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if c.Cache.RedisPassword == "" {
		if value, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
			c.Cache.RedisPassword = value
		}
	}
	if c.Cache.PostgresDSN == "" {
		if value, ok := os.LookupEnv("DATABASE_URL"); ok {
			c.Cache.PostgresDSN = strings.TrimSpace(value)
		}
	}
	c.Cache.RedisAddr = strings.TrimSpace(c.Cache.RedisAddr)
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = defaultRedisAddr
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = defaultCacheKeyPrefix
	}
	return nil
}

func (c *Config) normalizeSalon() error {
	c.Salon.URL = strings.TrimSpace(c.Salon.URL)
	var err error
	if c.Salon.DataFile, err = expandPath(strings.TrimSpace(c.Salon.DataFile)); err != nil {
		return fmt.Errorf("salon.data_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.Prefix = strings.TrimSpace(c.Export.Prefix)
	if c.Export.Prefix == "" {
		c.Export.Prefix = defaultExportPrefix
	}
	c.Export.TableFormat = strings.ToLower(strings.TrimSpace(c.Export.TableFormat))
	if c.Export.TableFormat == "" {
		c.Export.TableFormat = defaultTableFormat
	}
	c.Export.TextFormat = strings.ToLower(strings.TrimSpace(c.Export.TextFormat))
	if c.Export.TextFormat == "" {
		c.Export.TextFormat = defaultTextFormat
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeout
	}
}
