package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here; commands that call Gemini verify the API key during preflight so
// offline commands (export, cache, config) keep working without one.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.validateProcessing()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateSalon()...)
	errs = append(errs, c.validateExport()...)
	errs = append(errs, c.validateNotifications()...)
	errs = append(errs, c.validateLogging()...)
	return errors.Join(errs...)
}

func (c *Config) validateProcessing() []error {
	var errs []error
	if c.Processing.Concurrency < 1 || c.Processing.Concurrency > maxConcurrency {
		errs = append(errs, fmt.Errorf("processing.concurrency must be between 1 and %d", maxConcurrency))
	}
	switch c.Processing.Matcher {
	case "gemini", "keyword":
	default:
		errs = append(errs, fmt.Errorf("processing.matcher: unsupported value %q (use gemini or keyword)", c.Processing.Matcher))
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		errs = append(errs, errors.New("gemini.temperature must be between 0 and 2"))
	}
	return errs
}

func (c *Config) validateCache() []error {
	switch c.Cache.Backend {
	case "memory":
	case "file", "sqlite":
		if strings.TrimSpace(c.Cache.Path) == "" {
			return []error{fmt.Errorf("cache.path is required for the %s backend", c.Cache.Backend)}
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return []error{errors.New("cache.redis_addr is required for the redis backend")}
		}
	case "postgres":
		if c.Cache.PostgresDSN == "" {
			return []error{errors.New("cache.postgres_dsn is required for the postgres backend (or set DATABASE_URL)")}
		}
	default:
		return []error{fmt.Errorf("cache.backend: unsupported value %q", c.Cache.Backend)}
	}
	return nil
}

func (c *Config) validateSalon() []error {
	if c.Salon.URL == "" {
		return nil
	}
	if !strings.HasPrefix(c.Salon.URL, hotPepperBeautyPrefix) {
		return []error{fmt.Errorf("salon.url must start with %s", hotPepperBeautyPrefix)}
	}
	return nil
}

func (c *Config) validateExport() []error {
	var errs []error
	switch c.Export.TableFormat {
	case "xlsx", "csv", "parquet":
	default:
		errs = append(errs, fmt.Errorf("export.table_format: unsupported value %q", c.Export.TableFormat))
	}
	switch c.Export.TextFormat {
	case "txt", "yaml":
	default:
		errs = append(errs, fmt.Errorf("export.text_format: unsupported value %q", c.Export.TextFormat))
	}
	return errs
}

func (c *Config) validateLogging() []error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return []error{fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)}
	}
}

func (c *Config) validateNotifications() []error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return []error{fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)}
	}
	return nil
}
