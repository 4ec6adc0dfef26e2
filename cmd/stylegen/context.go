package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stylegen/internal/config"
	"stylegen/internal/logging"
)

// commandContext carries state shared by every subcommand of one invocation.
// Config and logger are loaded on first use and memoized, errors included.
type commandContext struct {
	configFlag *string
	configPath string
	analyzers  analyzerFactory

	cachedConfig func() (*config.Config, error)
	cachedLogger func() (*slog.Logger, error)
}

func newCommandContext(configFlag *string) *commandContext {
	c := &commandContext{configFlag: configFlag}
	c.cachedConfig = sync.OnceValues(c.loadConfig)
	c.cachedLogger = sync.OnceValues(func() (*slog.Logger, error) {
		cfg, err := c.cachedConfig()
		if err != nil {
			return nil, err
		}
		return logging.NewFromConfig(cfg)
	})
	return c
}

func (c *commandContext) loadConfig() (*config.Config, error) {
	var path string
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, resolved, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	c.configPath = resolved
	return cfg, nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) { return c.cachedConfig() }

func (c *commandContext) ensureLogger() (*slog.Logger, error) { return c.cachedLogger() }

// shouldSkipConfig reports whether cmd or a parent opted out of config
// loading via the skipConfigLoad annotation.
func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
