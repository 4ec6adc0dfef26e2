package cache

import (
	"context"
	"fmt"
	"log/slog"

	"stylegen/internal/config"
)

// Open builds the Store selected by cfg.Cache.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return NewMemoryStore(nil), nil
	case "file", "":
		return NewFileStore(cfg.Cache.Path, logger)
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.Cache.Path)
	case "redis":
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Username: cfg.Cache.RedisUsername,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TLS:      cfg.Cache.RedisTLS,
			Prefix:   cfg.Cache.KeyPrefix,
		})
	case "postgres":
		return NewPostgresStore(ctx, cfg.Cache.PostgresDSN)
	default:
		return nil, fmt.Errorf("cache backend %q is not supported", cfg.Cache.Backend)
	}
}
