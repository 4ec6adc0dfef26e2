package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stylegen/internal/batch"
	"stylegen/internal/cache"
	"stylegen/internal/config"
	"stylegen/internal/export"
	"stylegen/internal/gemini"
	"stylegen/internal/logging"
	"stylegen/internal/matching"
	"stylegen/internal/notifications"
	"stylegen/internal/progress"
	"stylegen/internal/salon"
	"stylegen/internal/session"
	"stylegen/internal/stage"
	"stylegen/internal/store"
	"stylegen/internal/templates"
)

// analyzerFactory builds the image analyzer. Tests replace it with a fake.
type analyzerFactory func(ctx context.Context, cfg *config.Config, categories []string, logger *slog.Logger) (stage.Analyzer, func() error, error)

func newGeminiAnalyzer(ctx context.Context, cfg *config.Config, categories []string, logger *slog.Logger) (stage.Analyzer, func() error, error) {
	client, err := gemini.New(ctx, gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		MaxRetries:  cfg.Gemini.MaxRetries,
	}, gemini.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return gemini.NewAnalyzer(client, categories), client.Close, nil
}

// app holds everything a command needs for one invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	gateway *cache.Gateway
	store   *store.Store
	session *session.Session
	notify  notifications.Service
	closers []func() error
}

// openApp wires the session. With pipeline set it also loads the template
// catalog and builds the analyzer so a batch can run; useCache additionally
// opens the configured cache backend.
func (c *commandContext) openApp(ctx context.Context, pipeline, useCache bool) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, notify: notifications.NewService(cfg)}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open batch store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	var runner batch.StageRunner
	tracker := progress.NewTracker()
	if pipeline {
		if useCache {
			a.openCache(ctx)
		}
		if runner, err = c.buildRunner(ctx, a, tracker); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	a.session = session.New(batch.New(runner, tracker, logger), session.Options{
		Store:    st,
		Exporter: export.NewCoordinator(cfg.Export.Prefix),
		Logger:   logger,
	})
	return a, nil
}

func (c *commandContext) buildRunner(ctx context.Context, a *app, tracker *progress.Tracker) (*stage.Runner, error) {
	cfg := a.cfg
	parsed, err := templates.LoadFile(cfg.Paths.TemplateCSV)
	if err != nil {
		return nil, fmt.Errorf("load template catalog: %w", err)
	}
	catalog, err := templates.NewCatalog(parsed, cfg.Processing.MaxAlternatives)
	if err != nil {
		return nil, err
	}

	factory := c.analyzers
	if factory == nil {
		factory = newGeminiAnalyzer
	}
	analyzer, closeAnalyzer, err := factory(ctx, cfg, catalog.Categories(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("build analyzer: %w", err)
	}
	if closeAnalyzer != nil {
		a.closers = append(a.closers, closeAnalyzer)
	}

	matcher, ranker := selectMatchers(cfg, analyzer)
	return stage.New(stage.Dependencies{
		Analyzer: analyzer,
		Catalog:  catalog,
		Matcher:  matcher,
		Ranker:   ranker,
		Cache:    a.gateway,
		Progress: tracker,
		Logger:   a.logger,
		Timeout:  cfg.StageTimeout(),
	})
}

// selectMatchers picks stylist/coupon matching and template ranking. The
// "gemini" matcher reuses the analyzer when it supports the calls; otherwise
// keyword similarity is used. Ranking only runs when rank_templates is set.
func selectMatchers(cfg *config.Config, analyzer stage.Analyzer) (stage.StyleMatcher, stage.TemplateRanker) {
	keyword := matching.NewKeyword()
	var (
		matcher stage.StyleMatcher   = keyword
		ranker  stage.TemplateRanker = keyword
	)
	if cfg.Processing.Matcher == "gemini" {
		if m, ok := analyzer.(stage.StyleMatcher); ok {
			matcher = m
		}
		if r, ok := analyzer.(stage.TemplateRanker); ok {
			ranker = r
		}
	}
	if !cfg.Processing.RankTemplates {
		ranker = nil
	}
	return matcher, ranker
}

// openCache connects the configured backend. An unreachable backend leaves
// a store-less gateway behind, which reports every lookup as a miss.
func (a *app) openCache(ctx context.Context) {
	if a.gateway != nil {
		return
	}
	st, err := cache.Open(ctx, a.cfg, a.logger)
	if err != nil {
		logging.WarnWithContext(a.logger, "cache unavailable", "cache_open_failed",
			logging.String("backend", a.cfg.Cache.Backend),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the [cache] settings or run with --no-cache"),
			logging.String(logging.FieldImpact, "every stage runs without cached results"),
		)
		a.gateway = cache.NewGateway(nil, a.cfg.CacheTTL(), a.logger)
		return
	}
	a.gateway = cache.NewGateway(st, a.cfg.CacheTTL(), a.logger)
	a.closers = append(a.closers, st.Close)
}

// loadSalon fetches salon reference data. Failures are logged and yield no
// data so the batch still runs.
func (a *app) loadSalon(ctx context.Context, salonURL string) salon.Data {
	if salonURL == "" {
		return salon.Data{}
	}
	source := salon.NewCachedSource(salon.NewFileSource(a.cfg.Salon.DataFile), a.gateway)
	data, err := source.FetchAll(ctx, salonURL)
	if err != nil {
		logging.WarnWithContext(a.logger, "salon data unavailable", "salon_fetch_failed",
			logging.String("url", salonURL),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check salon.data_file and salon.url"),
			logging.String(logging.FieldImpact, "stylist and coupon selection skipped"),
		)
		return salon.Data{}
	}
	return data
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// publish sends a notification; delivery failures are logged and ignored.
func (a *app) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := a.notify.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(a.logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}
