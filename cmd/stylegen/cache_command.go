package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stylegen/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the analysis cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache backend and entry count",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store cache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				cfg, _ := ctx.ensureConfig()
				rows := [][]string{
					{"Backend", stats.Backend},
					{"Location", stats.Location},
					{"Entries", strconv.Itoa(stats.Entries)},
					{"TTL", fmt.Sprintf("%d days", cfg.Cache.TTLDays)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFields(rows))
				return nil
			})
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store cache.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
				return nil
			})
		},
	})

	return cacheCmd
}

func withCache(cmd *cobra.Command, ctx *commandContext, fn func(cache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	store, err := cache.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}
