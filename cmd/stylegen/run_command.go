package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"stylegen/internal/batch"
	"stylegen/internal/model"
	"stylegen/internal/notifications"
	"stylegen/internal/preflight"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		noCache       bool
		concurrency   int
		salonURL      string
		skipPreflight bool
	)

	cmd := &cobra.Command{
		Use:   "run <image|dir>...",
		Short: "Analyse a batch of hairstyle images",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one image or directory is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			images, err := collectImages(args)
			if err != nil {
				return err
			}
			if len(images) == 0 {
				return errors.New("no images found in the given paths")
			}

			if !skipPreflight {
				results := preflight.RunAll(cmd.Context(), cfg)
				if blocking := preflight.Blocking(results); len(blocking) > 0 {
					fmt.Fprintln(out, renderPreflight(blocking))
					return fmt.Errorf("preflight failed: %d check(s) need attention", len(blocking))
				}
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another stylegen batch is already running")
			}
			defer func() { _ = lock.Unlock() }()

			useCache := cfg.Processing.UseCache && !noCache
			a, err := ctx.openApp(cmd.Context(), true, useCache)
			if err != nil {
				return err
			}
			defer a.Close()

			if strings.TrimSpace(salonURL) == "" {
				salonURL = cfg.Salon.URL
			}
			salonData := a.loadSalon(cmd.Context(), strings.TrimSpace(salonURL))

			if concurrency <= 0 {
				concurrency = cfg.Processing.Concurrency
			}
			handle, err := a.session.StartBatch(cmd.Context(), images, batch.Options{
				Stylists:    salonData.Stylists,
				Coupons:     salonData.Coupons,
				UseCache:    useCache,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Batch %s: %d image(s)\n", handle.ID(), len(images))
			started := time.Now()
			a.publish(cmd.Context(), notifications.EventBatchStarted, notifications.Payload{"count": len(images)})

			if shouldShowProgress(out) {
				followProgress(out, handle)
			}

			// Results are collected even after Ctrl+C so finished images are kept.
			outcomes, err := a.session.AwaitResults(context.WithoutCancel(cmd.Context()))
			if outcomes == nil && err != nil {
				return err
			}
			fmt.Fprintln(out, renderOutcomes(outcomes))
			summary := batch.Summarize(outcomes)
			fmt.Fprintf(out, "%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
			a.publish(context.WithoutCancel(cmd.Context()), notifications.EventBatchCompleted, notifications.Payload{
				"succeeded": summary.Succeeded,
				"failed":    summary.Failed,
				"duration":  time.Since(started),
			})
			if err != nil {
				return err
			}
			if summary.Succeeded > 0 {
				fmt.Fprintln(out, "Review with `stylegen results`, then `stylegen confirm` and `stylegen export`.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached analysis results")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Images processed in parallel (default from config)")
	cmd.Flags().StringVar(&salonURL, "salon-url", "", "HotPepper Beauty salon URL (default from config)")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start without running readiness checks")
	return cmd
}

// collectImages expands args into image references. Directories contribute
// their image files in name order; explicit files are taken as given.
func collectImages(args []string) ([]model.ImageRef, error) {
	var images []model.ImageRef
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("inspect %q: %w", arg, err)
		}
		if !info.IsDir() {
			images = append(images, model.ImageFromPath(arg))
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %q: %w", arg, err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			images = append(images, model.ImageFromPath(filepath.Join(arg, name)))
		}
	}
	return images, nil
}

func followProgress(out io.Writer, handle *batch.Handle) {
	updates, cancel := handle.Subscribe()
	defer cancel()
	for {
		select {
		case state, ok := <-updates:
			if !ok {
				return
			}
			fmt.Fprintf(out, "\r\033[K%s", progressLine(state))
		case <-handle.Done():
			fmt.Fprintf(out, "\r\033[K%s\n", progressLine(handle.Poll()))
			return
		}
	}
}

func progressLine(state model.BatchState) string {
	line := fmt.Sprintf("[%d/%d] %3.0f%%", state.Current, state.Total, state.Percent())
	if state.Stage != "" {
		line += " " + state.Stage
	}
	if state.Detail != "" {
		line += ": " + state.Detail
	}
	return line
}

func renderOutcomes(outcomes []model.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for i, o := range outcomes {
		row := []string{fmt.Sprintf("%d", i+1), o.Image.Name}
		if o.OK() {
			row = append(row, "ok", o.Result.StyleAnalysis.Category, o.Result.EffectiveTemplate().Title)
		} else {
			row = append(row, fmt.Sprintf("failed (%s)", o.Err.Kind), o.Err.Stage, failureMessage(o.Err))
		}
		rows = append(rows, row)
	}
	cols := columns("#", "Image", "Status", "Category / Stage", "Template / Error")
	cols[0].right = true
	return renderTable(cols, rows)
}

func failureMessage(err *model.StageError) string {
	if err == nil {
		return ""
	}
	if err.Message != "" {
		return err.Message
	}
	if err.Cause != nil {
		return err.Cause.Error()
	}
	return string(err.Kind)
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		switch {
		case !r.Passed && r.Optional:
			status = "warn"
		case !r.Passed:
			status = "FAIL"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable(columns("Check", "Status", "Detail"), rows)
}
