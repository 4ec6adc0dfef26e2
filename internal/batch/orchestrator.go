package batch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stylegen/internal/logging"
	"stylegen/internal/model"
	"stylegen/internal/progress"
	"stylegen/internal/services"
)

const (
	// DefaultConcurrency is used when Options.Concurrency is not positive.
	DefaultConcurrency = 2
	// MaxConcurrency caps the worker pool.
	MaxConcurrency = 16
)

// StageRunner processes one image. *stage.Runner satisfies it.
type StageRunner interface {
	Run(ctx context.Context, img model.ImageRef, stylists []model.StylistInfo, coupons []model.CouponInfo, useCache bool) (*model.ProcessResult, *model.StageError)
}

// Options controls one batch run.
type Options struct {
	Stylists    []model.StylistInfo
	Coupons     []model.CouponInfo
	UseCache    bool
	Concurrency int
}

// Orchestrator runs batches against a StageRunner and reports to a Tracker.
// Runs are exclusive: the tracker only ever describes one batch.
type Orchestrator struct {
	runner  StageRunner
	tracker *progress.Tracker
	logger  *slog.Logger

	// run is held for the whole lifetime of a batch.
	run sync.Mutex
	// mu guards active.
	mu     sync.Mutex
	active *Handle
}

// New returns an Orchestrator. A nil tracker gets a fresh one.
func New(runner StageRunner, tracker *progress.Tracker, logger *slog.Logger) *Orchestrator {
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	return &Orchestrator{
		runner:  runner,
		tracker: tracker,
		logger:  logging.NewComponentLogger(logger, "batch"),
	}
}

// Tracker exposes the progress tracker shared with stage runners.
func (o *Orchestrator) Tracker() *progress.Tracker {
	return o.tracker
}

// Process runs every image and returns one outcome per image in input order.
// It blocks until all images reach a terminal state. Cancelling ctx stops
// new work: images that have not started yield Cancelled outcomes and
// finished images keep their results.
func (o *Orchestrator) Process(ctx context.Context, images []model.ImageRef, opts Options) []model.Outcome {
	o.run.Lock()
	defer o.run.Unlock()
	o.tracker.Reset(len(images))
	return o.process(ctx, images, opts)
}

func (o *Orchestrator) process(ctx context.Context, images []model.ImageRef, opts Options) []model.Outcome {
	if _, ok := services.BatchIDFromContext(ctx); !ok {
		ctx = services.WithBatchID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, o.logger)
	outcomes := make([]model.Outcome, len(images))
	if len(images) == 0 {
		o.tracker.Complete()
		logger.Info("batch skipped", logging.String(logging.FieldEventType, "batch_empty"))
		return outcomes
	}

	workers := clampConcurrency(opts.Concurrency)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("images", len(images)),
		logging.Int("concurrency", workers),
		logging.Bool("use_cache", opts.UseCache),
		logging.Int("stylists", len(opts.Stylists)),
		logging.Int("coupons", len(opts.Coupons)))
	started := time.Now()

	var (
		done     atomic.Int64
		sampleMu sync.Mutex
		sampler  = logging.NewProgressSampler(25)
	)
	completed := func(i int) {
		n := int(done.Add(1))
		label := "Processed"
		if outcomes[i].Err != nil {
			label = "Failed"
		}
		o.tracker.Advance(n, label, images[i].Name)

		snapshot := o.tracker.Snapshot()
		sampleMu.Lock()
		emit := sampler.ShouldLog(snapshot.Percent(), "processing")
		sampleMu.Unlock()
		if emit {
			logger.Info("batch progress",
				logging.String(logging.FieldEventType, "batch_progress"),
				logging.Int("current", snapshot.Current),
				logging.Int("total", snapshot.Total))
		}
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			outcomes[i] = cancelledOutcome(img, err)
			completed(i)
			continue
		}
		g.Go(func() error {
			result, stageErr := o.runner.Run(ctx, img, opts.Stylists, opts.Coupons, opts.UseCache)
			if stageErr != nil {
				outcomes[i] = model.Outcome{Image: img, Err: stageErr}
			} else {
				outcomes[i] = model.Outcome{Image: img, Result: result}
			}
			completed(i)
			return nil
		})
	}
	_ = g.Wait()
	o.tracker.Complete()

	summary := Summarize(outcomes)
	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("cancelled", summary.ByKind[model.Cancelled]),
		logging.Duration("duration", time.Since(started)))
	return outcomes
}

func cancelledOutcome(img model.ImageRef, cause error) model.Outcome {
	return model.Outcome{
		Image: img,
		Err: &model.StageError{
			Image:   img.Name,
			Stage:   "queued",
			Kind:    model.Cancelled,
			Cause:   cause,
			Message: "batch cancelled before the image started",
		},
	}
}

func clampConcurrency(n int) int {
	if n <= 0 {
		return DefaultConcurrency
	}
	return min(n, MaxConcurrency)
}
