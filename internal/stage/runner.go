package stage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stylegen/internal/cache"
	"stylegen/internal/logging"
	"stylegen/internal/model"
	"stylegen/internal/services"
	"stylegen/internal/templates"
)

// Dependencies wires the collaborators a Runner calls. Analyzer and Catalog
// are required; the rest are optional.
type Dependencies struct {
	Analyzer Analyzer
	Catalog  TemplateCatalog
	Matcher  StyleMatcher
	Ranker   TemplateRanker
	Cache    *cache.Gateway
	Progress Reporter
	Logger   *slog.Logger
	// Timeout bounds each collaborator call. Zero disables the bound.
	Timeout time.Duration
}

// Runner executes the stage pipeline for one image at a time. It is safe for
// concurrent use as long as its collaborators are.
type Runner struct {
	deps   Dependencies
	logger *slog.Logger
}

// New validates deps and returns a Runner.
func New(deps Dependencies) (*Runner, error) {
	if deps.Analyzer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "stage", "init", "analyzer is required", nil)
	}
	if deps.Catalog == nil {
		return nil, services.Wrap(services.ErrConfiguration, "stage", "init", "template catalog is required", nil)
	}
	return &Runner{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "stage"),
	}, nil
}

// run carries the per-image working state between stages.
type run struct {
	image       model.ImageRef
	data        []byte
	mimeType    string
	fingerprint string
	useCache    bool
	stylists    []model.StylistInfo
	coupons     []model.CouponInfo
	match       templates.Match
	result      *model.ProcessResult
}

// Run takes image through every stage. Exactly one of the return values is
// non-nil.
func (r *Runner) Run(ctx context.Context, img model.ImageRef, stylists []model.StylistInfo, coupons []model.CouponInfo, useCache bool) (*model.ProcessResult, *model.StageError) {
	ctx = services.WithImage(ctx, img.Name)
	state := &run{
		image:    img,
		useCache: useCache,
		stylists: stylists,
		coupons:  coupons,
		result: &model.ProcessResult{
			ImageName: img.Name,
			ImagePath: img.Path,
		},
	}

	steps := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{Load, r.load},
		{StyleAnalysis, r.analyze},
		{TemplateMatch, r.matchTemplates},
		{StylistSelect, r.selectStylist},
		{TitleGenerate, r.generateTitle},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(ctx, img, step.name, model.Cancelled, err)
		}
		stageCtx := services.WithStage(ctx, step.name)
		logger := logging.WithContext(stageCtx, r.logger)
		if r.deps.Progress != nil {
			r.deps.Progress.Describe(Label(step.name), img.Name)
		}
		logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
		started := time.Now()

		if err := step.fn(stageCtx, state); err != nil {
			return nil, r.fail(stageCtx, img, step.name, classify(ctx, err), err)
		}
		logger.Debug("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("duration", time.Since(started)))
	}

	logging.WithContext(ctx, r.logger).Info("image processed",
		logging.String(logging.FieldEventType, "image_complete"),
		logging.String("category", state.result.StyleAnalysis.Category),
		logging.String("template", state.result.SelectedTemplate.Title),
		logging.Int("alternatives", len(state.result.AlternativeTemplates)))
	return state.result, nil
}

func (r *Runner) fail(ctx context.Context, img model.ImageRef, stageName string, kind model.FailureKind, cause error) *model.StageError {
	details := services.Details(cause)
	stageErr := &model.StageError{
		Image:   img.Name,
		Stage:   stageName,
		Kind:    kind,
		Cause:   cause,
		Message: details.Message,
	}
	logging.WithContext(ctx, r.logger).Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String(logging.FieldStage, stageName),
		logging.String("failure_kind", string(kind)),
		logging.String("error_message", details.Message),
		logging.Error(cause))
	return stageErr
}

// classify maps a stage error to a failure kind. A cancelled parent context
// always wins over whatever the collaborator reported.
func classify(parent context.Context, err error) model.FailureKind {
	switch {
	case parent.Err() != nil:
		return model.Cancelled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, services.ErrTimeout):
		return model.TimeoutFailure
	case errors.Is(err, context.Canceled), errors.Is(err, services.ErrCancelled):
		return model.Cancelled
	case errors.Is(err, services.ErrValidation):
		return model.ValidationFailure
	default:
		return model.AnalysisFailure
	}
}

// call runs fn under the per-call timeout. A cancelled ctx stops before fn
// is invoked.
func (r *Runner) call(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// One correlation id per collaborator call; retries inside the client share it.
	ctx = services.WithRequestID(ctx, uuid.NewString())
	if r.deps.Timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.deps.Timeout)
	defer cancel()
	err := fn(callCtx)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w after %s: %w", services.ErrTimeout, r.deps.Timeout, err)
	}
	return err
}

func (r *Runner) cacheGet(ctx context.Context, st *run, stageName string, dst any) bool {
	if !st.useCache {
		return false
	}
	return r.deps.Cache.Get(ctx, cache.Key(st.fingerprint, stageName), dst)
}

func (r *Runner) cachePut(ctx context.Context, st *run, stageName string, v any) {
	if !st.useCache {
		return
	}
	r.deps.Cache.Put(ctx, cache.Key(st.fingerprint, stageName), v)
}

func (r *Runner) load(_ context.Context, st *run) error {
	data, err := st.image.Bytes()
	if err != nil {
		return services.Wrap(services.ErrValidation, Load, "read image", "image could not be read", err)
	}
	if len(data) == 0 {
		return services.Wrap(services.ErrValidation, Load, "read image", "image is empty", nil)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return services.Wrap(services.ErrValidation, Load, "decode header", "unsupported or corrupt image", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return services.Wrap(services.ErrValidation, Load, "decode header",
			fmt.Sprintf("image has zero dimension (%dx%d)", cfg.Width, cfg.Height), nil)
	}
	st.data = data
	st.mimeType = "image/" + format
	st.fingerprint = cache.Fingerprint(data)
	st.result.Fingerprint = st.fingerprint
	return nil
}

func (r *Runner) analyze(ctx context.Context, st *run) error {
	var analysis model.StyleAnalysis
	if !r.cacheGet(ctx, st, StyleAnalysis, &analysis) {
		err := r.call(ctx, func(ctx context.Context) error {
			var err error
			analysis, err = r.deps.Analyzer.AnalyzeStyle(ctx, st.data, st.mimeType)
			return err
		})
		if err != nil {
			return services.Wrap(services.ErrAnalysis, StyleAnalysis, "analyze style", "style analysis failed", err)
		}
		if analysis.Category == "" {
			return services.Wrap(services.ErrAnalysis, StyleAnalysis, "analyze style", "analysis returned no category", nil)
		}
		r.cachePut(ctx, st, StyleAnalysis, analysis)
	}

	var attrs model.AttributeAnalysis
	if !r.cacheGet(ctx, st, attributeAnalysis, &attrs) {
		err := r.call(ctx, func(ctx context.Context) error {
			var err error
			attrs, err = r.deps.Analyzer.AnalyzeAttributes(ctx, st.data, st.mimeType)
			return err
		})
		if err != nil {
			return services.Wrap(services.ErrAnalysis, StyleAnalysis, "analyze attributes", "attribute analysis failed", err)
		}
		r.cachePut(ctx, st, attributeAnalysis, attrs)
	}

	st.result.StyleAnalysis = analysis
	st.result.AttributeAnalysis = attrs
	return nil
}

func (r *Runner) matchTemplates(ctx context.Context, st *run) error {
	var match templates.Match
	if !r.cacheGet(ctx, st, TemplateMatch, &match) || match.Best.IsZero() {
		err := r.call(ctx, func(ctx context.Context) error {
			var err error
			match, err = r.deps.Catalog.Match(ctx, st.result.StyleAnalysis)
			return err
		})
		if err != nil {
			return services.Wrap(services.ErrAnalysis, TemplateMatch, "match templates", "template matching failed", err)
		}
		if match.Best.IsZero() {
			return services.Wrap(services.ErrAnalysis, TemplateMatch, "match templates", "no template matched", nil)
		}
		r.cachePut(ctx, st, TemplateMatch, match)
	}
	st.match = match
	st.result.SelectedTemplate = match.Best
	st.result.AlternativeTemplates = append([]model.Template(nil), match.Alternatives...)
	return nil
}

func (r *Runner) selectStylist(ctx context.Context, st *run) error {
	if r.deps.Matcher == nil {
		return nil
	}
	analysis := st.result.StyleAnalysis
	if len(st.stylists) > 0 {
		var (
			stylist model.StylistInfo
			reason  string
		)
		err := r.call(ctx, func(ctx context.Context) error {
			var err error
			stylist, reason, err = r.deps.Matcher.SelectStylist(ctx, st.stylists, analysis)
			return err
		})
		if err != nil {
			return services.Wrap(services.ErrAnalysis, StylistSelect, "select stylist", "stylist selection failed", err)
		}
		st.result.SelectedStylist = &stylist
		st.result.StylistReason = reason
	}
	if len(st.coupons) > 0 {
		var (
			coupon model.CouponInfo
			reason string
		)
		err := r.call(ctx, func(ctx context.Context) error {
			var err error
			coupon, reason, err = r.deps.Matcher.SelectCoupon(ctx, st.coupons, analysis)
			return err
		})
		if err != nil {
			return services.Wrap(services.ErrAnalysis, StylistSelect, "select coupon", "coupon selection failed", err)
		}
		st.result.SelectedCoupon = &coupon
		st.result.CouponReason = reason
	}
	return nil
}

type rankedTitle struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (r *Runner) generateTitle(ctx context.Context, st *run) error {
	if r.deps.Ranker == nil {
		st.result.TemplateReason = fmt.Sprintf("best catalog match for %s (score %.2f)", st.result.StyleAnalysis.Category, st.match.Score)
		return nil
	}
	candidates := st.result.Choices()
	var ranked rankedTitle
	if !r.cacheGet(ctx, st, TitleGenerate, &ranked) || ranked.Index < 0 || ranked.Index >= len(candidates) {
		err := r.call(ctx, func(ctx context.Context) error {
			var err error
			ranked.Index, ranked.Reason, err = r.deps.Ranker.Rank(ctx, st.result.StyleAnalysis, st.result.AttributeAnalysis, candidates)
			return err
		})
		if err != nil {
			return services.Wrap(services.ErrAnalysis, TitleGenerate, "rank templates", "title generation failed", err)
		}
		if ranked.Index < 0 || ranked.Index >= len(candidates) {
			return services.Wrap(services.ErrAnalysis, TitleGenerate, "rank templates",
				fmt.Sprintf("ranker returned index %d for %d candidates", ranked.Index, len(candidates)), nil)
		}
		r.cachePut(ctx, st, TitleGenerate, ranked)
	}

	st.result.SelectedTemplate = candidates[ranked.Index]
	alternatives := make([]model.Template, 0, len(candidates)-1)
	for i, c := range candidates {
		if i != ranked.Index {
			alternatives = append(alternatives, c)
		}
	}
	st.result.AlternativeTemplates = alternatives
	st.result.TemplateReason = ranked.Reason
	return nil
}
