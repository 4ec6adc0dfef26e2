package stage

import (
	"context"

	"stylegen/internal/model"
	"stylegen/internal/templates"
)

// Analyzer extracts style and attribute information from image bytes.
type Analyzer interface {
	AnalyzeStyle(ctx context.Context, data []byte, mimeType string) (model.StyleAnalysis, error)
	AnalyzeAttributes(ctx context.Context, data []byte, mimeType string) (model.AttributeAnalysis, error)
}

// TemplateCatalog matches an analysis to the best template and alternatives.
type TemplateCatalog interface {
	Match(ctx context.Context, analysis model.StyleAnalysis) (templates.Match, error)
}

// StyleMatcher chooses salon stylists and coupons for an analysed style.
type StyleMatcher interface {
	SelectStylist(ctx context.Context, stylists []model.StylistInfo, analysis model.StyleAnalysis) (model.StylistInfo, string, error)
	SelectCoupon(ctx context.Context, coupons []model.CouponInfo, analysis model.StyleAnalysis) (model.CouponInfo, string, error)
}

// TemplateRanker reorders template candidates and explains the choice. It
// returns the index of the winning candidate.
type TemplateRanker interface {
	Rank(ctx context.Context, analysis model.StyleAnalysis, attrs model.AttributeAnalysis, candidates []model.Template) (int, string, error)
}

// Reporter receives per-stage progress labels. *progress.Tracker satisfies it.
type Reporter interface {
	Describe(label, detail string)
}
