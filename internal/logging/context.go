package logging

import (
	"context"
	"log/slog"

	"stylegen/internal/services"
)

// Structured field keys shared by every package.
const (
	FieldComponent     = "component"
	FieldBatchID       = "batch_id"
	FieldImage         = "image"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	// FieldEventType is a machine-readable event name, e.g. cache_get_failed.
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

var contextLookups = []struct {
	key    string
	lookup func(context.Context) (string, bool)
}{
	{FieldBatchID, services.BatchIDFromContext},
	{FieldImage, services.ImageFromContext},
	{FieldStage, services.StageFromContext},
	{FieldCorrelationID, services.RequestIDFromContext},
}

// ContextFields returns the batch, image, stage, and correlation attributes
// carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	for _, l := range contextLookups {
		if v, ok := l.lookup(ctx); ok {
			fields = append(fields, slog.String(l.key, v))
		}
	}
	return fields
}

// WithContext attaches ContextFields(ctx) to logger. A nil logger discards.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}
