package services

import "context"

type ctxKey int

const (
	batchIDKey ctxKey = iota
	imageKey
	stageKey
	requestIDKey
)

func withValue(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func value(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithBatchID tags ctx with the batch identifier. Empty ids are ignored.
func WithBatchID(ctx context.Context, id string) context.Context {
	return withValue(ctx, batchIDKey, id)
}

// BatchIDFromContext returns the batch identifier, if any.
func BatchIDFromContext(ctx context.Context) (string, bool) { return value(ctx, batchIDKey) }

// WithImage tags ctx with the name of the image being processed.
func WithImage(ctx context.Context, name string) context.Context {
	return withValue(ctx, imageKey, name)
}

// ImageFromContext returns the image name, if any.
func ImageFromContext(ctx context.Context) (string, bool) { return value(ctx, imageKey) }

// WithStage tags ctx with the current pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name, if any.
func StageFromContext(ctx context.Context) (string, bool) { return value(ctx, stageKey) }

// WithRequestID tags ctx with a correlation id for one collaborator call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation id, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) { return value(ctx, requestIDKey) }
