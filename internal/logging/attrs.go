package logging

import (
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so callers need only this package.
type Attr = slog.Attr

func Bool(key string, value bool) Attr              { return slog.Bool(key, value) }
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }
func Int(key string, value int) Attr                { return slog.Int(key, value) }
func String(key string, value string) Attr          { return slog.String(key, value) }

// Error records err under "error". A nil error is logged as "<nil>" rather
// than dropped so a missing cause is visible.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name, falling back to a
// no-op logger when logger is nil.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// warnDefaults fill in the fields every warning must carry.
var warnDefaults = []Attr{
	slog.String(FieldErrorHint, "check logs for details"),
	slog.String(FieldImpact, "operation completed with warnings"),
}

// WarnWithContext logs a warning tagged with eventType. Warnings always carry
// error_hint and impact; defaults are added when attrs omit them.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	present := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		present[a.Key] = true
	}
	args := make([]any, 0, len(attrs)+3)
	for _, a := range attrs {
		args = append(args, a)
	}
	if !present[FieldEventType] {
		args = append(args, slog.String(FieldEventType, eventType))
	}
	for _, d := range warnDefaults {
		if !present[d.Key] {
			args = append(args, d)
		}
	}
	logger.Warn(msg, args...)
}
