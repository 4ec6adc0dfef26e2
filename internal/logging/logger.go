package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"stylegen/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format is "console" (tint, the default) or "json".
	Format string
	// OutputPaths accepts "stdout", "stderr", or file paths. Empty means stderr.
	OutputPaths []string
	Development bool
	NoColor     bool
}

// output is the combined destination for a logger.
type output struct {
	w io.Writer
	// tty is true only when every destination is a terminal.
	tty bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	var level slog.LevelVar
	level.Set(parseLevel(opts.Level))
	source := opts.Development || level.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "" && format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	out, err := openOutput(opts.OutputPaths)
	if err != nil {
		return nil, err
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(out.w, &slog.HandlerOptions{
			Level:       &level,
			AddSource:   source,
			ReplaceAttr: compactJSON,
		})), nil
	}
	return slog.New(tint.NewHandler(out.w, &tint.Options{
		Level:      &level,
		AddSource:  source,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor || !out.tty,
	})), nil
}

// NewFromConfig logs to stderr and, when log_dir is set, appends to
// stylegen.log inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	opts := Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	}
	if path := cfg.LogFilePath(); path != "" {
		opts.OutputPaths = append(opts.OutputPaths, path)
	}
	return New(opts)
}

func parseLevel(name string) slog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func openOutput(paths []string) (output, error) {
	out := output{tty: true}
	var writers []io.Writer
	var opened []string
	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" || slices.Contains(opened, path) {
			continue
		}
		opened = append(opened, path)

		if std := stdStream(path); std != nil {
			writers = append(writers, std)
			out.tty = out.tty && isatty.IsTerminal(std.Fd())
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return output{}, fmt.Errorf("ensure log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return output{}, fmt.Errorf("open log file %s: %w", path, err)
		}
		writers = append(writers, f)
		out.tty = false
	}

	switch len(writers) {
	case 0:
		out.w = os.Stderr
		out.tty = isatty.IsTerminal(os.Stderr.Fd())
	case 1:
		out.w = writers[0]
	default:
		out.w = io.MultiWriter(writers...)
	}
	return out, nil
}

func stdStream(name string) *os.File {
	switch name {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	}
	return nil
}

// compactJSON shortens the built-in keys: ts in UTC RFC3339, lowercase
// level, and file:line source.
func compactJSON(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			return slog.String("ts", t.UTC().Format(time.RFC3339))
		}
		a.Key = "ts"
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToLower(lvl.String()))
		}
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
			a.Value = slog.StringValue(filepath.Base(src.File) + ":" + fmt.Sprint(src.Line))
		}
	}
	return a
}
