// Package logging assembles structured slog loggers and formatting helpers used
// across stylegen.
//
// Console output goes through tint with colour only when writing to a
// terminal; JSON output uses the standard slog JSON handler with short keys.
// Context helpers tag log lines with batch IDs, image names, and stages so
// concurrent workers stay distinguishable. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
