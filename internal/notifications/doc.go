// Package notifications publishes batch events to ntfy.
//
// NewService returns a no-op notifier when no topic is configured, so callers
// publish unconditionally and treat delivery errors as warnings.
package notifications
