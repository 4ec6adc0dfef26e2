package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrAnalysis      = errors.New("analysis error")
	ErrTimeout       = errors.New("timeout")
	ErrFetch         = errors.New("fetch error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrCancelled     = errors.New("cancelled")
	ErrTransient     = errors.New("transient failure")
)

// markers lists the sentinels in classification priority order. Timeout and
// cancellation come first because a collaborator error may wrap both an
// analysis marker and a context error.
var markers = []error{
	ErrCancelled,
	ErrTimeout,
	ErrValidation,
	ErrFetch,
	ErrConfiguration,
	ErrNotFound,
	ErrAnalysis,
	ErrTransient,
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails is the display form of a wrapped error.
type ErrorDetails struct {
	Kind    string
	Marker  error
	Message string
}

// Details classifies err against the sentinel markers and returns a message
// without the marker prefix.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	marker := Marker(err)
	msg := strings.TrimSpace(err.Error())
	if marker != nil {
		msg = strings.TrimSpace(strings.TrimPrefix(msg, marker.Error()+":"))
	}
	return ErrorDetails{
		Kind:    KindOf(err),
		Marker:  marker,
		Message: msg,
	}
}

// Marker returns the sentinel that err is tagged with, or nil.
func Marker(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range markers {
		if errors.Is(err, m) {
			return m
		}
	}
	return nil
}

// KindOf returns a short label for the error class, suitable for logs and
// persisted records.
func KindOf(err error) string {
	switch Marker(err) {
	case ErrCancelled:
		return "cancelled"
	case ErrTimeout:
		return "timeout"
	case ErrValidation:
		return "validation"
	case ErrFetch:
		return "fetch"
	case ErrConfiguration:
		return "configuration"
	case ErrNotFound:
		return "not_found"
	case ErrAnalysis:
		return "analysis"
	case ErrTransient:
		return "transient"
	default:
		if err == nil {
			return ""
		}
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
