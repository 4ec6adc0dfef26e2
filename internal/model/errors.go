package model

import (
	"fmt"

	"stylegen/internal/services"
)

// FailureKind classifies a per-image failure.
type FailureKind string

const (
	ValidationFailure FailureKind = "validation"
	AnalysisFailure   FailureKind = "analysis"
	TimeoutFailure    FailureKind = "timeout"
	Cancelled         FailureKind = "cancelled"
)

// Marker maps the kind onto the shared service sentinel.
func (k FailureKind) Marker() error {
	switch k {
	case ValidationFailure:
		return services.ErrValidation
	case TimeoutFailure:
		return services.ErrTimeout
	case Cancelled:
		return services.ErrCancelled
	default:
		return services.ErrAnalysis
	}
}

// StageError records which stage failed for one image and why. It is a value
// in the batch output, never a reason to abort the batch.
type StageError struct {
	Image string      `json:"image"`
	Stage string      `json:"stage"`
	Kind  FailureKind `json:"kind"`
	Cause error       `json:"-"`
	// Message keeps the cause text across persistence round trips.
	Message string `json:"message"`
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	return fmt.Sprintf("%s failed at %s (%s): %s", e.Image, e.Stage, e.Kind, msg)
}

// Unwrap exposes both the kind marker and the underlying cause to errors.Is.
func (e *StageError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := []error{e.Kind.Marker()}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
