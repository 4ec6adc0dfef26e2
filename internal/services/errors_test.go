package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"stylegen/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrAnalysis, "style_analysis", "analyze", "model failed", base)
	if !errors.Is(err, services.ErrAnalysis) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"style_analysis", "analyze", "model failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	timeoutErr := services.Wrap(services.ErrAnalysis, "style_analysis", "analyze", "", context.DeadlineExceeded)
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", services.Wrap(services.ErrValidation, "load", "decode", "zero size", nil), "validation"},
		{"analysis", services.Wrap(services.ErrAnalysis, "style_analysis", "", "", nil), "analysis"},
		{"timeout wins over analysis", fmt.Errorf("%w: %w", services.ErrTimeout, timeoutErr), "timeout"},
		{"plain", errors.New("x"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetailsStripsMarker(t *testing.T) {
	err := services.Wrap(services.ErrFetch, "salon", "fetch", "unreachable", nil)
	details := services.Details(err)
	if details.Kind != "fetch" {
		t.Fatalf("kind = %q", details.Kind)
	}
	if details.Marker != services.ErrFetch {
		t.Fatalf("marker = %v", details.Marker)
	}
	if details.Message != "salon: fetch: unreachable" {
		t.Fatalf("message = %q", details.Message)
	}
}
