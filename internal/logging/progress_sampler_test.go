package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"zero uses default", 0, 10},
		{"negative uses default", -1, 10},
		{"custom", 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "processing") {
		t.Error("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(0, "processing") {
		t.Error("first call should log")
	}
	if s.ShouldLog(5, "processing") {
		t.Error("5% should not log (same bucket)")
	}
	if !s.ShouldLog(10, "processing") {
		t.Error("10% should log (new bucket)")
	}
	if !s.ShouldLog(100, "processing") {
		t.Error("100% should log")
	}
	if s.ShouldLog(120, "processing") {
		t.Error("values above 100% share the final bucket")
	}
}

func TestProgressSamplerPhaseChangeResetsBucket(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(50, "processing")

	if !s.ShouldLog(50, "complete") {
		t.Error("phase change should log")
	}
	if s.lastPhase != "complete" {
		t.Errorf("lastPhase = %q, want complete", s.lastPhase)
	}
	if s.ShouldLog(50, " complete ") {
		t.Error("trimmed phase should match previous phase")
	}
}

func TestProgressSamplerNegativePercent(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(-1, "waiting") {
		t.Error("first call should log on phase")
	}
	if s.ShouldLog(-1, "waiting") {
		t.Error("unknown percent should not trigger bucket logging")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(50, "processing")
	s.Reset()
	if s.lastPhase != "" || s.lastBucket != -1 {
		t.Fatalf("unexpected state after reset: %+v", s)
	}
	if !s.ShouldLog(50, "processing") {
		t.Error("should log after reset")
	}
}
