package logging

import (
	"math"
	"strings"
)

// ProgressSampler thins batch progress logging for non-interactive runs. A
// line is due when the phase label changes or the percentage enters a higher
// bucket.
type ProgressSampler struct {
	bucketSize float64
	lastPhase  string
	lastBucket int
}

// NewProgressSampler returns a sampler with buckets of bucketSize percent.
// Non-positive sizes fall back to 10.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	s := &ProgressSampler{bucketSize: bucketSize}
	if s.bucketSize <= 0 {
		s.bucketSize = 10
	}
	s.Reset()
	return s
}

// ShouldLog reports whether this update deserves a log line. A negative
// percent means unknown and only the phase is considered. A nil sampler logs
// everything.
func (s *ProgressSampler) ShouldLog(percent float64, phase string) bool {
	if s == nil {
		return true
	}
	changed := false
	if phase = strings.TrimSpace(phase); phase != "" && phase != s.lastPhase {
		s.lastPhase, s.lastBucket = phase, -1
		changed = true
	}
	if percent < 0 {
		return changed
	}
	if b := int(math.Min(percent, 100) / s.bucketSize); b > s.lastBucket {
		s.lastBucket = b
		changed = true
	}
	return changed
}

// Reset forgets the previous phase and bucket.
func (s *ProgressSampler) Reset() {
	if s != nil {
		s.lastPhase, s.lastBucket = "", -1
	}
}
