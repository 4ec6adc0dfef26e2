package model

import "time"

// BatchState is an immutable progress snapshot.
type BatchState struct {
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail"`
	StartedAt time.Time `json:"started_at"`
	Complete  bool      `json:"complete"`
}

// Percent returns completion in [0,100]. An empty completed batch reports 100.
func (s BatchState) Percent() float64 {
	if s.Total <= 0 {
		if s.Complete {
			return 100
		}
		return 0
	}
	return float64(s.Current) / float64(s.Total) * 100
}

// Elapsed returns time since the batch started.
func (s BatchState) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Outcome is the per-image slot returned by the orchestrator: exactly one of
// Result or Err is set.
type Outcome struct {
	Image  ImageRef
	Result *ProcessResult
	Err    *StageError
}

// OK reports whether the image finished successfully.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result != nil
}
