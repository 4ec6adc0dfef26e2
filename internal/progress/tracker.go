package progress

import (
	"strings"
	"sync"
	"time"

	"stylegen/internal/model"
)

// Tracker is a thread-safe progress counter with stage metadata.
type Tracker struct {
	mu     sync.Mutex
	state  model.BatchState
	now    func() time.Time
	subs   map[int]chan model.BatchState
	nextID int
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker returns a tracker in the empty, not-complete state.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		now:  time.Now,
		subs: make(map[int]chan model.BatchState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Reset starts a new batch of total images.
func (t *Tracker) Reset(total int) {
	if total < 0 {
		total = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = model.BatchState{
		Total:     total,
		StartedAt: t.now(),
	}
	t.publishLocked()
}

// Advance moves the counter to index and records a stage label and detail.
// The counter never decreases: a lower index only updates the label. Values
// outside [0,total] are clamped.
func (t *Tracker) Advance(index int, label, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	index = clamp(index, 0, t.state.Total)
	if index > t.state.Current {
		t.state.Current = index
	}
	t.setLabelLocked(label, detail)
	t.publishLocked()
}

// Describe updates the label and detail without moving the counter.
func (t *Tracker) Describe(label, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLabelLocked(label, detail)
	t.publishLocked()
}

// Complete marks the batch finished. Repeated calls are no-ops.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Complete {
		return
	}
	t.state.Current = t.state.Total
	t.state.Complete = true
	t.publishLocked()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() model.BatchState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe returns a channel that always yields the most recent state. Slow
// readers skip intermediate snapshots rather than blocking writers. The
// channel is primed with the current state and closed by cancel.
func (t *Tracker) Subscribe() (<-chan model.BatchState, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	ch := make(chan model.BatchState, 1)
	ch <- t.state
	t.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if sub, ok := t.subs[id]; ok {
				delete(t.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

func (t *Tracker) setLabelLocked(label, detail string) {
	if label = strings.TrimSpace(label); label != "" {
		t.state.Stage = label
	}
	t.state.Detail = strings.TrimSpace(detail)
}

// publishLocked replaces any unread snapshot in each subscriber channel.
// Only this method sends, and it runs under t.mu, so the drain-then-send
// sequence cannot race with another sender.
func (t *Tracker) publishLocked() {
	snapshot := t.state
	for _, ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
