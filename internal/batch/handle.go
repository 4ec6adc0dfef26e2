package batch

import (
	"context"

	"github.com/google/uuid"

	"stylegen/internal/model"
	"stylegen/internal/services"
)

// Handle tracks a batch running in the background.
type Handle struct {
	id       string
	o        *Orchestrator
	cancel   context.CancelFunc
	done     chan struct{}
	outcomes []model.Outcome
}

// Start launches a batch in the background. A batch still running from an
// earlier Start is cancelled and drained first. The tracker is reset before
// Start returns, so Poll immediately reports the new total.
func (o *Orchestrator) Start(ctx context.Context, images []model.ImageRef, opts Options) *Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	if prev := o.active; prev != nil {
		prev.Cancel()
	}
	o.run.Lock()

	id := uuid.NewString()
	runCtx, cancel := context.WithCancel(services.WithBatchID(ctx, id))
	h := &Handle{
		id:     id,
		o:      o,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	o.tracker.Reset(len(images))
	o.active = h
	imgs := append([]model.ImageRef(nil), images...)
	go func() {
		defer close(h.done)
		defer o.run.Unlock()
		defer cancel()
		h.outcomes = o.process(runCtx, imgs, opts)
	}()
	return h
}

// ID returns the batch identifier.
func (h *Handle) ID() string { return h.id }

// Poll returns the current progress snapshot.
func (h *Handle) Poll() model.BatchState {
	return h.o.tracker.Snapshot()
}

// Subscribe streams progress snapshots until the returned cancel func is
// called.
func (h *Handle) Subscribe() (<-chan model.BatchState, func()) {
	return h.o.tracker.Subscribe()
}

// Done is closed once every image has reached a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel requests cooperative cancellation of the batch.
func (h *Handle) Cancel() { h.cancel() }

// Await blocks until the batch finishes or ctx ends. The returned slice is
// owned by the caller.
func (h *Handle) Await(ctx context.Context) ([]model.Outcome, error) {
	select {
	case <-h.done:
		out := make([]model.Outcome, len(h.outcomes))
		copy(out, h.outcomes)
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
