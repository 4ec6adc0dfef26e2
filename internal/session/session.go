package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"stylegen/internal/batch"
	"stylegen/internal/export"
	"stylegen/internal/logging"
	"stylegen/internal/model"
	"stylegen/internal/selection"
	"stylegen/internal/services"
	"stylegen/internal/store"
)

var (
	// ErrNoBatch is returned when an operation needs a batch and none exists.
	ErrNoBatch = errors.New("no batch in session")
	// ErrNotReady is returned when results are requested before the batch finished.
	ErrNotReady = errors.New("batch results not ready")
)

// Store persists batches between invocations. *store.Store implements it.
type Store interface {
	SaveBatch(ctx context.Context, b store.Batch) error
	LatestBatch(ctx context.Context) (*store.Batch, error)
	UpdateSelection(ctx context.Context, batchID, image string, state selection.State, choice int, result *model.ProcessResult) error
	MarkFinalized(ctx context.Context, batchID string) error
}

// Options wires optional collaborators.
type Options struct {
	Store    Store
	Exporter *export.Coordinator
	Logger   *slog.Logger
}

// Session coordinates one batch from processing through export.
type Session struct {
	orchestrator *batch.Orchestrator
	store        Store
	exporter     *export.Coordinator
	logger       *slog.Logger

	// write serializes choose and confirm so the store is updated before
	// the selection machine.
	write sync.Mutex

	mu       sync.Mutex
	handle   *batch.Handle
	batchID  string
	outcomes []model.Outcome
	loaded   bool
	machine  *selection.Machine
}

// New returns a Session driving orchestrator.
func New(orchestrator *batch.Orchestrator, opts Options) *Session {
	exporter := opts.Exporter
	if exporter == nil {
		exporter = export.NewCoordinator(export.DefaultPrefix)
	}
	return &Session{
		orchestrator: orchestrator,
		store:        opts.Store,
		exporter:     exporter,
		logger:       logging.NewComponentLogger(opts.Logger, "session"),
		machine:      selection.New(),
	}
}

// StartBatch discards any previous batch and starts processing images in the
// background. Image names must be unique within a batch.
func (s *Session) StartBatch(ctx context.Context, images []model.ImageRef, opts batch.Options) (*batch.Handle, error) {
	if err := validateImages(images); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		select {
		case <-s.handle.Done():
		default:
			s.logger.Info("cancelling previous batch",
				logging.String(logging.FieldBatchID, s.batchID),
				logging.String(logging.FieldEventType, "batch_discarded"),
			)
			s.handle.Cancel()
		}
	}

	handle := s.orchestrator.Start(ctx, images, opts)
	s.handle = handle
	s.batchID = handle.ID()
	s.outcomes = nil
	s.loaded = false
	s.machine = selection.New()
	return handle, nil
}

func validateImages(images []model.ImageRef) error {
	seen := make(map[string]struct{}, len(images))
	for _, img := range images {
		if img.Name == "" {
			return services.Wrap(services.ErrValidation, "session", "start", "image name is required", nil)
		}
		if _, dup := seen[img.Name]; dup {
			return services.Wrap(services.ErrValidation, "session", "start", fmt.Sprintf("duplicate image name %q", img.Name), nil)
		}
		seen[img.Name] = struct{}{}
	}
	return nil
}

// BatchID returns the current batch identifier, or "" when there is none.
func (s *Session) BatchID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchID
}

// PollProgress returns the current progress snapshot.
func (s *Session) PollProgress() model.BatchState {
	return s.orchestrator.Tracker().Snapshot()
}

// AwaitResults waits for the running batch, loads its outcomes into the
// selection machine, and persists them. Later calls return the same outcomes.
func (s *Session) AwaitResults(ctx context.Context) ([]model.Outcome, error) {
	s.mu.Lock()
	handle, loaded := s.handle, s.loaded
	s.mu.Unlock()

	if loaded {
		return s.Outcomes(), nil
	}
	if handle == nil {
		return nil, ErrNoBatch
	}
	outcomes, err := handle.Await(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.handle != handle {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: batch %s was replaced", ErrNoBatch, handle.ID())
	}
	if !s.loaded {
		s.outcomes = outcomes
		s.machine.Load(outcomes)
		s.loaded = true
	}
	batchID := s.batchID
	s.mu.Unlock()

	if err := s.persistBatch(ctx, batchID, outcomes); err != nil {
		return s.Outcomes(), err
	}
	return s.Outcomes(), nil
}

// Outcomes returns the loaded outcomes with successful results reflecting the
// current selection state.
func (s *Session) Outcomes() []model.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Outcome, len(s.outcomes))
	for i, o := range s.outcomes {
		out[i] = o
		if o.OK() {
			if r, err := s.machine.Result(o.Image.Name); err == nil {
				out[i].Result = r
			}
		}
	}
	return out
}

// ChooseTemplate records a human choice for image. Index 0 is the AI choice.
// The choice is stored before it takes effect, so a failed write leaves the
// selection unchanged.
func (s *Session) ChooseTemplate(ctx context.Context, image string, index int) error {
	s.write.Lock()
	defer s.write.Unlock()
	machine, batchID, err := s.ready()
	if err != nil {
		return err
	}
	if s.store != nil {
		result, err := machine.Preview(image, index)
		if err != nil {
			return err
		}
		if err := s.store.UpdateSelection(ctx, batchID, image, selection.Confirmed, index, result); err != nil {
			return fmt.Errorf("persist selection: %w", err)
		}
	}
	return machine.Choose(image, index)
}

// ConfirmSelections finalizes the batch and returns the finalized results.
// Calling it again returns the same set. If the store cannot record the
// confirmation the batch stays open and the call can be retried.
func (s *Session) ConfirmSelections(ctx context.Context) ([]*model.ProcessResult, error) {
	s.write.Lock()
	defer s.write.Unlock()
	machine, batchID, err := s.ready()
	if err != nil {
		return nil, err
	}
	if machine.Finalized() {
		return machine.ConfirmAll(), nil
	}
	if s.store != nil {
		if err := s.store.MarkFinalized(ctx, batchID); err != nil {
			return nil, fmt.Errorf("persist confirmation: %w", err)
		}
	}
	results := machine.ConfirmAll()
	s.logger.Info("selections confirmed",
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("results", len(results)),
		logging.String(logging.FieldEventType, "selections_finalized"),
	)
	return results, nil
}

// Finalized reports whether the current batch has been confirmed.
func (s *Session) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Finalized()
}

// Selection returns the state and choices for one image.
func (s *Session) Selection(image string) (selection.State, []model.Template, error) {
	machine, _, err := s.ready()
	if err != nil {
		return "", nil, err
	}
	state, err := machine.State(image)
	if err != nil {
		return "", nil, err
	}
	result, err := machine.Result(image)
	if err != nil {
		return "", nil, err
	}
	return state, result.Choices(), nil
}

// ExportTable flattens the current results into table rows.
func (s *Session) ExportTable() (export.Table, error) {
	if _, _, err := s.ready(); err != nil {
		return export.Table{}, err
	}
	return export.ToTable(s.Outcomes()), nil
}

// ExportDocument renders the current results in format.
func (s *Session) ExportDocument(format string) (export.Document, error) {
	if _, _, err := s.ready(); err != nil {
		return export.Document{}, err
	}
	return s.exporter.Document(s.Outcomes(), format)
}

// Resume restores the last persisted batch. It reports false when nothing was
// stored.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	b, err := s.store.LatestBatch(ctx)
	if err != nil {
		return false, fmt.Errorf("load batch: %w", err)
	}
	if b == nil {
		return false, nil
	}

	machine := selection.New()
	machine.Restore(b.Results(), b.States())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = nil
	s.batchID = b.ID
	s.outcomes = b.Outcomes()
	s.loaded = true
	s.machine = machine
	return true, nil
}

func (s *Session) ready() (*selection.Machine, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchID == "" {
		return nil, "", ErrNoBatch
	}
	if !s.loaded {
		return nil, "", ErrNotReady
	}
	return s.machine, s.batchID, nil
}

func (s *Session) persistBatch(ctx context.Context, batchID string, outcomes []model.Outcome) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveBatch(ctx, store.NewBatch(batchID, outcomes, selection.Proposed)); err != nil {
		logging.WarnWithContext(s.logger, "batch not persisted", "batch_persist_failed",
			logging.String(logging.FieldBatchID, batchID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions and free space"),
			logging.String(logging.FieldImpact, "results stay in memory; a later resume will not see this batch"),
		)
		return fmt.Errorf("persist batch: %w", err)
	}
	return nil
}
