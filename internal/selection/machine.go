package selection

import (
	"errors"
	"fmt"
	"sync"

	"stylegen/internal/model"
)

// State is the per-image selection state.
type State string

const (
	Proposed  State = "proposed"
	Confirmed State = "confirmed"
	Finalized State = "finalized"
)

var (
	// ErrIndexOutOfRange is returned when a choice index is not in Choices().
	ErrIndexOutOfRange = errors.New("choice index out of range")
	// ErrFinalized is returned when a finalized batch is modified.
	ErrFinalized = errors.New("selections are finalized")
	// ErrUnknownImage is returned for image names not in the batch.
	ErrUnknownImage = errors.New("unknown image")
)

type entry struct {
	result *model.ProcessResult
	state  State
}

// Machine holds the selection state for one batch. It is safe for concurrent
// use.
type Machine struct {
	mu        sync.Mutex
	order     []string
	entries   map[string]*entry
	finalized bool
}

// New returns an empty machine.
func New() *Machine {
	return &Machine{entries: make(map[string]*entry)}
}

// Load replaces the machine contents with the successful outcomes, each in
// the Proposed state. Failed outcomes are ignored.
func (m *Machine) Load(outcomes []model.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		m.addLocked(o.Result.Clone(), Proposed)
	}
}

// Restore rebuilds the machine from persisted results and states. Images
// without a recorded state start Proposed. If any state is Finalized the
// whole batch is finalized.
func (m *Machine) Restore(results []*model.ProcessResult, states map[string]State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	for _, r := range results {
		if r == nil {
			continue
		}
		state, ok := states[r.ImageName]
		if !ok || state == "" {
			state = Proposed
		}
		if state == Finalized {
			m.finalized = true
		}
		m.addLocked(r.Clone(), state)
	}
	if m.finalized {
		for _, e := range m.entries {
			e.state = Finalized
		}
	}
}

func (m *Machine) reset() {
	m.order = nil
	m.entries = make(map[string]*entry)
	m.finalized = false
}

func (m *Machine) addLocked(r *model.ProcessResult, state State) {
	if _, dup := m.entries[r.ImageName]; !dup {
		m.order = append(m.order, r.ImageName)
	}
	m.entries[r.ImageName] = &entry{result: r, state: state}
}

// Choose selects Choices()[index] for image. On error nothing changes.
func (m *Machine) Choose(image string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, chosen, err := m.pickLocked(image, index)
	if err != nil {
		return err
	}
	e.result.UserSelectedTemplate = &chosen
	e.state = Confirmed
	return nil
}

// Preview returns the result image would have after Choose(image, index)
// without changing the machine.
func (m *Machine) Preview(image string, index int) (*model.ProcessResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, chosen, err := m.pickLocked(image, index)
	if err != nil {
		return nil, err
	}
	r := e.result.Clone()
	r.UserSelectedTemplate = &chosen
	return r, nil
}

func (m *Machine) pickLocked(image string, index int) (*entry, model.Template, error) {
	if m.finalized {
		return nil, model.Template{}, ErrFinalized
	}
	e, ok := m.entries[image]
	if !ok {
		return nil, model.Template{}, fmt.Errorf("%w: %s", ErrUnknownImage, image)
	}
	choices := e.result.Choices()
	if index < 0 || index >= len(choices) {
		return nil, model.Template{}, fmt.Errorf("%w: %d not in [0,%d) for %s", ErrIndexOutOfRange, index, len(choices), image)
	}
	return e, choices[index], nil
}

// ConfirmAll finalizes every image and returns the result set in batch
// order. Calling it again returns the same results.
func (m *Machine) ConfirmAll() []*model.ProcessResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalized = true
	for _, e := range m.entries {
		e.state = Finalized
	}
	return m.resultsLocked()
}

// Finalized reports whether ConfirmAll has run.
func (m *Machine) Finalized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalized
}

// EffectiveTemplate returns the template that export will use for image.
func (m *Machine) EffectiveTemplate(image string) (model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[image]
	if !ok {
		return model.Template{}, fmt.Errorf("%w: %s", ErrUnknownImage, image)
	}
	return e.result.EffectiveTemplate(), nil
}

// State returns the selection state of image.
func (m *Machine) State(image string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[image]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownImage, image)
	}
	return e.state, nil
}

// States returns a copy of every image's state.
func (m *Machine) States() map[string]State {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]State, len(m.entries))
	for name, e := range m.entries {
		out[name] = e.state
	}
	return out
}

// Result returns a copy of one image's result.
func (m *Machine) Result(image string) (*model.ProcessResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[image]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImage, image)
	}
	return e.result.Clone(), nil
}

// Results returns copies of all results in batch order.
func (m *Machine) Results() []*model.ProcessResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsLocked()
}

// Len returns the number of selectable images.
func (m *Machine) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func (m *Machine) resultsLocked() []*model.ProcessResult {
	out := make([]*model.ProcessResult, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.entries[name].result.Clone())
	}
	return out
}
