package store

import (
	"time"

	"stylegen/internal/model"
	"stylegen/internal/selection"
)

// ItemStatus is the terminal state of one image in a stored batch.
type ItemStatus string

const (
	StatusSucceeded ItemStatus = "succeeded"
	StatusFailed    ItemStatus = "failed"
)

// NoChoice marks an item whose template was never chosen by a human.
const NoChoice = -1

// Batch is a persisted batch with its items in input order.
type Batch struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Total     int
	Complete  bool
	Finalized bool
	Items     []Item
}

// Item is one image row.
type Item struct {
	Position       int
	ImageName      string
	ImagePath      string
	Status         ItemStatus
	Result         *model.ProcessResult
	Err            *model.StageError
	SelectionState selection.State
	UserChoice     int
}

// NewBatch converts orchestrator outcomes into a storable batch. Successful
// items start in initialState.
func NewBatch(id string, outcomes []model.Outcome, initialState selection.State) Batch {
	b := Batch{
		ID:       id,
		Total:    len(outcomes),
		Complete: true,
		Items:    make([]Item, 0, len(outcomes)),
	}
	for i, o := range outcomes {
		item := Item{
			Position:   i,
			ImageName:  o.Image.Name,
			ImagePath:  o.Image.Path,
			UserChoice: NoChoice,
		}
		if o.OK() {
			item.Status = StatusSucceeded
			item.Result = o.Result
			item.SelectionState = initialState
		} else {
			item.Status = StatusFailed
			item.Err = o.Err
		}
		b.Items = append(b.Items, item)
	}
	return b
}

// Outcomes rebuilds the orchestrator view of the batch.
func (b *Batch) Outcomes() []model.Outcome {
	if b == nil {
		return nil
	}
	out := make([]model.Outcome, 0, len(b.Items))
	for _, item := range b.Items {
		o := model.Outcome{Image: model.ImageRef{Name: item.ImageName, Path: item.ImagePath}}
		if item.Status == StatusSucceeded && item.Result != nil {
			o.Result = item.Result
		} else {
			o.Err = item.Err
			if o.Err == nil {
				o.Err = &model.StageError{Image: item.ImageName, Stage: "unknown", Kind: model.AnalysisFailure, Message: "result missing"}
			}
		}
		out = append(out, o)
	}
	return out
}

// Results returns the successful results in input order.
func (b *Batch) Results() []*model.ProcessResult {
	if b == nil {
		return nil
	}
	var out []*model.ProcessResult
	for _, item := range b.Items {
		if item.Status == StatusSucceeded && item.Result != nil {
			out = append(out, item.Result)
		}
	}
	return out
}

// States maps image name to its stored selection state.
func (b *Batch) States() map[string]selection.State {
	states := make(map[string]selection.State)
	if b == nil {
		return states
	}
	for _, item := range b.Items {
		if item.SelectionState != "" {
			states[item.ImageName] = item.SelectionState
		}
	}
	return states
}

// Failed counts failed items.
func (b *Batch) Failed() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, item := range b.Items {
		if item.Status == StatusFailed {
			n++
		}
	}
	return n
}
