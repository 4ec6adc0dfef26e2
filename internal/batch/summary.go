package batch

import "stylegen/internal/model"

// Summary counts outcomes by result.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	ByKind    map[model.FailureKind]int
}

// Summarize tallies outcomes. Cancelled images count as failed.
func Summarize(outcomes []model.Outcome) Summary {
	s := Summary{Total: len(outcomes), ByKind: make(map[model.FailureKind]int)}
	for _, o := range outcomes {
		if o.OK() {
			s.Succeeded++
			continue
		}
		s.Failed++
		if o.Err != nil {
			s.ByKind[o.Err.Kind]++
		}
	}
	return s
}
