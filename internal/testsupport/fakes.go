package testsupport

import (
	"context"
	"sync"
	"sync/atomic"

	"stylegen/internal/model"
)

// FakeAnalyzer returns canned analyses and counts calls. Hook, when set, runs
// before every call and may block or fail it.
type FakeAnalyzer struct {
	Style model.StyleAnalysis
	Attrs model.AttributeAnalysis
	Hook  func(ctx context.Context, data []byte) error

	styleCalls atomic.Int64
	attrCalls  atomic.Int64
}

// NewFakeAnalyzer returns an analyzer that classifies everything as a bob.
func NewFakeAnalyzer() *FakeAnalyzer {
	return &FakeAnalyzer{
		Style: model.StyleAnalysis{
			Category: "ボブ",
			Features: model.StyleFeatures{
				Color:        "透明感カラー",
				CutTechnique: "切りっぱなし",
				Styling:      "外ハネ",
				Impression:   "ナチュラル",
			},
			Keywords: []string{"ボブ", "外ハネ"},
		},
		Attrs: model.AttributeAnalysis{Sex: "女性", Length: "ミディアム"},
	}
}

func (f *FakeAnalyzer) AnalyzeStyle(ctx context.Context, data []byte, _ string) (model.StyleAnalysis, error) {
	f.styleCalls.Add(1)
	if f.Hook != nil {
		if err := f.Hook(ctx, data); err != nil {
			return model.StyleAnalysis{}, err
		}
	}
	out := f.Style
	out.Keywords = append([]string(nil), f.Style.Keywords...)
	return out, nil
}

func (f *FakeAnalyzer) AnalyzeAttributes(ctx context.Context, data []byte, _ string) (model.AttributeAnalysis, error) {
	f.attrCalls.Add(1)
	if f.Hook != nil {
		if err := f.Hook(ctx, data); err != nil {
			return model.AttributeAnalysis{}, err
		}
	}
	return f.Attrs, nil
}

// StyleCalls reports how many times AnalyzeStyle was invoked.
func (f *FakeAnalyzer) StyleCalls() int { return int(f.styleCalls.Load()) }

// AttributeCalls reports how many times AnalyzeAttributes was invoked.
func (f *FakeAnalyzer) AttributeCalls() int { return int(f.attrCalls.Load()) }

// RecordingReporter captures progress labels.
type RecordingReporter struct {
	mu     sync.Mutex
	labels []string
}

func (r *RecordingReporter) Describe(label, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, label+"|"+detail)
}

// Labels returns the recorded "label|detail" entries.
func (r *RecordingReporter) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.labels...)
}
