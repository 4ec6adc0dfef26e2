package model_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stylegen/internal/model"
	"stylegen/internal/services"
)

func TestEffectiveTemplatePrefersUserSelection(t *testing.T) {
	ai := model.Template{Title: "AI"}
	alt := model.Template{Title: "Alt"}
	result := &model.ProcessResult{SelectedTemplate: ai, AlternativeTemplates: []model.Template{alt}}

	if got := result.EffectiveTemplate(); got != ai {
		t.Fatalf("expected AI template before selection, got %+v", got)
	}
	result.UserSelectedTemplate = &alt
	if got := result.EffectiveTemplate(); got != alt {
		t.Fatalf("expected user template after selection, got %+v", got)
	}
}

func TestChoicesPutsSelectedFirst(t *testing.T) {
	result := &model.ProcessResult{
		SelectedTemplate:     model.Template{Title: "A"},
		AlternativeTemplates: []model.Template{{Title: "B"}, {Title: "C"}},
	}
	choices := result.Choices()
	if len(choices) != 3 || choices[0].Title != "A" || choices[2].Title != "C" {
		t.Fatalf("unexpected choices %+v", choices)
	}
}

func TestCloneIsDeep(t *testing.T) {
	user := model.Template{Title: "U"}
	orig := &model.ProcessResult{
		StyleAnalysis:        model.StyleAnalysis{Keywords: []string{"bob"}},
		AlternativeTemplates: []model.Template{{Title: "B"}},
		UserSelectedTemplate: &user,
	}
	cp := orig.Clone()
	cp.StyleAnalysis.Keywords[0] = "changed"
	cp.AlternativeTemplates[0].Title = "changed"
	cp.UserSelectedTemplate.Title = "changed"
	if orig.StyleAnalysis.Keywords[0] != "bob" || orig.AlternativeTemplates[0].Title != "B" || orig.UserSelectedTemplate.Title != "U" {
		t.Fatalf("clone shares state with original: %+v", orig)
	}
}

func TestStageErrorUnwrapsMarkerAndCause(t *testing.T) {
	cause := errors.New("decode failed")
	err := error(&model.StageError{Image: "a.png", Stage: "load", Kind: model.ValidationFailure, Cause: cause})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatal("expected validation marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if services.KindOf(err) != "validation" {
		t.Fatalf("unexpected kind %q", services.KindOf(err))
	}
}

func TestImageRefBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "look.jpg")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	ref := model.ImageFromPath(path)
	if ref.Name != "look.jpg" {
		t.Fatalf("unexpected name %q", ref.Name)
	}
	data, err := ref.Bytes()
	if err != nil || string(data) != "data" {
		t.Fatalf("Bytes() = %q, %v", data, err)
	}
	if _, err := (model.ImageRef{Name: "empty"}).Bytes(); err == nil {
		t.Fatal("expected error for empty reference")
	}
}

func TestBatchStatePercent(t *testing.T) {
	if p := (model.BatchState{Total: 0, Complete: true}).Percent(); p != 100 {
		t.Fatalf("empty complete batch percent = %v", p)
	}
	if p := (model.BatchState{Current: 1, Total: 4}).Percent(); p != 25 {
		t.Fatalf("percent = %v", p)
	}
}
