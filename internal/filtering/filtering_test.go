package filtering

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ptr[T any](v T) *T { return &v }

func sampleEntries() Entries {
	candidates := []*recruiting.Candidate{
		{ID: 1, FileName: "ana.pdf", FullName: ptr("Ana Perez"), Email: ptr("ana@example.com")},
		{ID: 2, FileName: "bruno.pdf", FullName: ptr("Bruno Diaz"), Phone: ptr("+54 11 5555")},
		{ID: 3, FileName: "carla_cv.pdf"},
		{ID: 4, FileName: "dario.pdf", FullName: ptr("Dario Gomez")},
	}
	evaluations := []*recruiting.Evaluation{
		{ID: 10, CandidateID: 1, Score: ptr(72), Justification: ptr("Strong React background")},
		{ID: 11, CandidateID: 2, Score: ptr(recruiting.ScoreFailed), Justification: ptr("Analysis error: timeout")},
		{ID: 12, CandidateID: 3},
		{ID: 13, CandidateID: 4, Score: ptr(90)},
		{ID: 14, CandidateID: 99, Score: ptr(100)},
	}
	return FromEvaluations(evaluations, candidates)
}

func ids(entries Entries) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Candidate.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunAppliesStepsInOrder(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want []int64
	}{
		{name: "ranking only", cfg: &Config{}, want: []int64{4, 1, 2, 3}},
		{name: "search by justification", cfg: &Config{Query: "react"}, want: []int64{1}},
		{name: "search by file name", cfg: &Config{Query: "CARLA"}, want: []int64{3}},
		{name: "search by phone", cfg: &Config{Query: "5555"}, want: []int64{2}},
		{name: "minimum score", cfg: &Config{MinScore: ptr(75)}, want: []int64{4}},
		{name: "minimum zero drops unscored", cfg: &Config{MinScore: ptr(0)}, want: []int64{4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(context.Background(), tt.cfg, Deps{}, Default(), sampleEntries())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !equalIDs(ids(got), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, ids(got))
			}
		})
	}
}

func TestRunRejectsInvalidMinimum(t *testing.T) {
	_, err := Run(context.Background(), &Config{MinScore: ptr(150)}, Deps{}, Default(), sampleEntries())

	var verr *recruiting.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDisabledStepIsSkippedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	steps := Default()
	DisableByName(steps, "ranking", "keep insertion order")

	got, err := Run(context.Background(), &Config{}, Deps{Logger: zap.New(core)}, steps, sampleEntries())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !equalIDs(ids(got), []int64{1, 2, 3, 4}) {
		t.Fatalf("expected original order, got %v", ids(got))
	}

	if logs.FilterMessage("filter disabled").Len() != 1 {
		t.Fatalf("expected disabled step to be logged")
	}
	if logs.FilterMessage("filter step").Len() != 2 {
		t.Fatalf("expected two executed steps to be logged")
	}

	statuses := Describe(steps)
	if statuses[2].Enabled || statuses[2].Reason != "keep insertion order" {
		t.Fatalf("unexpected ranking status %+v", statuses[2])
	}
}

func TestEvaluationsCarryCandidates(t *testing.T) {
	evaluations := sampleEntries().Evaluations()
	if len(evaluations) != 4 {
		t.Fatalf("expected evaluation without candidate to be dropped, got %d", len(evaluations))
	}
	if evaluations[0].Candidate == nil || evaluations[0].Candidate.ID != 1 {
		t.Fatalf("expected candidate to be attached, got %+v", evaluations[0])
	}
}
