// Package filtering narrows and ranks candidate listings in sequential steps.
package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
)

// Entry is a listed candidate together with the score shown next to it: the
// candidate's own score, or the evaluation's when listing a posting.
type Entry struct {
	Candidate  *recruiting.Candidate
	Evaluation *recruiting.Evaluation
}

func (e *Entry) Score() *int {
	if e.Evaluation != nil {
		return e.Evaluation.Score
	}
	return e.Candidate.Score
}

func (e *Entry) Justification() *string {
	if e.Evaluation != nil {
		return e.Evaluation.Justification
	}
	return e.Candidate.Justification
}

type Entries []*Entry

func FromCandidates(candidates []*recruiting.Candidate) Entries {
	out := make(Entries, len(candidates))
	for i, c := range candidates {
		out[i] = &Entry{Candidate: c}
	}
	return out
}

// FromEvaluations pairs evaluations with their candidates. Evaluations whose
// candidate is missing from candidates are dropped.
func FromEvaluations(evaluations []*recruiting.Evaluation, candidates []*recruiting.Candidate) Entries {
	byID := make(map[int64]*recruiting.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	out := make(Entries, 0, len(evaluations))
	for _, e := range evaluations {
		c, ok := byID[e.CandidateID]
		if !ok {
			continue
		}
		out = append(out, &Entry{Candidate: c, Evaluation: e})
	}
	return out
}

func (es Entries) Len() int { return len(es) }

func (es Entries) Candidates() []*recruiting.Candidate {
	out := make([]*recruiting.Candidate, len(es))
	for i, e := range es {
		out[i] = e.Candidate
	}
	return out
}

// Evaluations returns the evaluations with their candidate attached.
func (es Entries) Evaluations() []*recruiting.Evaluation {
	out := make([]*recruiting.Evaluation, 0, len(es))
	for _, e := range es {
		if e.Evaluation == nil {
			continue
		}
		ev := *e.Evaluation
		ev.Candidate = e.Candidate
		out = append(out, &ev)
	}
	return out
}

// Filter represents a single filtering step applied to entries.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, entries Entries) (Entries, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains the user's filtering choices.
type Config struct {
	Query    string
	MinScore *int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Default returns the steps used for listings: text search, minimum score and ranking.
func Default() []Filter {
	return []Filter{NewSearch(), NewMinScore(), NewRanking()}
}

// Run executes the supplied filters sequentially and returns the remaining entries.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, entries Entries) (Entries, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, entries)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		entries = next
	}

	return entries, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
