package filtering

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
)

type searchFilter struct {
	query    string
	disabled string
}

// NewSearch creates a filter that keeps entries whose name, email, phone,
// file name or justification contain the query, ignoring case.
func NewSearch() Filter {
	return &searchFilter{}
}

func (f *searchFilter) Name() string { return "search" }

func (f *searchFilter) Disable(reason string) { f.disabled = reason }

func (f *searchFilter) IsEnabled() bool { return f.disabled == "" }

func (f *searchFilter) Validate(cfg *Config) error {
	f.query = ""
	if cfg != nil {
		f.query = strings.ToLower(strings.TrimSpace(cfg.Query))
	}
	return nil
}

func (f *searchFilter) Apply(_ context.Context, deps Deps, entries Entries) (Entries, Step, error) {
	initial := entries.Len()
	if f.query == "" {
		return entries, Step{Initial: initial, Left: initial}, nil
	}

	kept := make(Entries, 0, initial)
	for _, e := range entries {
		if f.matches(e) {
			kept = append(kept, e)
		}
	}

	if deps.Logger != nil && len(kept) < initial {
		deps.Logger.Debug("excluding candidates not matching the search",
			zap.String("query", f.query),
			zap.Int("candidates_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *searchFilter) matches(e *Entry) bool {
	c := e.Candidate
	fields := []*string{c.FullName, c.Email, c.Phone, &c.FileName, e.Justification()}
	for _, field := range fields {
		if field != nil && strings.Contains(strings.ToLower(*field), f.query) {
			return true
		}
	}
	return false
}

func (f *searchFilter) Status() Status {
	details := map[string]string{}
	if f.query != "" {
		details["query"] = f.query
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.disabled, Details: details}
}

type minScoreFilter struct {
	min      *int
	disabled string
}

// NewMinScore creates a filter that drops entries scored below the configured
// minimum. Unscored and failed entries are dropped as well when a minimum is set.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(reason string) { f.disabled = reason }

func (f *minScoreFilter) IsEnabled() bool { return f.disabled == "" }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.min = nil
	if cfg == nil || cfg.MinScore == nil {
		return nil
	}
	if *cfg.MinScore < 0 || *cfg.MinScore > 100 {
		return recruiting.NewValidationError("minScore", fmt.Sprintf("must be between 0 and 100, got %d", *cfg.MinScore))
	}
	limit := *cfg.MinScore
	f.min = &limit
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, entries Entries) (Entries, Step, error) {
	initial := entries.Len()
	if f.min == nil {
		return entries, Step{Initial: initial, Left: initial}, nil
	}

	kept := make(Entries, 0, initial)
	for _, e := range entries {
		if s := e.Score(); s != nil && *s >= *f.min {
			kept = append(kept, e)
		}
	}

	if deps.Logger != nil && len(kept) < initial {
		deps.Logger.Debug("excluding candidates below the minimum score",
			zap.Int("min_score", *f.min),
			zap.Int("candidates_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *minScoreFilter) Status() Status {
	details := map[string]string{}
	if f.min != nil {
		details["min_score"] = strconv.Itoa(*f.min)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.disabled, Details: details}
}

type rankingFilter struct {
	disabled string
}

// NewRanking creates a step that orders entries by score, best first. Unscored
// and failed entries go last; ties are broken by display name.
func NewRanking() Filter {
	return &rankingFilter{}
}

func (f *rankingFilter) Name() string { return "ranking" }

func (f *rankingFilter) Disable(reason string) { f.disabled = reason }

func (f *rankingFilter) IsEnabled() bool { return f.disabled == "" }

func (f *rankingFilter) Validate(*Config) error { return nil }

func (f *rankingFilter) Apply(_ context.Context, _ Deps, entries Entries) (Entries, Step, error) {
	ranked := make(Entries, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := rank(ranked[i]), rank(ranked[j])
		if a != b {
			return a > b
		}
		return strings.ToLower(ranked[i].Candidate.DisplayName()) < strings.ToLower(ranked[j].Candidate.DisplayName())
	})

	return ranked, Step{Initial: len(entries), Left: len(ranked)}, nil
}

// rank maps null and failed scores below every real score.
func rank(e *Entry) int {
	s := e.Score()
	if s == nil || *s == recruiting.ScoreFailed {
		return -2
	}
	return *s
}
