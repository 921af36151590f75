// Package store describes how the screener persists candidates, folders,
// postings and evaluations. Backends live in the subpackages.
package store

import (
	"context"
	"sort"

	"github.com/spigell/cv-screener/internal/recruiting"
)

type Store interface {
	CandidateStore
	FolderStore
	PostingStore
	EvaluationStore

	Close()
}

type CandidateStore interface {
	CreateCandidate(ctx context.Context, c *recruiting.Candidate) (*recruiting.Candidate, error)
	// GetCandidate returns the full record, including the stored file.
	GetCandidate(ctx context.Context, id int64) (*recruiting.Candidate, error)
	// ListCandidates omits the stored file to keep listings small.
	ListCandidates(ctx context.Context, q Query) ([]*recruiting.Candidate, error)
	CountCandidates(ctx context.Context, filters ...Filter) (int, error)
	UpdateCandidate(ctx context.Context, id int64, u CandidateUpdate) error
	MoveCandidates(ctx context.Context, ids []int64, folderID *int64) error
	DeleteCandidates(ctx context.Context, ids []int64) error
}

type FolderStore interface {
	ListFolders(ctx context.Context) (recruiting.Folders, error)
	CreateFolder(ctx context.Context, f *recruiting.Folder) (*recruiting.Folder, error)
	RenameFolder(ctx context.Context, id int64, name string) error
	MoveFolder(ctx context.Context, id int64, parentID *int64) error
	DeleteFolders(ctx context.Context, ids []int64) error
}

type PostingStore interface {
	// ListPostings returns the newest postings first.
	ListPostings(ctx context.Context) ([]*recruiting.JobPosting, error)
	GetPosting(ctx context.Context, id int64) (*recruiting.JobPosting, error)
	CreatePosting(ctx context.Context, p *recruiting.JobPosting) (*recruiting.JobPosting, error)
	UpdatePosting(ctx context.Context, p *recruiting.JobPosting) (*recruiting.JobPosting, error)
}

type EvaluationStore interface {
	ListEvaluations(ctx context.Context, q Query) ([]*recruiting.Evaluation, error)
	CountEvaluations(ctx context.Context, filters ...Filter) (int, error)
	// ApplicationCounts returns the number of evaluations per posting id.
	ApplicationCounts(ctx context.Context) (map[int64]int, error)
	// CreateEvaluation skips the insert when the candidate/posting pair already
	// exists and reports whether a row was created.
	CreateEvaluation(ctx context.Context, e *recruiting.Evaluation) (bool, error)
	UpdateEvaluation(ctx context.Context, id int64, u EvaluationUpdate) error
}

// CandidateUpdate lists the candidate columns to change. Nil fields are left untouched.
type CandidateUpdate struct {
	ExtractedText *string
	FullName      *string
	Email         *string
	Phone         *string
	Notes         *string
	Score         *int
	Justification *string
}

func (u CandidateUpdate) Columns() map[string]any {
	cols := map[string]any{}
	set(cols, ColExtractedText, u.ExtractedText)
	set(cols, ColFullName, u.FullName)
	set(cols, ColEmail, u.Email)
	set(cols, ColPhone, u.Phone)
	set(cols, ColNotes, u.Notes)
	set(cols, ColScore, u.Score)
	set(cols, ColJustification, u.Justification)
	return cols
}

// EvaluationUpdate lists the evaluation columns to change. Nil fields are left untouched.
type EvaluationUpdate struct {
	Score         *int
	Justification *string
	Notes         *string
}

func (u EvaluationUpdate) Columns() map[string]any {
	cols := map[string]any{}
	set(cols, ColScore, u.Score)
	set(cols, ColJustification, u.Justification)
	set(cols, ColNotes, u.Notes)
	return cols
}

func set[T any](cols map[string]any, name string, v *T) {
	if v != nil {
		cols[name] = *v
	}
}

// SortedKeys returns the column names of cols in a stable order.
func SortedKeys(cols map[string]any) []string {
	keys := make([]string, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
