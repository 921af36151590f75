// Package memory keeps records in process memory. It backs the tests and the
// "memory" database driver used for local trials.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

type Store struct {
	mu sync.RWMutex

	nextID      int64
	candidates  map[int64]*candidate
	folders     map[int64]*folder
	postings    map[int64]*posting
	evaluations map[int64]*evaluation

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		candidates:  make(map[int64]*candidate),
		folders:     make(map[int64]*folder),
		postings:    make(map[int64]*posting),
		evaluations: make(map[int64]*evaluation),
		now:         time.Now,
	}
}

func (s *Store) Close() {}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

type candidate struct{ recruiting.Candidate }

func (c *candidate) column(name string) any {
	switch name {
	case store.ColID:
		return c.ID
	case store.ColFileName:
		return c.FileName
	case store.ColFullName:
		return c.FullName
	case store.ColEmail:
		return c.Email
	case store.ColPhone:
		return c.Phone
	case store.ColFolderID:
		return c.FolderID
	case store.ColScore:
		return c.Score
	case store.ColJustification:
		return c.Justification
	case store.ColCreatedAt:
		return c.CreatedAt
	}
	return nil
}

type folder struct{ recruiting.Folder }

func (f *folder) column(name string) any {
	switch name {
	case store.ColID:
		return f.ID
	case store.ColName:
		return f.Name
	case store.ColParentID:
		return f.ParentID
	case store.ColCreatedAt:
		return f.CreatedAt
	}
	return nil
}

type posting struct{ recruiting.JobPosting }

func (p *posting) column(name string) any {
	switch name {
	case store.ColID:
		return p.ID
	case store.ColTitle:
		return p.Title
	case store.ColValidUntil:
		return p.ValidUntil
	case store.ColCreatedAt:
		return p.CreatedAt
	}
	return nil
}

type evaluation struct{ recruiting.Evaluation }

func (e *evaluation) column(name string) any {
	switch name {
	case store.ColID:
		return e.ID
	case store.ColCandidateID:
		return e.CandidateID
	case store.ColPostingID:
		return e.PostingID
	case store.ColScore:
		return e.Score
	case store.ColCreatedAt:
		return e.CreatedAt
	}
	return nil
}

// byID returns the map values in insertion order.
func byID[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func assign[T any](dst **T, cols map[string]any, name string) {
	if v, ok := cols[name]; ok {
		val := v.(T)
		*dst = &val
	}
}
