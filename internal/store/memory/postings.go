package memory

import (
	"context"
	"slices"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func (s *Store) ListPostings(_ context.Context) ([]*recruiting.JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := query(byID(s.postings), store.Query{}.OrderBy(store.ColCreatedAt, true).OrderBy(store.ColID, true))
	if err != nil {
		return nil, store.Wrap("list", store.TablePostings, err)
	}

	out := make([]*recruiting.JobPosting, len(rows))
	for i, r := range rows {
		p := copyPosting(&r.JobPosting)
		out[i] = &p
	}
	return out, nil
}

func (s *Store) GetPosting(_ context.Context, id int64) (*recruiting.JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.postings[id]
	if !ok {
		return nil, store.Wrap("get", store.TablePostings, store.ErrNotFound)
	}
	out := copyPosting(&p.JobPosting)
	return &out, nil
}

func (s *Store) CreatePosting(_ context.Context, p *recruiting.JobPosting) (*recruiting.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &posting{JobPosting: copyPosting(p)}
	stored.ID = s.id()
	stored.CreatedAt = s.now()
	s.postings[stored.ID] = stored

	out := copyPosting(&stored.JobPosting)
	return &out, nil
}

func (s *Store) UpdatePosting(_ context.Context, p *recruiting.JobPosting) (*recruiting.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.postings[p.ID]
	if !ok {
		return nil, store.Wrap("update", store.TablePostings, store.ErrNotFound)
	}

	createdAt := stored.CreatedAt
	stored.JobPosting = copyPosting(p)
	stored.CreatedAt = createdAt

	out := copyPosting(&stored.JobPosting)
	return &out, nil
}

func copyPosting(p *recruiting.JobPosting) recruiting.JobPosting {
	out := *p
	out.RequiredConditions = slices.Clone(p.RequiredConditions)
	out.PreferredConditions = slices.Clone(p.PreferredConditions)
	if out.RequiredConditions == nil {
		out.RequiredConditions = []string{}
	}
	if out.PreferredConditions == nil {
		out.PreferredConditions = []string{}
	}
	return out
}
