package memory

import (
	"context"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func (s *Store) CreateCandidate(_ context.Context, c *recruiting.Candidate) (*recruiting.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.FolderID != nil {
		if _, ok := s.folders[*c.FolderID]; !ok {
			return nil, store.Wrap("insert", store.TableCandidates, store.ErrNotFound)
		}
	}

	stored := &candidate{Candidate: copyCandidate(c)}
	stored.ID = s.id()
	stored.CreatedAt = s.now()
	s.candidates[stored.ID] = stored

	created := copyCandidate(&stored.Candidate)
	return &created, nil
}

func (s *Store) GetCandidate(_ context.Context, id int64) (*recruiting.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, store.Wrap("get", store.TableCandidates, store.ErrNotFound)
	}
	out := copyCandidate(&c.Candidate)
	return &out, nil
}

func (s *Store) ListCandidates(_ context.Context, q store.Query) ([]*recruiting.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := query(byID(s.candidates), q)
	if err != nil {
		return nil, store.Wrap("list", store.TableCandidates, err)
	}

	out := make([]*recruiting.Candidate, len(rows))
	for i, r := range rows {
		c := copyCandidate(&r.Candidate)
		c.RawFileBase64 = ""
		out[i] = &c
	}
	return out, nil
}

func (s *Store) CountCandidates(_ context.Context, filters ...store.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := query(byID(s.candidates), store.Where(filters...))
	if err != nil {
		return 0, store.Wrap("count", store.TableCandidates, err)
	}
	return len(rows), nil
}

func (s *Store) UpdateCandidate(_ context.Context, id int64, u store.CandidateUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return store.Wrap("update", store.TableCandidates, store.ErrNotFound)
	}

	cols := u.Columns()
	if v, ok := cols[store.ColExtractedText]; ok {
		c.ExtractedText = v.(string)
	}
	assign(&c.FullName, cols, store.ColFullName)
	assign(&c.Email, cols, store.ColEmail)
	assign(&c.Phone, cols, store.ColPhone)
	assign(&c.Notes, cols, store.ColNotes)
	assign(&c.Score, cols, store.ColScore)
	assign(&c.Justification, cols, store.ColJustification)
	return nil
}

func (s *Store) MoveCandidates(_ context.Context, ids []int64, folderID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if c, ok := s.candidates[id]; ok {
			c.FolderID = clonePtr(folderID)
		}
	}
	return nil
}

func (s *Store) DeleteCandidates(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.candidates, id)
		for eid, e := range s.evaluations {
			if e.CandidateID == id {
				delete(s.evaluations, eid)
			}
		}
	}
	return nil
}

func copyCandidate(c *recruiting.Candidate) recruiting.Candidate {
	out := *c
	out.FullName = clonePtr(c.FullName)
	out.Email = clonePtr(c.Email)
	out.Phone = clonePtr(c.Phone)
	out.FolderID = clonePtr(c.FolderID)
	out.Notes = clonePtr(c.Notes)
	out.Score = clonePtr(c.Score)
	out.Justification = clonePtr(c.Justification)
	return out
}
