package memory

import (
	"context"

	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func (s *Store) ListEvaluations(_ context.Context, q store.Query) ([]*recruiting.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := query(byID(s.evaluations), q)
	if err != nil {
		return nil, store.Wrap("list", store.TableEvaluations, err)
	}

	out := make([]*recruiting.Evaluation, len(rows))
	for i, r := range rows {
		e := copyEvaluation(&r.Evaluation)
		out[i] = &e
	}
	return out, nil
}

func (s *Store) CountEvaluations(_ context.Context, filters ...store.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := query(byID(s.evaluations), store.Where(filters...))
	if err != nil {
		return 0, store.Wrap("count", store.TableEvaluations, err)
	}
	return len(rows), nil
}

func (s *Store) ApplicationCounts(_ context.Context) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, e := range s.evaluations {
		counts[e.PostingID]++
	}
	return counts, nil
}

func (s *Store) CreateEvaluation(_ context.Context, e *recruiting.Evaluation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.candidates[e.CandidateID]; !ok {
		return false, store.Wrap("insert", store.TableEvaluations, store.ErrNotFound)
	}
	if _, ok := s.postings[e.PostingID]; !ok {
		return false, store.Wrap("insert", store.TableEvaluations, store.ErrNotFound)
	}

	for _, existing := range s.evaluations {
		if existing.CandidateID == e.CandidateID && existing.PostingID == e.PostingID {
			return false, nil
		}
	}

	stored := &evaluation{Evaluation: copyEvaluation(e)}
	stored.ID = s.id()
	stored.CreatedAt = s.now()
	s.evaluations[stored.ID] = stored
	return true, nil
}

func (s *Store) UpdateEvaluation(_ context.Context, id int64, u store.EvaluationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.evaluations[id]
	if !ok {
		return store.Wrap("update", store.TableEvaluations, store.ErrNotFound)
	}

	cols := u.Columns()
	assign(&e.Score, cols, store.ColScore)
	assign(&e.Justification, cols, store.ColJustification)
	assign(&e.Notes, cols, store.ColNotes)
	return nil
}

func copyEvaluation(e *recruiting.Evaluation) recruiting.Evaluation {
	out := *e
	out.Score = clonePtr(e.Score)
	out.Justification = clonePtr(e.Justification)
	out.Notes = clonePtr(e.Notes)
	out.Candidate = nil
	return out
}
