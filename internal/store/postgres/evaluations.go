package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

const evaluationColumns = "id, candidato_id, aviso_id, calificacion, resumen, notas, created_at"

func scanEvaluation(row pgx.CollectableRow) (*recruiting.Evaluation, error) {
	var e recruiting.Evaluation
	err := row.Scan(&e.ID, &e.CandidateID, &e.PostingID, &e.Score, &e.Justification, &e.Notes, &e.CreatedAt)
	return &e, err
}

func (s *Store) ListEvaluations(ctx context.Context, q store.Query) ([]*recruiting.Evaluation, error) {
	sql, args, err := selectSQL(evaluationColumns, store.TableEvaluations, q)
	if err != nil {
		return nil, store.Wrap("list", store.TableEvaluations, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, store.Wrap("list", store.TableEvaluations, err)
	}

	evaluations, err := pgx.CollectRows(rows, scanEvaluation)
	if err != nil {
		return nil, store.Wrap("list", store.TableEvaluations, err)
	}
	return evaluations, nil
}

func (s *Store) CountEvaluations(ctx context.Context, filters ...store.Filter) (int, error) {
	return s.count(ctx, store.TableEvaluations, filters)
}

func (s *Store) ApplicationCounts(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.Query(ctx, "SELECT aviso_id, count(*) FROM evaluaciones GROUP BY aviso_id")
	if err != nil {
		return nil, store.Wrap("count", store.TableEvaluations, err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var postingID int64
		var n int
		if err := rows.Scan(&postingID, &n); err != nil {
			return nil, store.Wrap("count", store.TableEvaluations, err)
		}
		counts[postingID] = n
	}
	return counts, store.Wrap("count", store.TableEvaluations, rows.Err())
}

func (s *Store) CreateEvaluation(ctx context.Context, e *recruiting.Evaluation) (bool, error) {
	const sql = `
		INSERT INTO evaluaciones (candidato_id, aviso_id, calificacion, resumen, notas)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (candidato_id, aviso_id) DO NOTHING`

	tag, err := s.db.Exec(ctx, sql, e.CandidateID, e.PostingID, e.Score, e.Justification, e.Notes)
	if err != nil {
		return false, store.Wrap("insert", store.TableEvaluations, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) UpdateEvaluation(ctx context.Context, id int64, u store.EvaluationUpdate) error {
	return s.updateOne(ctx, store.TableEvaluations, id, u.Columns())
}
