package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

const postingColumns = `id, titulo, descripcion, max_cv, valido_hasta,
	condiciones_necesarias, condiciones_deseables, created_at`

func scanPosting(row pgx.CollectableRow) (*recruiting.JobPosting, error) {
	var p recruiting.JobPosting
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.MaxCV, &p.ValidUntil,
		&p.RequiredConditions, &p.PreferredConditions, &p.CreatedAt,
	)
	return &p, err
}

func (s *Store) ListPostings(ctx context.Context) ([]*recruiting.JobPosting, error) {
	rows, err := s.db.Query(ctx, "SELECT "+postingColumns+" FROM avisos ORDER BY created_at DESC")
	if err != nil {
		return nil, store.Wrap("list", store.TablePostings, err)
	}

	postings, err := pgx.CollectRows(rows, scanPosting)
	if err != nil {
		return nil, store.Wrap("list", store.TablePostings, err)
	}
	return postings, nil
}

func (s *Store) GetPosting(ctx context.Context, id int64) (*recruiting.JobPosting, error) {
	rows, err := s.db.Query(ctx, "SELECT "+postingColumns+" FROM avisos WHERE id = $1", id)
	if err != nil {
		return nil, store.Wrap("get", store.TablePostings, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPosting)
	if err != nil {
		return nil, store.Wrap("get", store.TablePostings, notFound(err))
	}
	return p, nil
}

func (s *Store) CreatePosting(ctx context.Context, p *recruiting.JobPosting) (*recruiting.JobPosting, error) {
	const sql = `
		INSERT INTO avisos (titulo, descripcion, max_cv, valido_hasta, condiciones_necesarias, condiciones_deseables)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + postingColumns

	rows, err := s.db.Query(ctx, sql,
		p.Title, p.Description, p.MaxCV, p.ValidUntil, nonNil(p.RequiredConditions), nonNil(p.PreferredConditions),
	)
	if err != nil {
		return nil, store.Wrap("insert", store.TablePostings, err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, scanPosting)
	if err != nil {
		return nil, store.Wrap("insert", store.TablePostings, err)
	}
	return created, nil
}

func (s *Store) UpdatePosting(ctx context.Context, p *recruiting.JobPosting) (*recruiting.JobPosting, error) {
	const sql = `
		UPDATE avisos
		SET titulo = $2, descripcion = $3, max_cv = $4, valido_hasta = $5,
		    condiciones_necesarias = $6, condiciones_deseables = $7
		WHERE id = $1
		RETURNING ` + postingColumns

	rows, err := s.db.Query(ctx, sql,
		p.ID, p.Title, p.Description, p.MaxCV, p.ValidUntil, nonNil(p.RequiredConditions), nonNil(p.PreferredConditions),
	)
	if err != nil {
		return nil, store.Wrap("update", store.TablePostings, err)
	}

	updated, err := pgx.CollectExactlyOneRow(rows, scanPosting)
	if err != nil {
		return nil, store.Wrap("update", store.TablePostings, notFound(err))
	}
	return updated, nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
