package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

const (
	candidateColumns = `id, nombre_archivo, COALESCE(base64, ''), COALESCE(texto_cv, ''), nombre_candidato,
		email, telefono, carpeta_id, notas, calificacion, resumen, created_at`
	candidateListColumns = `id, nombre_archivo, '', COALESCE(texto_cv, ''), nombre_candidato,
		email, telefono, carpeta_id, notas, calificacion, resumen, created_at`
)

func scanCandidate(row pgx.CollectableRow) (*recruiting.Candidate, error) {
	var c recruiting.Candidate
	err := row.Scan(
		&c.ID, &c.FileName, &c.RawFileBase64, &c.ExtractedText, &c.FullName,
		&c.Email, &c.Phone, &c.FolderID, &c.Notes, &c.Score, &c.Justification, &c.CreatedAt,
	)
	return &c, err
}

func (s *Store) CreateCandidate(ctx context.Context, c *recruiting.Candidate) (*recruiting.Candidate, error) {
	const sql = `
		INSERT INTO candidatos (nombre_archivo, base64, texto_cv, nombre_candidato, email, telefono, carpeta_id, notas)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	created := *c
	err := s.db.QueryRow(ctx, sql,
		c.FileName, c.RawFileBase64, c.ExtractedText, c.FullName, c.Email, c.Phone, c.FolderID, c.Notes,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, store.Wrap("insert", store.TableCandidates, err)
	}
	return &created, nil
}

func (s *Store) GetCandidate(ctx context.Context, id int64) (*recruiting.Candidate, error) {
	rows, err := s.db.Query(ctx, "SELECT "+candidateColumns+" FROM candidatos WHERE id = $1", id)
	if err != nil {
		return nil, store.Wrap("get", store.TableCandidates, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCandidate)
	if err != nil {
		return nil, store.Wrap("get", store.TableCandidates, notFound(err))
	}
	return c, nil
}

func (s *Store) ListCandidates(ctx context.Context, q store.Query) ([]*recruiting.Candidate, error) {
	sql, args, err := selectSQL(candidateListColumns, store.TableCandidates, q)
	if err != nil {
		return nil, store.Wrap("list", store.TableCandidates, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, store.Wrap("list", store.TableCandidates, err)
	}

	candidates, err := pgx.CollectRows(rows, scanCandidate)
	if err != nil {
		return nil, store.Wrap("list", store.TableCandidates, err)
	}
	return candidates, nil
}

func (s *Store) CountCandidates(ctx context.Context, filters ...store.Filter) (int, error) {
	return s.count(ctx, store.TableCandidates, filters)
}

func (s *Store) UpdateCandidate(ctx context.Context, id int64, u store.CandidateUpdate) error {
	return s.updateOne(ctx, store.TableCandidates, id, u.Columns())
}

func (s *Store) MoveCandidates(ctx context.Context, ids []int64, folderID *int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.update(ctx, store.TableCandidates,
		map[string]any{store.ColFolderID: folderID},
		store.In(store.ColID, ids),
	)
	return err
}

func (s *Store) DeleteCandidates(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.delete(ctx, store.TableCandidates, store.In(store.ColID, ids))
}
