package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
)

func scanFolder(row pgx.CollectableRow) (*recruiting.Folder, error) {
	var f recruiting.Folder
	err := row.Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedAt)
	return &f, err
}

func (s *Store) ListFolders(ctx context.Context) (recruiting.Folders, error) {
	rows, err := s.db.Query(ctx, "SELECT id, nombre, parent_id, created_at FROM carpetas ORDER BY nombre")
	if err != nil {
		return nil, store.Wrap("list", store.TableFolders, err)
	}

	folders, err := pgx.CollectRows(rows, scanFolder)
	if err != nil {
		return nil, store.Wrap("list", store.TableFolders, err)
	}
	return folders, nil
}

func (s *Store) CreateFolder(ctx context.Context, f *recruiting.Folder) (*recruiting.Folder, error) {
	created := *f
	err := s.db.QueryRow(ctx,
		"INSERT INTO carpetas (nombre, parent_id) VALUES ($1, $2) RETURNING id, created_at",
		f.Name, f.ParentID,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, store.Wrap("insert", store.TableFolders, err)
	}
	return &created, nil
}

func (s *Store) RenameFolder(ctx context.Context, id int64, name string) error {
	return s.updateOne(ctx, store.TableFolders, id, map[string]any{store.ColName: name})
}

func (s *Store) MoveFolder(ctx context.Context, id int64, parentID *int64) error {
	return s.updateOne(ctx, store.TableFolders, id, map[string]any{store.ColParentID: parentID})
}

func (s *Store) DeleteFolders(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.delete(ctx, store.TableFolders, store.In(store.ColID, ids))
}
