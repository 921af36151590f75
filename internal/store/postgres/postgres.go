// Package postgres stores records in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

// querier is implemented by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool   *pgxpool.Pool
	db     querier
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// Connect opens a pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{pool: pool, db: pool, logger: logger}, nil
}

// Migrate creates the tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	s.logger.Info("database schema is up to date")
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) count(ctx context.Context, table string, filters []store.Filter) (int, error) {
	sql, args, err := countSQL(table, filters)
	if err != nil {
		return 0, store.Wrap("count", table, err)
	}

	var n int
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, store.Wrap("count", table, err)
	}
	return n, nil
}

func (s *Store) update(ctx context.Context, table string, cols map[string]any, filters ...store.Filter) (int64, error) {
	if len(cols) == 0 {
		return 0, nil
	}

	sql, args, err := updateSQL(table, cols, filters)
	if err != nil {
		return 0, store.Wrap("update", table, err)
	}

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, store.Wrap("update", table, err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) updateOne(ctx context.Context, table string, id int64, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	n, err := s.update(ctx, table, cols, store.Eq(store.ColID, id))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.Wrap("update", table, store.ErrNotFound)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, table string, filters ...store.Filter) error {
	sql, args, err := deleteSQL(table, filters)
	if err != nil {
		return store.Wrap("delete", table, err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return store.Wrap("delete", table, err)
	}
	return nil
}

// notFound maps pgx.ErrNoRows to store.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
