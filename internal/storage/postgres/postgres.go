// Package postgres implements the storage.Store interface over pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lessonledger/ledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// querier is the query surface shared by *pgxpool.Pool and pgx.Tx, so the
// same statement code serves both pooled and transactional execution.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the PostgreSQL-backed ledger store.
type Store struct {
	pool *pgxpool.Pool // nil when the store is bound to a transaction
	db   querier
}

// New creates a store over the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// Pool exposes the underlying pool for the migrator.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// InTx runs fn against a store view bound to a single transaction. A store
// already inside a transaction reuses it, so nested calls share one commit.
func (s *Store) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func notFound(err error) bool {
	return err == pgx.ErrNoRows
}
