package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docvault/internal/repository"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories are written against it so the same code serves pooled and
// transactional access.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewStore builds a repository.Store whose repositories all run against q.
func NewStore(q Querier) repository.Store {
	return repository.Store{
		Users:      NewUserPostgres(q),
		Areas:      NewAreaPostgres(q),
		Documents:  NewDocumentPostgres(q),
		Categories: NewCategoryPostgres(q),
		Shares:     NewSharePostgres(q),
		Versions:   NewVersionPostgres(q),
	}
}

// TxRunner implements repository.Atomic over database/sql transactions.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner bound to the given connection pool.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

var _ repository.Atomic = (*TxRunner)(nil)

// WithinTx begins a transaction, hands fn a Store bound to it, and commits
// on success. Any error from fn rolls the transaction back and is returned
// unchanged so typed errors survive.
func (t *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, s repository.Store) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, NewStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
