package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaultis/bankledger/internal/core/domain"
	portsrepo "github.com/vaultis/bankledger/internal/core/ports/repositories"
)

// querier is the common surface of *pgxpool.Pool and pgx.Tx, so the same
// repository methods run inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerRepository persists account aggregates and their ledger entries.
// Account and transaction methods live in their own files; this file holds
// the construction and the unit-of-work plumbing.
type LedgerRepository struct {
	pool  *pgxpool.Pool
	db    querier
	clock domain.Clock
	ids   domain.IDGenerator
}

// NewLedgerRepository creates the pgx-backed ledger repository. The clock and
// id generator are threaded through to rehydrated aggregates.
func NewLedgerRepository(pool *pgxpool.Pool, clock domain.Clock, ids domain.IDGenerator) portsrepo.LedgerRepositoryFacade {
	return &LedgerRepository{pool: pool, db: pool, clock: clock, ids: ids}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

// WithTx runs fn against a repository bound to a single database transaction.
// The transaction commits iff fn returns nil.
func (r *LedgerRepository) WithTx(ctx context.Context, fn func(repo portsrepo.LedgerRepositoryFacade) error) error {
	if _, isTx := r.db.(pgx.Tx); isTx {
		// Already inside a transaction; nesting reuses it.
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRepo := &LedgerRepository{pool: r.pool, db: tx, clock: r.clock, ids: r.ids}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
