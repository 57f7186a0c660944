package repositories

import (
	"context"

	"github.com/vaultis/bankledger/internal/core/domain"
)

// AccountReader defines read operations for account aggregates.
type AccountReader interface {
	// FindAccountByID loads an account aggregate, ledger included.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber loads an account by its display number.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account aggregates.
type AccountWriter interface {
	// SaveAccount persists a newly opened account.
	SaveAccount(ctx context.Context, account *domain.Account) error

	// UpdateAccount persists a mutated aggregate snapshot. The write carries an
	// optimistic version check; a stale aggregate yields apperrors.ErrConflict
	// and the caller must reload and retry.
	UpdateAccount(ctx context.Context, account *domain.Account) error
}

// TransactionReader defines read operations for ledger entries.
type TransactionReader interface {
	// FindTransactionByAccountAndKey looks up a ledger entry by its idempotency
	// key. The orchestrating layer uses this for request-level replay before
	// invoking an account mutator.
	FindTransactionByAccountAndKey(ctx context.Context, accountID, idempotencyKey string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves a paginated, insertion-ordered view of
	// an account's ledger.
	ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for ledger entries.
type TransactionWriter interface {
	// SaveTransaction appends a ledger entry. A duplicate (account,
	// idempotency key) pair hits the storage constraint and yields
	// apperrors.ErrDuplicate.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// LedgerRepositoryFacade combines account and transaction persistence with a
// unit-of-work so a transfer's four writes (two aggregates, two entries)
// commit atomically.
type LedgerRepositoryFacade interface {
	AccountReader
	AccountWriter
	TransactionReader
	TransactionWriter

	// WithTx runs fn with a facade bound to a single database transaction.
	// The transaction commits iff fn returns nil.
	WithTx(ctx context.Context, fn func(repo LedgerRepositoryFacade) error) error
}
