package services

import (
	"context"

	"github.com/vaultis/bankledger/internal/core/domain"
	"github.com/vaultis/bankledger/internal/dto"
)

// AccountSvcFacade exposes the account aggregate's factory, queries and
// mutation operations to the transport layer.
type AccountSvcFacade interface {
	// OpenAccount creates a new active account with a zero balance.
	OpenAccount(ctx context.Context, req dto.OpenAccountRequest) (*domain.Account, error)

	// GetAccountByID retrieves an account aggregate with its ledger.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)

	// ListTransactions retrieves a paginated, ordered view of an account's ledger.
	ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, error)

	// Deposit credits the account, replaying the stored transaction when the
	// idempotency key has already been processed.
	Deposit(ctx context.Context, accountID string, req dto.MovementRequest) (*domain.Transaction, error)

	// Withdraw debits the account with the same replay semantics as Deposit.
	Withdraw(ctx context.Context, accountID string, req dto.MovementRequest) (*domain.Transaction, error)

	// FreezeAccount suspends mutations on the account.
	FreezeAccount(ctx context.Context, accountID, reason string) (*domain.Account, error)

	// UnfreezeAccount lifts a freeze.
	UnfreezeAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// CloseAccount closes a zero-balance account permanently.
	CloseAccount(ctx context.Context, accountID string) (*domain.Account, error)
}

// TransferResult carries both halves of a completed transfer.
type TransferResult struct {
	Debit  domain.Transaction
	Credit domain.Transaction
}

// TransferSvcFacade orchestrates two-sided transfers between accounts.
type TransferSvcFacade interface {
	// Transfer moves funds between two accounts, persisting both aggregates
	// and both ledger entries in one unit of work.
	Transfer(ctx context.Context, req dto.CreateTransferRequest) (*TransferResult, error)
}

// ServiceContainer bundles the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Transfer TransferSvcFacade
}
