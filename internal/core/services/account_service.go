package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vaultis/bankledger/internal/apperrors"
	"github.com/vaultis/bankledger/internal/core/domain"
	portsrepo "github.com/vaultis/bankledger/internal/core/ports/repositories"
	portssvc "github.com/vaultis/bankledger/internal/core/ports/services"
	"github.com/vaultis/bankledger/internal/dto"
)

// maxSaveAttempts bounds the load-mutate-save retry loop used to resolve
// optimistic concurrency conflicts on a single account.
const maxSaveAttempts = 3

// accountService implements the AccountSvcFacade interface.
type accountService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryFacade
	clock      domain.Clock
	ids        domain.IDGenerator
}

// AccountServiceOption is a functional option for configuring the account service.
type AccountServiceOption func(*accountService)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(clock domain.Clock) AccountServiceOption {
	return func(s *accountService) {
		s.clock = clock
	}
}

// WithIDGenerator overrides identifier generation, mainly for tests.
func WithIDGenerator(ids domain.IDGenerator) AccountServiceOption {
	return func(s *accountService) {
		s.ids = ids
	}
}

// NewAccountService creates the account service with the provided options.
func NewAccountService(ledgerRepo portsrepo.LedgerRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		ledgerRepo: ledgerRepo,
		clock:      domain.NewSystemClock(),
		ids:        domain.NewRandomIDGenerator(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest) (*domain.Account, error) {
	// Account numbers are random; retry on the rare storage-level collision.
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		account, err := domain.NewAccount(s.clock, s.ids, req.HolderName, req.AccountType, req.CurrencyCode)
		if err != nil {
			return nil, err
		}
		err = s.ledgerRepo.SaveAccount(ctx, account)
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, "Account number collision, regenerating",
				slog.String("account_number", account.AccountNumber))
			continue
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to save new account")
			return nil, err
		}
		s.LogInfo(ctx, "Account opened",
			slog.String("account_id", account.AccountID),
			slog.String("account_number", account.AccountNumber))
		return account, nil
	}
	return nil, fmt.Errorf("could not allocate a unique account number: %w", apperrors.ErrDuplicate)
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.ledgerRepo.FindAccountByID(ctx, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	return s.ledgerRepo.ListAccounts(ctx, params.Limit, params.Offset)
}

func (s *accountService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, error) {
	// 404 for unknown accounts rather than an empty ledger
	if _, err := s.ledgerRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListTransactionsByAccount(ctx, accountID, params.Limit, params.Offset)
}

func (s *accountService) Deposit(ctx context.Context, accountID string, req dto.MovementRequest) (*domain.Transaction, error) {
	amount, err := domain.NewMoney(req.Amount, req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replayedTransaction(ctx, accountID, req.IdempotencyKey); replayed != nil || err != nil {
		return replayed, err
	}
	return s.applyMovement(ctx, accountID, func(acc *domain.Account) (*domain.Transaction, error) {
		return acc.Deposit(amount, req.IdempotencyKey, req.Description)
	})
}

func (s *accountService) Withdraw(ctx context.Context, accountID string, req dto.MovementRequest) (*domain.Transaction, error) {
	amount, err := domain.NewMoney(req.Amount, req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replayedTransaction(ctx, accountID, req.IdempotencyKey); replayed != nil || err != nil {
		return replayed, err
	}
	return s.applyMovement(ctx, accountID, func(acc *domain.Account) (*domain.Transaction, error) {
		return acc.Withdraw(amount, req.IdempotencyKey, req.Description)
	})
}

func (s *accountService) FreezeAccount(ctx context.Context, accountID, reason string) (*domain.Account, error) {
	return s.applyTransition(ctx, accountID, func(acc *domain.Account) error {
		return acc.Freeze(reason)
	})
}

func (s *accountService) UnfreezeAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.applyTransition(ctx, accountID, func(acc *domain.Account) error {
		return acc.Unfreeze()
	})
}

func (s *accountService) CloseAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.applyTransition(ctx, accountID, func(acc *domain.Account) error {
		return acc.Close()
	})
}

// replayedTransaction implements request-level idempotent replay: when the key
// is already in the account's ledger, the stored transaction is returned
// instead of invoking the mutator again. The in-aggregate duplicate check
// stays in place as the safety net behind this lookup.
func (s *accountService) replayedTransaction(ctx context.Context, accountID, idempotencyKey string) (*domain.Transaction, error) {
	if idempotencyKey == "" {
		return nil, nil
	}
	existing, err := s.ledgerRepo.FindTransactionByAccountAndKey(ctx, accountID, idempotencyKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}
	s.LogInfo(ctx, "Replaying previously processed transaction",
		slog.String("account_id", accountID),
		slog.String("idempotency_key", idempotencyKey),
		slog.String("transaction_id", existing.TransactionID))
	return existing, nil
}

// applyMovement runs a balance mutation through the load-mutate-save cycle,
// persisting the aggregate snapshot and the new ledger entry in one database
// transaction. Version conflicts trigger a reload and retry; domain errors
// are returned as-is and never retried.
func (s *accountService) applyMovement(ctx context.Context, accountID string, mutate func(*domain.Account) (*domain.Transaction, error)) (*domain.Transaction, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		acc, err := s.ledgerRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return nil, err
		}

		txn, err := mutate(acc)
		if err != nil {
			return nil, err
		}

		err = s.ledgerRepo.WithTx(ctx, func(repo portsrepo.LedgerRepositoryFacade) error {
			if err := repo.UpdateAccount(ctx, acc); err != nil {
				return err
			}
			return repo.SaveTransaction(ctx, *txn)
		})
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogWarn(ctx, "Concurrent account update, retrying",
				slog.String("account_id", accountID),
				slog.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to persist account movement",
				slog.String("account_id", accountID))
			return nil, err
		}
		return txn, nil
	}
	return nil, fmt.Errorf("account %s kept changing underneath us: %w", accountID, apperrors.ErrConflict)
}

// applyTransition is applyMovement's sibling for status changes that produce
// no ledger entry (freeze, unfreeze, close).
func (s *accountService) applyTransition(ctx context.Context, accountID string, mutate func(*domain.Account) error) (*domain.Account, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		acc, err := s.ledgerRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return nil, err
		}

		if err := mutate(acc); err != nil {
			return nil, err
		}

		err = s.ledgerRepo.UpdateAccount(ctx, acc)
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogWarn(ctx, "Concurrent account update, retrying",
				slog.String("account_id", accountID),
				slog.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to persist account status change",
				slog.String("account_id", accountID))
			return nil, err
		}
		s.LogInfo(ctx, "Account status changed",
			slog.String("account_id", accountID),
			slog.String("status", string(acc.Status)))
		return acc, nil
	}
	return nil, fmt.Errorf("account %s kept changing underneath us: %w", accountID, apperrors.ErrConflict)
}
