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

// transferService implements the two-sided transfer protocol: TransferOut on
// the source aggregate, TransferIn on the destination, both persisted within
// one database transaction so funds are conserved even across a crash.
type transferService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// NewTransferService creates the transfer service.
func NewTransferService(ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.TransferSvcFacade {
	return &transferService{ledgerRepo: ledgerRepo}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

func (s *transferService) Transfer(ctx context.Context, req dto.CreateTransferRequest) (*portssvc.TransferResult, error) {
	if req.SourceAccountID == req.DestinationAccountID {
		return nil, fmt.Errorf("source and destination accounts must differ: %w", apperrors.ErrValidation)
	}
	amount, err := domain.NewMoney(req.Amount, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	if result, err := s.replayedTransfer(ctx, req); result != nil || err != nil {
		return result, err
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		source, err := s.ledgerRepo.FindAccountByID(ctx, req.SourceAccountID)
		if err != nil {
			return nil, fmt.Errorf("source account: %w", err)
		}
		dest, err := s.ledgerRepo.FindAccountByID(ctx, req.DestinationAccountID)
		if err != nil {
			return nil, fmt.Errorf("destination account: %w", err)
		}

		// The protocol requires the identical Money on both halves; both
		// mutators validate against their own aggregate before touching state.
		debit, err := source.TransferOut(amount, dest.AccountID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		credit, err := dest.TransferIn(amount, source.AccountID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}

		err = s.ledgerRepo.WithTx(ctx, func(repo portsrepo.LedgerRepositoryFacade) error {
			if err := repo.UpdateAccount(ctx, source); err != nil {
				return err
			}
			if err := repo.UpdateAccount(ctx, dest); err != nil {
				return err
			}
			if err := repo.SaveTransaction(ctx, *debit); err != nil {
				return err
			}
			return repo.SaveTransaction(ctx, *credit)
		})
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogWarn(ctx, "Concurrent update during transfer, retrying",
				slog.String("source_account_id", req.SourceAccountID),
				slog.String("destination_account_id", req.DestinationAccountID),
				slog.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to persist transfer")
			return nil, err
		}

		s.LogInfo(ctx, "Transfer completed",
			slog.String("source_account_id", source.AccountID),
			slog.String("destination_account_id", dest.AccountID),
			slog.String("amount", amount.String()),
			slog.String("idempotency_key", req.IdempotencyKey))
		return &portssvc.TransferResult{Debit: *debit, Credit: *credit}, nil
	}
	return nil, fmt.Errorf("transfer accounts kept changing underneath us: %w", apperrors.ErrConflict)
}

// replayedTransfer returns the stored pair when this transfer has already been
// processed under the same idempotency key. The credit half is looked up with
// the "-in" suffix the destination ledger records.
func (s *transferService) replayedTransfer(ctx context.Context, req dto.CreateTransferRequest) (*portssvc.TransferResult, error) {
	debit, err := s.ledgerRepo.FindTransactionByAccountAndKey(ctx, req.SourceAccountID, req.IdempotencyKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}

	credit, err := s.ledgerRepo.FindTransactionByAccountAndKey(ctx, req.DestinationAccountID, req.IdempotencyKey+"-in")
	if err != nil {
		// The debit exists without its credit half: the pair was not persisted
		// atomically and the books are inconsistent. Surface it loudly.
		s.LogError(ctx, err, "Transfer replay found a debit without its credit half",
			slog.String("source_account_id", req.SourceAccountID),
			slog.String("idempotency_key", req.IdempotencyKey))
		return nil, fmt.Errorf("transfer %q is incomplete: %w", req.IdempotencyKey, err)
	}

	s.LogInfo(ctx, "Replaying previously processed transfer",
		slog.String("idempotency_key", req.IdempotencyKey))
	return &portssvc.TransferResult{Debit: *debit, Credit: *credit}, nil
}
