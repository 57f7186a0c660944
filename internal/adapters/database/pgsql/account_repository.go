package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vaultis/bankledger/internal/apperrors"
	"github.com/vaultis/bankledger/internal/core/domain"
)

// SaveAccount inserts a newly opened account. A display-number collision
// surfaces as apperrors.ErrDuplicate so the service can regenerate and retry.
func (r *LedgerRepository) SaveAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, account_number, holder_name, account_type, currency_code, status, balance, opened_at, closed_at, freeze_reason, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		account.AccountID,
		account.AccountNumber,
		account.HolderName,
		account.Type,
		account.Balance.CurrencyCode,
		account.Status,
		account.Balance.Amount,
		account.OpenedAt,
		account.ClosedAt,
		account.FreezeReason,
		account.Version,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("account number %s already taken: %w", account.AccountNumber, apperrors.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// UpdateAccount writes the full aggregate snapshot with an optimistic version
// check. Zero rows affected means another writer got there first; the caller
// receives apperrors.ErrConflict and should reload and retry.
func (r *LedgerRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET status = $1, balance = $2, closed_at = $3, freeze_reason = $4, version = version + 1
		WHERE account_id = $5 AND version = $6;
	`
	tag, err := r.db.Exec(ctx, query,
		account.Status,
		account.Balance.Amount,
		account.ClosedAt,
		account.FreezeReason,
		account.AccountID,
		account.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s was modified concurrently: %w", account.AccountID, apperrors.ErrConflict)
	}
	account.Version++
	return nil
}

// FindAccountByID loads the aggregate with its full ledger.
func (r *LedgerRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findAccount(ctx, "account_id = $1", accountID)
}

// FindAccountByNumber loads the aggregate by its display number.
func (r *LedgerRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return r.findAccount(ctx, "account_number = $1", accountNumber)
}

func (r *LedgerRepository) findAccount(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `
		SELECT account_id, account_number, holder_name, account_type, currency_code, status, balance, opened_at, closed_at, freeze_reason, version
		FROM accounts
		WHERE ` + where + `;
	`
	snapshot, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account not found: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	ledger, err := r.loadLedger(ctx, snapshot.AccountID)
	if err != nil {
		return nil, err
	}
	return domain.RestoreAccount(r.clock, r.ids, snapshot, ledger), nil
}

// ListAccounts retrieves a page of account snapshots without their ledgers.
func (r *LedgerRepository) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	query := `
		SELECT account_id, account_number, holder_name, account_type, currency_code, status, balance, opened_at, closed_at, freeze_reason, version
		FROM accounts
		ORDER BY opened_at, account_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return accounts, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		acc          domain.Account
		currencyCode string
		balance      decimal.Decimal
		closedAt     *time.Time
		freezeReason *string
	)
	err := row.Scan(
		&acc.AccountID,
		&acc.AccountNumber,
		&acc.HolderName,
		&acc.Type,
		&currencyCode,
		&acc.Status,
		&balance,
		&acc.OpenedAt,
		&closedAt,
		&freezeReason,
		&acc.Version,
	)
	if err != nil {
		return domain.Account{}, err
	}
	acc.Balance = domain.Money{Amount: balance, CurrencyCode: currencyCode}
	acc.ClosedAt = closedAt
	if freezeReason != nil {
		acc.FreezeReason = *freezeReason
	}
	return acc, nil
}
