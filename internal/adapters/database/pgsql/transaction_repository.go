package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vaultis/bankledger/internal/apperrors"
	"github.com/vaultis/bankledger/internal/core/domain"
)

const transactionColumns = `transaction_id, reference, account_id, type, amount, currency_code, balance_after, status, description, idempotency_key, processed_at, counterparty_account_id`

// SaveTransaction appends one ledger entry. The UNIQUE (account_id,
// idempotency_key) constraint is the storage-level backstop behind the
// in-aggregate duplicate check.
func (r *LedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	var counterparty *string
	if txn.CounterpartyAccountID != "" {
		counterparty = &txn.CounterpartyAccountID
	}
	_, err := r.db.Exec(ctx, query,
		txn.TransactionID,
		txn.Reference,
		txn.AccountID,
		txn.Type,
		txn.Amount.Amount,
		txn.Amount.CurrencyCode,
		txn.BalanceAfter.Amount,
		txn.Status,
		txn.Description,
		txn.IdempotencyKey,
		txn.ProcessedAt,
		counterparty,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("transaction with idempotency key %q already recorded: %w", txn.IdempotencyKey, apperrors.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// FindTransactionByAccountAndKey looks up one ledger entry by idempotency key,
// backing the request-level replay in the services.
func (r *LedgerRepository) FindTransactionByAccountAndKey(ctx context.Context, accountID, idempotencyKey string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND idempotency_key = $2;
	`
	txn, err := scanTransaction(r.db.QueryRow(ctx, query, accountID, idempotencyKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transaction not found: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &txn, nil
}

// ListTransactionsByAccount retrieves a page of an account's ledger in
// insertion order.
func (r *LedgerRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY entry_seq
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// loadLedger fetches the complete ordered ledger for aggregate rehydration.
func (r *LedgerRepository) loadLedger(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY entry_seq;
	`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for account %s: %w", accountID, err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		txn          domain.Transaction
		amount       decimal.Decimal
		currencyCode string
		balanceAfter decimal.Decimal
		description  *string
		counterparty *string
	)
	err := row.Scan(
		&txn.TransactionID,
		&txn.Reference,
		&txn.AccountID,
		&txn.Type,
		&amount,
		&currencyCode,
		&balanceAfter,
		&txn.Status,
		&description,
		&txn.IdempotencyKey,
		&txn.ProcessedAt,
		&counterparty,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	txn.Amount = domain.Money{Amount: amount, CurrencyCode: currencyCode}
	txn.BalanceAfter = domain.Money{Amount: balanceAfter, CurrencyCode: currencyCode}
	if description != nil {
		txn.Description = *description
	}
	if counterparty != nil {
		txn.CounterpartyAccountID = *counterparty
	}
	return txn, nil
}
