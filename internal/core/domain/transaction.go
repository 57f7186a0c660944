package domain

import (
	"time"

	"github.com/vaultis/bankledger/internal/apperrors"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeFee        TransactionType = "FEE"
	TransactionTypeInterest   TransactionType = "INTEREST"
)

// TransactionStatus is the processing state of a ledger entry. Entries are
// written as COMPLETED by every current account mutation; PENDING, FAILED and
// REVERSED exist for the MarkAsFailed/Reverse transitions.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusReversed  TransactionStatus = "REVERSED"
)

// Transaction is one immutable entry in an account's ledger. Transactions are
// created only by Account mutation methods; nothing outside this package can
// construct one, which keeps the ledger the single source of balance history.
type Transaction struct {
	TransactionID         string            `json:"transactionID"`
	Reference             string            `json:"reference"`
	AccountID             string            `json:"accountID"`
	Type                  TransactionType   `json:"type"`
	Amount                Money             `json:"amount"`
	BalanceAfter          Money             `json:"balanceAfter"`
	Status                TransactionStatus `json:"status"`
	Description           string            `json:"description,omitempty"`
	IdempotencyKey        string            `json:"idempotencyKey"`
	ProcessedAt           time.Time         `json:"processedAt"`
	CounterpartyAccountID string            `json:"counterpartyAccountID,omitempty"` // set only for transfers
}

// newTransaction is the package-private ledger entry factory. Zero amounts are
// rejected; a zero entry would record nothing and only pollute the ledger.
func newTransaction(ids IDGenerator, clock Clock, accountID string, txnType TransactionType, amount, balanceAfter Money, idempotencyKey, description, counterpartyAccountID string) (Transaction, error) {
	if amount.IsZero() {
		return Transaction{}, apperrors.Invariant("transaction amount cannot be zero")
	}
	now := clock.Now()
	return Transaction{
		TransactionID:         ids.NewID(),
		Reference:             ids.NewReference(now),
		AccountID:             accountID,
		Type:                  txnType,
		Amount:                amount,
		BalanceAfter:          balanceAfter,
		Status:                TransactionStatusCompleted,
		Description:           description,
		IdempotencyKey:        idempotencyKey,
		ProcessedAt:           now,
		CounterpartyAccountID: counterpartyAccountID,
	}, nil
}

// MarkAsFailed moves a PENDING transaction to FAILED, appending the failure
// reason to the description.
func (t *Transaction) MarkAsFailed(reason string) error {
	if t.Status != TransactionStatusPending {
		return apperrors.Invariantf("only pending transactions can be marked failed, status is %s", t.Status)
	}
	if reason != "" {
		if t.Description == "" {
			t.Description = reason
		} else {
			t.Description = t.Description + ": " + reason
		}
	}
	t.Status = TransactionStatusFailed
	return nil
}

// Reverse moves a COMPLETED transaction to REVERSED. REVERSED is terminal; a
// reversed transaction cannot be reversed again.
func (t *Transaction) Reverse() error {
	if t.Status != TransactionStatusCompleted {
		return apperrors.Invariantf("only completed transactions can be reversed, status is %s", t.Status)
	}
	t.Status = TransactionStatusReversed
	return nil
}
