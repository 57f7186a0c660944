package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultis/bankledger/internal/apperrors"
)

// AccountType is the product category of an account.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeInvestment AccountType = "INVESTMENT"
)

// AccountStatus is the lifecycle state of an account. ACTIVE and FROZEN cycle
// freely; CLOSED is terminal and reachable only at zero balance.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Account is the aggregate root for a customer balance and its ledger. The
// ledger is owned exclusively by the account: entries are appended only by the
// mutation methods below and exposed only as a copy via Ledger().
//
// Every mutation validates fully before assigning any field, so a failed call
// leaves balance and ledger exactly as they were. The aggregate assumes
// single-threaded access during a mutation; serializing concurrent
// load-mutate-save cycles on the same account is the persistence layer's job,
// via the Version field.
type Account struct {
	AccountID     string        `json:"accountID"`
	AccountNumber string        `json:"accountNumber"`
	HolderName    string        `json:"holderName"`
	Type          AccountType   `json:"type"`
	Status        AccountStatus `json:"status"`
	Balance       Money         `json:"balance"`
	OpenedAt      time.Time     `json:"openedAt"`
	ClosedAt      *time.Time    `json:"closedAt,omitempty"`
	FreezeReason  string        `json:"freezeReason,omitempty"`
	Version       int64         `json:"version"`

	ledger []Transaction
	clock  Clock
	ids    IDGenerator
}

// NewAccount opens a new ACTIVE account with a zero balance in the given
// currency and a randomly generated display number. Uniqueness of the number
// is enforced by a storage constraint, not here.
func NewAccount(clock Clock, ids IDGenerator, holderName string, accountType AccountType, currencyCode string) (*Account, error) {
	if strings.TrimSpace(holderName) == "" {
		return nil, apperrors.Invariant("holder name is required")
	}
	switch accountType {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeInvestment:
	default:
		return nil, apperrors.Invariantf("unknown account type %q", accountType)
	}
	zero, err := NewMoney(decimal.Zero, currencyCode)
	if err != nil {
		return nil, err
	}
	return &Account{
		AccountID:     ids.NewID(),
		AccountNumber: ids.NewAccountNumber(),
		HolderName:    holderName,
		Type:          accountType,
		Status:        AccountStatusActive,
		Balance:       zero,
		OpenedAt:      clock.Now(),
		Version:       1,
		clock:         clock,
		ids:           ids,
	}, nil
}

// RestoreAccount rehydrates an account loaded from storage, reattaching its
// ledger and the injected collaborators.
func RestoreAccount(clock Clock, ids IDGenerator, acc Account, ledger []Transaction) *Account {
	acc.ledger = ledger
	acc.clock = clock
	acc.ids = ids
	return &acc
}

// Ledger returns the account's transactions in insertion order. The returned
// slice is a copy; appending to it does not touch the aggregate.
func (a *Account) Ledger() []Transaction {
	out := make([]Transaction, len(a.ledger))
	copy(out, a.ledger)
	return out
}

// Deposit credits the account and appends a DEPOSIT entry.
func (a *Account) Deposit(amount Money, idempotencyKey, description string) (*Transaction, error) {
	if err := a.guardMutable(); err != nil {
		return nil, err
	}
	if err := a.checkIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return nil, err
	}
	txn, err := newTransaction(a.ids, a.clock, a.AccountID, TransactionTypeDeposit, amount, newBalance, idempotencyKey, description, "")
	if err != nil {
		return nil, err
	}
	a.apply(newBalance, txn)
	return &txn, nil
}

// Withdraw debits the account and appends a WITHDRAWAL entry. The funds check
// lives in Money.Subtract, so a shortfall surfaces as InsufficientFundsError
// before anything is mutated.
func (a *Account) Withdraw(amount Money, idempotencyKey, description string) (*Transaction, error) {
	if err := a.guardMutable(); err != nil {
		return nil, err
	}
	if err := a.checkIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}
	newBalance, err := a.Balance.Subtract(amount)
	if err != nil {
		return nil, err
	}
	txn, err := newTransaction(a.ids, a.clock, a.AccountID, TransactionTypeWithdrawal, amount, newBalance, idempotencyKey, description, "")
	if err != nil {
		return nil, err
	}
	a.apply(newBalance, txn)
	return &txn, nil
}

// TransferOut debits the account as the source half of a transfer. The entry
// records the destination as counterparty. The caller must invoke TransferIn
// on the destination with the identical Money and persist both aggregates in
// one unit of work.
func (a *Account) TransferOut(amount Money, destinationAccountID, idempotencyKey string) (*Transaction, error) {
	if err := a.guardMutable(); err != nil {
		return nil, err
	}
	if err := a.checkIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}
	newBalance, err := a.Balance.Subtract(amount)
	if err != nil {
		return nil, err
	}
	txn, err := newTransaction(a.ids, a.clock, a.AccountID, TransactionTypeTransfer, amount, newBalance, idempotencyKey, "", destinationAccountID)
	if err != nil {
		return nil, err
	}
	a.apply(newBalance, txn)
	return &txn, nil
}

// TransferIn credits the account as the destination half of a transfer. The
// idempotency key is suffixed "-in" so the pair shares one caller-supplied
// key; the credit side carries no funds or duplicate-key check.
func (a *Account) TransferIn(amount Money, sourceAccountID, idempotencyKey string) (*Transaction, error) {
	if err := a.guardMutable(); err != nil {
		return nil, err
	}
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return nil, err
	}
	txn, err := newTransaction(a.ids, a.clock, a.AccountID, TransactionTypeTransfer, amount, newBalance, idempotencyKey+"-in", "", sourceAccountID)
	if err != nil {
		return nil, err
	}
	a.apply(newBalance, txn)
	return &txn, nil
}

// Freeze suspends all balance mutations until Unfreeze.
func (a *Account) Freeze(reason string) error {
	if a.Status == AccountStatusClosed {
		return &apperrors.AccountClosedError{AccountID: a.AccountID}
	}
	if a.Status == AccountStatusFrozen {
		return apperrors.Invariant("account is already frozen")
	}
	a.Status = AccountStatusFrozen
	a.FreezeReason = reason
	return nil
}

// Unfreeze returns a frozen account to ACTIVE and clears the freeze reason.
func (a *Account) Unfreeze() error {
	if a.Status == AccountStatusClosed {
		return &apperrors.AccountClosedError{AccountID: a.AccountID}
	}
	if a.Status != AccountStatusFrozen {
		return apperrors.Invariant("account is not frozen")
	}
	a.Status = AccountStatusActive
	a.FreezeReason = ""
	return nil
}

// Close permanently closes the account. The balance must already be zero.
// A frozen account with a zero balance may be closed without unfreezing first.
func (a *Account) Close() error {
	if a.Status == AccountStatusClosed {
		return apperrors.Invariant("account is already closed")
	}
	if !a.Balance.IsZero() {
		return apperrors.Invariant("account balance must be zero to close")
	}
	now := a.clock.Now()
	a.Status = AccountStatusClosed
	a.ClosedAt = &now
	return nil
}

// apply commits a fully validated mutation. This is the only place balance and
// ledger are assigned.
func (a *Account) apply(newBalance Money, txn Transaction) {
	a.Balance = newBalance
	a.ledger = append(a.ledger, txn)
}

func (a *Account) guardMutable() error {
	switch a.Status {
	case AccountStatusClosed:
		return &apperrors.AccountClosedError{AccountID: a.AccountID}
	case AccountStatusFrozen:
		return &apperrors.AccountFrozenError{AccountID: a.AccountID, Reason: a.FreezeReason}
	}
	return nil
}

// checkIdempotencyKey is the per-account safety net: the orchestrating layer
// is expected to look the key up and replay the stored transaction before
// calling a mutator, so reaching a duplicate here is a hard failure.
func (a *Account) checkIdempotencyKey(key string) error {
	if key == "" {
		return apperrors.Invariant("idempotency key is required")
	}
	for i := range a.ledger {
		if a.ledger[i].IdempotencyKey == key {
			return &apperrors.DuplicateIdempotencyKeyError{Key: key}
		}
	}
	return nil
}
