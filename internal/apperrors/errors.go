package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that a write lost an optimistic concurrency check and
// the caller should reload and retry.
var ErrConflict = errors.New("concurrent modification conflict")

// The types below form the business-rule error taxonomy. They are all
// non-retryable: each one means a rule was violated, not that something
// transient went wrong. Callers match them with errors.As.

// InsufficientFundsError is returned when a debit exceeds the available balance.
// Amounts are carried as raw decimals to keep this package free of domain imports.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
	Currency  string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s %s, requested %s %s",
		e.Available.StringFixed(2), e.Currency, e.Requested.StringFixed(2), e.Currency)
}

// CurrencyMismatchError is returned when an operation mixes two currencies.
type CurrencyMismatchError struct {
	Expected string
	Actual   string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// AccountFrozenError is returned when a mutation is attempted on a frozen account.
type AccountFrozenError struct {
	AccountID string
	Reason    string
}

func (e *AccountFrozenError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("account %s is frozen: %s", e.AccountID, e.Reason)
	}
	return fmt.Sprintf("account %s is frozen", e.AccountID)
}

// AccountClosedError is returned when a mutation is attempted on a closed account.
type AccountClosedError struct {
	AccountID string
}

func (e *AccountClosedError) Error() string {
	return fmt.Sprintf("account %s is closed", e.AccountID)
}

// DuplicateIdempotencyKeyError is returned when an idempotency key has already
// been recorded in an account's ledger.
type DuplicateIdempotencyKeyError struct {
	Key string
}

func (e *DuplicateIdempotencyKeyError) Error() string {
	return fmt.Sprintf("idempotency key %q was already used on this account", e.Key)
}

// InvariantViolationError covers the remaining state-machine and input checks
// (already frozen, not frozen, non-zero balance on close, empty name, zero
// amount and so on).
type InvariantViolationError struct {
	Message string
}

func (e *InvariantViolationError) Error() string {
	return e.Message
}

// Invariant builds an InvariantViolationError from a plain message.
func Invariant(message string) error {
	return &InvariantViolationError{Message: message}
}

// Invariantf builds an InvariantViolationError from a format string.
func Invariantf(format string, args ...any) error {
	return &InvariantViolationError{Message: fmt.Sprintf(format, args...)}
}
