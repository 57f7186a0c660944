package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vaultis/bankledger/internal/apperrors"
)

// Money is an immutable fixed-point amount paired with an ISO 4217 currency
// code. Amounts are rounded to 2 fraction digits with banker's rounding at
// construction, so repeated arithmetic does not accumulate rounding bias.
// All operations return new values; no operation mutates its receiver.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney builds a Money from a raw decimal amount and a currency code.
// Negative amounts and empty currency codes are rejected. The code is
// normalized to uppercase and the amount rounded half-to-even to 2 places.
func NewMoney(amount decimal.Decimal, currencyCode string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		return Money{}, apperrors.Invariant("currency code is required")
	}
	if amount.IsNegative() {
		return Money{}, apperrors.Invariant("amount cannot be negative")
	}
	return Money{Amount: amount.RoundBank(2), CurrencyCode: code}, nil
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currencyCode string) Money {
	return Money{Amount: decimal.Zero, CurrencyCode: strings.ToUpper(strings.TrimSpace(currencyCode))}
}

// USD is a convenience constructor for US dollar amounts.
func USD(amount decimal.Decimal) (Money, error) {
	return NewMoney(amount, "USD")
}

// EUR is a convenience constructor for euro amounts.
func EUR(amount decimal.Decimal) (Money, error) {
	return NewMoney(amount, "EUR")
}

// GBP is a convenience constructor for pound sterling amounts.
func GBP(amount decimal.Decimal) (Money, error) {
	return NewMoney(amount, "GBP")
}

// Add returns the sum of m and other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount).RoundBank(2), CurrencyCode: m.CurrencyCode}, nil
}

// Subtract returns m minus other. Currencies must match and other may not
// exceed m, which keeps every Money non-negative by construction.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.Amount.GreaterThan(m.Amount) {
		return Money{}, &apperrors.InsufficientFundsError{
			Available: m.Amount,
			Requested: other.Amount,
			Currency:  m.CurrencyCode,
		}
	}
	return Money{Amount: m.Amount.Sub(other.Amount).RoundBank(2), CurrencyCode: m.CurrencyCode}, nil
}

// Multiply scales m by a non-negative factor.
func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, apperrors.Invariant("multiplication factor cannot be negative")
	}
	return Money{Amount: m.Amount.Mul(factor).RoundBank(2), CurrencyCode: m.CurrencyCode}, nil
}

// IsGreaterThan reports whether m exceeds other. Currencies must match.
func (m Money) IsGreaterThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.Amount.GreaterThan(other.Amount), nil
}

// IsLessThan reports whether m is below other. Currencies must match.
func (m Money) IsLessThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.Amount.LessThan(other.Amount), nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Equal reports value equality on (amount, currency).
func (m Money) Equal(other Money) bool {
	return m.CurrencyCode == other.CurrencyCode && m.Amount.Equal(other.Amount)
}

// String renders the amount with two decimals followed by the currency code.
func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.CurrencyCode
}

func (m Money) sameCurrency(other Money) error {
	if m.CurrencyCode != other.CurrencyCode {
		return &apperrors.CurrencyMismatchError{Expected: m.CurrencyCode, Actual: other.CurrencyCode}
	}
	return nil
}
