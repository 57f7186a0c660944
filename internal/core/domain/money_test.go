package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultis/bankledger/internal/apperrors"
	"github.com/vaultis/bankledger/internal/core/domain"
)

func mustMoney(t *testing.T, amount string, currency string) domain.Money {
	t.Helper()
	m, err := domain.NewMoney(decimal.RequireFromString(amount), currency)
	require.NoError(t, err)
	return m
}

func TestNewMoney_BankersRounding(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "half rounds up to even", amount: "10.555", want: "10.56"},
		{name: "half rounds down to even", amount: "10.545", want: "10.54"},
		{name: "half down to even low", amount: "10.125", want: "10.12"},
		{name: "half up to even high", amount: "10.135", want: "10.14"},
		{name: "no rounding needed", amount: "10.10", want: "10.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := domain.NewMoney(decimal.RequireFromString(tt.amount), "USD")
			require.NoError(t, err)
			assert.True(t, m.Amount.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", m.Amount, tt.want)
		})
	}
}

func TestNewMoney_Validation(t *testing.T) {
	t.Run("negative amount rejected", func(t *testing.T) {
		_, err := domain.NewMoney(decimal.RequireFromString("-0.01"), "USD")
		var inv *apperrors.InvariantViolationError
		require.ErrorAs(t, err, &inv)
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := domain.NewMoney(decimal.NewFromInt(1), "")
		var inv *apperrors.InvariantViolationError
		require.ErrorAs(t, err, &inv)
	})

	t.Run("currency normalized to uppercase", func(t *testing.T) {
		m, err := domain.NewMoney(decimal.NewFromInt(1), "usd")
		require.NoError(t, err)
		assert.Equal(t, "USD", m.CurrencyCode)
	})
}

func TestMoney_Add(t *testing.T) {
	a := mustMoney(t, "10.01", "USD")
	b := mustMoney(t, "4.99", "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.RequireFromString("15")))
	// operands untouched
	assert.True(t, a.Amount.Equal(decimal.RequireFromString("10.01")))

	_, err = a.Add(mustMoney(t, "1", "EUR"))
	var mismatch *apperrors.CurrencyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "USD", mismatch.Expected)
	assert.Equal(t, "EUR", mismatch.Actual)
}

func TestMoney_Subtract(t *testing.T) {
	a := mustMoney(t, "10", "USD")

	t.Run("happy path", func(t *testing.T) {
		diff, err := a.Subtract(mustMoney(t, "2.50", "USD"))
		require.NoError(t, err)
		assert.True(t, diff.Amount.Equal(decimal.RequireFromString("7.5")))
	})

	t.Run("self subtraction is zero", func(t *testing.T) {
		diff, err := a.Subtract(a)
		require.NoError(t, err)
		assert.True(t, diff.IsZero())
	})

	t.Run("insufficient funds carries available and requested", func(t *testing.T) {
		_, err := a.Subtract(mustMoney(t, "10.01", "USD"))
		var insufficient *apperrors.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.True(t, insufficient.Available.Equal(decimal.RequireFromString("10")))
		assert.True(t, insufficient.Requested.Equal(decimal.RequireFromString("10.01")))
		assert.Equal(t, "USD", insufficient.Currency)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Subtract(mustMoney(t, "1", "GBP"))
		var mismatch *apperrors.CurrencyMismatchError
		require.ErrorAs(t, err, &mismatch)
	})
}

func TestMoney_Multiply(t *testing.T) {
	m := mustMoney(t, "10.10", "USD")

	scaled, err := m.Multiply(decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.True(t, scaled.Amount.Equal(decimal.RequireFromString("15.15")))

	_, err = m.Multiply(decimal.RequireFromString("-1"))
	var inv *apperrors.InvariantViolationError
	require.ErrorAs(t, err, &inv)
}

func TestMoney_Comparisons(t *testing.T) {
	big := mustMoney(t, "10", "USD")
	small := mustMoney(t, "1", "USD")

	gt, err := big.IsGreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := big.IsLessThan(small)
	require.NoError(t, err)
	assert.False(t, lt)

	_, err = big.IsGreaterThan(mustMoney(t, "1", "EUR"))
	var mismatch *apperrors.CurrencyMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestMoney_ZeroAndEqual(t *testing.T) {
	zero := domain.ZeroMoney("usd")
	assert.True(t, zero.IsZero())
	assert.Equal(t, "USD", zero.CurrencyCode)

	usd, err := domain.USD(decimal.NewFromInt(5))
	require.NoError(t, err)
	eur, err := domain.EUR(decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, usd.Equal(mustMoney(t, "5.00", "USD")))
	assert.False(t, usd.Equal(eur))
	assert.Equal(t, "5.00 USD", usd.String())
}
