package domain_test

import (
	"math"
	"testing"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     domain.Money
		wantErr  error
	}{
		{name: "two decimals", amount: "1250.50", currency: "PHP", want: domain.NewMoney(125050, "PHP")},
		{name: "whole amount", amount: "85000", currency: "php", want: domain.NewMoney(8500000, "PHP")},
		{name: "zero-decimal currency", amount: "1200", currency: "JPY", want: domain.NewMoney(1200, "JPY")},
		{name: "too precise", amount: "10.005", currency: "PHP", wantErr: apperrors.ErrAmountPrecision},
		{name: "fraction of yen", amount: "1.5", currency: "JPY", wantErr: apperrors.ErrAmountPrecision},
		{name: "unknown currency", amount: "1", currency: "ABCD", wantErr: apperrors.ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseMoney(decimal.RequireFromString(tt.amount), tt.currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_DecimalAndString(t *testing.T) {
	m := domain.NewMoney(125050, "PHP")
	assert.True(t, decimal.RequireFromString("1250.50").Equal(m.Decimal()))
	assert.Equal(t, "PHP 1250.50", m.String())
	assert.Equal(t, "JPY 1200", domain.NewMoney(1200, "JPY").String())
}

func TestMoney_Arithmetic(t *testing.T) {
	a := domain.NewMoney(500, "PHP")
	b := domain.NewMoney(200, "PHP")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(700), sum.Minor)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(300), diff.Minor)

	neg, err := b.Subtract(a)
	assert.ErrorIs(t, err, apperrors.ErrNegativeAmount)
	assert.Equal(t, int64(-300), neg.Minor, "negative results are reported, not clamped")

	_, err = a.Add(domain.NewMoney(1, "USD"))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	cmp, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func TestMinAndSumMoney(t *testing.T) {
	least, err := domain.MinMoney(domain.NewMoney(900, "PHP"), domain.NewMoney(300, "PHP"), domain.NewMoney(450, "PHP"))
	require.NoError(t, err)
	assert.Equal(t, int64(300), least.Minor)

	_, err = domain.MinMoney(domain.NewMoney(1, "PHP"), domain.NewMoney(1, "USD"))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	total, err := domain.SumMoney("PHP")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.Equal(t, "PHP", total.Currency)
}

func TestMoney_OutOfRange(t *testing.T) {
	huge, err := domain.ParseMoney(decimal.New(1<<62, -2), "PHP")
	require.NoError(t, err)

	_, err = huge.Add(huge)
	assert.ErrorIs(t, err, apperrors.ErrAmountOutOfRange)
	assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))

	_, err = domain.SumMoney("PHP", huge, huge)
	assert.ErrorIs(t, err, apperrors.ErrAmountOutOfRange)

	_, err = domain.NewMoney(math.MinInt64+1, "PHP").Subtract(domain.NewMoney(2, "PHP"))
	assert.ErrorIs(t, err, apperrors.ErrAmountOutOfRange)

	_, err = domain.ParseMoney(decimal.New(1, 30), "PHP")
	assert.ErrorIs(t, err, apperrors.ErrAmountOutOfRange)
}

func TestValidateLines_RejectOverflowingTotals(t *testing.T) {
	huge, err := domain.ParseMoney(decimal.New(1<<62, -2), "PHP")
	require.NoError(t, err)

	err = domain.ValidateInvoiceLines("PHP", []domain.InvoiceLineItem{{Description: "a", Amount: huge}, {Description: "b", Amount: huge}})
	assert.ErrorIs(t, err, apperrors.ErrAmountOutOfRange)

	err = domain.ValidateExpenseLines("PHP", []domain.ExpenseLineItem{{Particular: "a", Amount: huge}, {Particular: "b", Amount: huge}})
	assert.ErrorIs(t, err, apperrors.ErrAmountOutOfRange)

	require.NoError(t, domain.ValidateInvoiceLines("PHP", []domain.InvoiceLineItem{{Description: "a", Amount: huge}}))
}
