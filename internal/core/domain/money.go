package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is used when a record is created without an explicit currency.
const DefaultCurrency = "PHP"

// Money is an amount in minor currency units (e.g. centavos) tagged with an ISO 4217 code.
// It is a value type; every operation returns a new Money.
type Money struct {
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
}

// NewMoney creates a Money from a minor-unit count.
func NewMoney(minor int64, currencyCode string) Money {
	return Money{Minor: minor, Currency: strings.ToUpper(currencyCode)}
}

// Zero returns a zero amount in the given currency.
func Zero(currencyCode string) Money {
	return NewMoney(0, currencyCode)
}

// MinorUnitScale returns the number of fractional digits used by the currency.
func MinorUnitScale(currencyCode string) (int32, error) {
	unit, err := currency.ParseISO(strings.ToUpper(currencyCode))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, currencyCode)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale), nil
}

// ParseMoney converts a major-unit decimal amount (e.g. 1250.50 PHP) into minor units.
// Amounts with more fractional digits than the currency allows are rejected rather than rounded.
func ParseMoney(amount decimal.Decimal, currencyCode string) (Money, error) {
	scale, err := MinorUnitScale(currencyCode)
	if err != nil {
		return Money{}, err
	}
	shifted := amount.Shift(scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return Money{}, fmt.Errorf("%w: %s %s", apperrors.ErrAmountPrecision, amount.String(), currencyCode)
	}
	if !shifted.IsInteger() || shifted.GreaterThan(decimal.NewFromInt(1<<62)) || shifted.LessThan(decimal.NewFromInt(-(1 << 62))) {
		return Money{}, fmt.Errorf("%w: %s %s", apperrors.ErrAmountOutOfRange, amount.String(), currencyCode)
	}
	return NewMoney(shifted.IntPart(), currencyCode), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	scale, err := MinorUnitScale(m.Currency)
	if err != nil {
		scale = 2
	}
	return decimal.New(m.Minor, -scale)
}

// String renders the amount as "PHP 1250.00".
func (m Money) String() string {
	scale, err := MinorUnitScale(m.Currency)
	if err != nil {
		scale = 2
	}
	return m.Currency + " " + decimal.New(m.Minor, -scale).StringFixed(scale)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.Minor == 0 }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Minor > 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Minor < 0 }

// SameCurrency reports whether both amounts share a currency.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

// Add returns m + other. A sum that does not fit in int64 returns ErrAmountOutOfRange.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("%w: %s and %s", apperrors.ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	sum := m.Minor + other.Minor
	if (other.Minor > 0 && sum < m.Minor) || (other.Minor < 0 && sum > m.Minor) {
		return Money{}, fmt.Errorf("%w: %s + %s", apperrors.ErrAmountOutOfRange, m, other)
	}
	return Money{Minor: sum, Currency: m.Currency}, nil
}

// Subtract returns m - other. A result below zero is returned together with
// ErrNegativeAmount so callers can report it; it is never clamped.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("%w: %s and %s", apperrors.ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	result := Money{Minor: m.Minor - other.Minor, Currency: m.Currency}
	if (other.Minor > 0 && result.Minor > m.Minor) || (other.Minor < 0 && result.Minor < m.Minor) {
		return Money{}, fmt.Errorf("%w: %s - %s", apperrors.ErrAmountOutOfRange, m, other)
	}
	if result.IsNegative() {
		return result, fmt.Errorf("%w: %s - %s", apperrors.ErrNegativeAmount, m, other)
	}
	return result, nil
}

// Compare returns -1, 0 or 1 as m is less than, equal to or greater than other.
func (m Money) Compare(other Money) (int, error) {
	if !m.SameCurrency(other) {
		return 0, fmt.Errorf("%w: %s and %s", apperrors.ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	switch {
	case m.Minor < other.Minor:
		return -1, nil
	case m.Minor > other.Minor:
		return 1, nil
	default:
		return 0, nil
	}
}

// MinMoney returns the smallest of the given amounts. All amounts must share a currency.
func MinMoney(first Money, rest ...Money) (Money, error) {
	least := first
	for _, m := range rest {
		cmp, err := m.Compare(least)
		if err != nil {
			return Money{}, err
		}
		if cmp < 0 {
			least = m
		}
	}
	return least, nil
}

// SumMoney adds a list of amounts, starting from zero in currencyCode.
func SumMoney(currencyCode string, amounts ...Money) (Money, error) {
	total := Zero(currencyCode)
	for _, m := range amounts {
		var err error
		if total, err = total.Add(m); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
