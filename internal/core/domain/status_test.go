package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func peso(minor int64) domain.Money { return domain.NewMoney(minor, "PHP") }

func TestDeriveInvoiceStatus(t *testing.T) {
	tests := []struct {
		name      string
		posted    bool
		collected int64
		want      domain.InvoiceStatus
	}{
		{"draft", false, 0, domain.InvoiceDraft},
		{"posted unpaid", true, 0, domain.InvoicePosted},
		{"partially collected", true, 400, domain.InvoicePartial},
		{"fully collected", true, 1000, domain.InvoicePaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.DeriveInvoiceStatus(tt.posted, peso(tt.collected), peso(1000)))
		})
	}
}

func TestDeriveCollectionStatus(t *testing.T) {
	assert.Equal(t, domain.CollectionUnapplied, domain.DeriveCollectionStatus(peso(0), peso(500)))
	assert.Equal(t, domain.CollectionPartiallyApplied, domain.DeriveCollectionStatus(peso(499), peso(500)))
	assert.Equal(t, domain.CollectionFullyApplied, domain.DeriveCollectionStatus(peso(500), peso(500)))
}

func TestInvoice_DerivedAmounts(t *testing.T) {
	posted := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	inv := domain.Invoice{
		Currency: "PHP",
		LineItems: []domain.InvoiceLineItem{
			{Description: "freight", Amount: peso(70000)},
			{Description: "handling", Amount: peso(15000)},
		},
		Collected: peso(40000),
		PostedAt:  &posted,
	}
	assert.Equal(t, peso(85000), inv.StatedAmount())
	assert.Equal(t, peso(45000), inv.Balance())
	assert.Equal(t, domain.InvoicePartial, inv.Status())
	assert.True(t, inv.Status().IsOpen())

	var empty domain.Invoice
	empty.Currency = "PHP"
	assert.Equal(t, peso(0), empty.CollectedAmount(), "an unset total reads as zero")
}

func TestCollection_DerivedAmounts(t *testing.T) {
	c := domain.Collection{AmountReceived: peso(50000)}
	assert.Equal(t, peso(0), c.AppliedAmount())
	assert.Equal(t, peso(50000), c.UnappliedBalance())
	assert.Equal(t, domain.CollectionUnapplied, c.Status())

	c.Applied = peso(50000)
	assert.True(t, c.UnappliedBalance().IsZero())
	assert.Equal(t, domain.CollectionFullyApplied, c.Status())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, domain.PaymentBankTransfer.IsValid())
	assert.False(t, domain.PaymentMethod("Barter").IsValid())
	assert.True(t, domain.ExpenseItemizedCost.IsValid())
	assert.Equal(t, domain.ExpenseType("ItemizedCost"), domain.ExpenseItemizedCost)
	assert.False(t, domain.ExpenseType("").IsValid())
	assert.False(t, domain.InvoiceStatus("Void").IsValid())
}

func TestFormatDocumentNumber(t *testing.T) {
	period := domain.SequencePeriod(time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "202603", period)
	assert.Equal(t, "OR-202603-0042", domain.FormatDocumentNumber(domain.SeriesReceipt, period, 42))
}
