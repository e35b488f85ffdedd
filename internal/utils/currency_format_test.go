package utils

import (
	"testing"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		money    domain.Money
		expected string
	}{
		{"peso with grouping", domain.NewMoney(125050, "PHP"), "₱1,250.50"},
		{"dollar", domain.NewMoney(500, "USD"), "$5.00"},
		{"zero decimal currency", domain.NewMoney(1200, "JPY"), "¥1,200"},
		{"unknown code falls back", domain.Money{Minor: 100, Currency: "ZZZ1"}, "ZZZ1 1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(tt.money))
		})
	}
}

func TestFormatShortfallMessage(t *testing.T) {
	w := domain.PartialAllocationWarning{
		InvoiceID: "inv-b",
		Requested: domain.NewMoney(1500000, "PHP"),
		Applied:   domain.NewMoney(500000, "PHP"),
		Shortfall: domain.NewMoney(1000000, "PHP"),
	}
	assert.Equal(t, "₱10,000.00 of ₱15,000.00 could not be applied to invoice inv-b", FormatShortfallMessage(w))
}
