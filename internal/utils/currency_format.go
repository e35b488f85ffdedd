package utils

import (
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var displayPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount for people, e.g. "₱1,250.50" or "¥1,200".
// Unknown currency codes fall back to Money.String.
func FormatMoney(m domain.Money) string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return m.String()
	}
	scale, _ := currency.Standard.Rounding(unit)
	amount, _ := m.Decimal().Float64()
	return displayPrinter.Sprint(currency.NarrowSymbol(unit)) +
		displayPrinter.Sprint(number.Decimal(amount, number.Scale(scale)))
}

// FormatShortfallMessage renders the caller-facing text of a partial allocation.
func FormatShortfallMessage(w domain.PartialAllocationWarning) string {
	return displayPrinter.Sprintf("%s of %s could not be applied to invoice %s",
		FormatMoney(w.Shortfall), FormatMoney(w.Requested), w.InvoiceID)
}
