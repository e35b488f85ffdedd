package mapping

import (
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/SscSPs/neuron_ledger/internal/models"
)

// ToModelInvoice converts a domain Invoice to its row and line rows.
func ToModelInvoice(d domain.Invoice) (models.Invoice, []models.InvoiceLine) {
	var number *string
	if d.InvoiceNumber != "" {
		n := d.InvoiceNumber
		number = &n
	}
	row := models.Invoice{
		InvoiceID:      d.InvoiceID,
		InvoiceNumber:  number,
		IssueDate:      d.IssueDate,
		ClientRef:      d.ClientRef,
		CompanyRef:     d.CompanyRef,
		BookingRef:     d.BookingRef,
		CurrencyCode:   d.Currency,
		StatedMinor:    d.StatedAmount().Minor,
		CollectedMinor: d.CollectedAmount().Minor,
		PostedAt:       d.PostedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	lines := make([]models.InvoiceLine, len(d.LineItems))
	for i, li := range d.LineItems {
		lines[i] = models.InvoiceLine{
			InvoiceID:   d.InvoiceID,
			LineNo:      i + 1,
			Description: li.Description,
			AmountMinor: li.Amount.Minor,
		}
	}
	return row, lines
}

// ToDomainInvoice converts an invoice row and its line rows (ordered by line_no) to a domain Invoice.
func ToDomainInvoice(m models.Invoice, lines []models.InvoiceLine) domain.Invoice {
	d := domain.Invoice{
		InvoiceID:   m.InvoiceID,
		IssueDate:   m.IssueDate,
		ClientRef:   m.ClientRef,
		CompanyRef:  m.CompanyRef,
		BookingRef:  m.BookingRef,
		Currency:    m.CurrencyCode,
		LineItems:   make([]domain.InvoiceLineItem, len(lines)),
		PostedAt:    m.PostedAt,
		Collected:   domain.NewMoney(m.CollectedMinor, m.CurrencyCode),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.InvoiceNumber != nil {
		d.InvoiceNumber = *m.InvoiceNumber
	}
	for i, line := range lines {
		d.LineItems[i] = domain.InvoiceLineItem{
			Description: line.Description,
			Amount:      domain.NewMoney(line.AmountMinor, m.CurrencyCode),
		}
	}
	return d
}
