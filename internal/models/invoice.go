package models

import "time"

// Invoice is the row stored in the invoices table.
// StatedMinor is the sum of the line items, kept so list queries can derive status in SQL.
type Invoice struct {
	InvoiceID      string     `db:"invoice_id"`
	InvoiceNumber  *string    `db:"invoice_number"` // NULL until posted
	IssueDate      time.Time  `db:"issue_date"`
	ClientRef      string     `db:"client_ref"`
	CompanyRef     string     `db:"company_ref"`
	BookingRef     *string    `db:"booking_ref"`
	CurrencyCode   string     `db:"currency_code"`
	StatedMinor    int64      `db:"stated_minor"`
	CollectedMinor int64      `db:"collected_minor"`
	PostedAt       *time.Time `db:"posted_at"`
	AuditFields
}

// InvoiceLine is the row stored in the invoice_line_items table.
type InvoiceLine struct {
	InvoiceID   string `db:"invoice_id"`
	LineNo      int    `db:"line_no"`
	Description string `db:"description"`
	AmountMinor int64  `db:"amount_minor"`
}
