package models

import "time"

// Collection is the row stored in the collections table.
type Collection struct {
	CollectionID    string    `db:"collection_id"`
	ReceiptNumber   string    `db:"receipt_number"`
	CollectionDate  time.Time `db:"collection_date"`
	ClientRef       string    `db:"client_ref"`
	CompanyRef      string    `db:"company_ref"`
	PaymentMethod   string    `db:"payment_method"`
	ReferenceNumber *string   `db:"reference_number"`
	CurrencyCode    string    `db:"currency_code"`
	ReceivedMinor   int64     `db:"received_minor"`
	AppliedMinor    int64     `db:"applied_minor"`
	AuditFields
}

// PaymentAllocation is the row stored in the payment_allocations table.
type PaymentAllocation struct {
	AllocationID string `db:"allocation_id"`
	CollectionID string `db:"collection_id"`
	InvoiceID    string `db:"invoice_id"`
	CurrencyCode string `db:"currency_code"`
	AmountMinor  int64  `db:"amount_minor"`
	AuditFields
}
