package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
)

// InvoiceStatus is the derived lifecycle label of an invoice. It is never stored.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "Draft"
	InvoicePosted  InvoiceStatus = "Posted"
	InvoicePartial InvoiceStatus = "Partial"
	InvoicePaid    InvoiceStatus = "Paid"
)

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceDraft, InvoicePosted, InvoicePartial, InvoicePaid:
		return true
	}
	return false
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// IsOpen reports whether an invoice in this status can still receive allocations.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoicePosted || s == InvoicePartial
}

// InvoiceLineItem is one billed line.
type InvoiceLineItem struct {
	Description string `json:"description"`
	Amount      Money  `json:"amount"`
}

// Invoice is a billed amount owed by a client.
type Invoice struct {
	InvoiceID     string            `json:"invoiceID"`     // Primary Key (UUID)
	InvoiceNumber string            `json:"invoiceNumber"` // Empty until posted
	IssueDate     time.Time         `json:"issueDate"`
	ClientRef     string            `json:"clientRef"`
	CompanyRef    string            `json:"companyRef"`
	BookingRef    *string           `json:"bookingRef,omitempty"`
	Currency      string            `json:"currency"`
	LineItems     []InvoiceLineItem `json:"lineItems"`
	PostedAt      *time.Time        `json:"postedAt,omitempty"`
	Collected     Money             `json:"collected"` // Sum of allocations; written only by the allocation engine
	AuditFields
}

// IsPosted reports whether the invoice has left Draft.
func (i Invoice) IsPosted() bool {
	return i.PostedAt != nil
}

// StatedAmount is the sum of the line items.
func (i Invoice) StatedAmount() Money {
	total := Zero(i.Currency)
	for _, line := range i.LineItems {
		// line currencies are checked by ValidateInvoiceLines before any write
		if sum, err := total.Add(line.Amount); err == nil {
			total = sum
		}
	}
	return total
}

// Balance is the stated amount minus what has been collected.
func (i Invoice) Balance() Money {
	balance, _ := i.StatedAmount().Subtract(i.CollectedAmount())
	return balance
}

// CollectedAmount returns Collected, defaulting to zero in the invoice currency.
func (i Invoice) CollectedAmount() Money {
	if i.Collected.Currency == "" {
		return Zero(i.Currency)
	}
	return i.Collected
}

// Status derives the invoice status from its stored amounts.
func (i Invoice) Status() InvoiceStatus {
	return DeriveInvoiceStatus(i.IsPosted(), i.CollectedAmount(), i.StatedAmount())
}

// DeriveInvoiceStatus is the single rule mapping amounts to an invoice status.
func DeriveInvoiceStatus(posted bool, collected, stated Money) InvoiceStatus {
	if !posted {
		return InvoiceDraft
	}
	if collected.IsZero() {
		return InvoicePosted
	}
	if cmp, err := collected.Compare(stated); err == nil && cmp < 0 {
		return InvoicePartial
	}
	return InvoicePaid
}

// ValidateInvoiceLines checks that there is at least one line and every line is
// a positive amount in the invoice currency.
func ValidateInvoiceLines(currencyCode string, lines []InvoiceLineItem) error {
	if len(lines) == 0 {
		return apperrors.ErrEmptyLineItems
	}
	total := Zero(currencyCode)
	for idx, line := range lines {
		if line.Amount.Currency != currencyCode {
			return fmt.Errorf("line %d: %w", idx+1, apperrors.ErrCurrencyMismatch)
		}
		if !line.Amount.IsPositive() {
			return fmt.Errorf("line %d: %w", idx+1, apperrors.ErrEmptyLineItems)
		}
		var err error
		if total, err = total.Add(line.Amount); err != nil {
			return fmt.Errorf("line %d: %w", idx+1, err)
		}
	}
	return nil
}

// InvoiceFilter narrows invoice list queries. Empty fields are ignored.
type InvoiceFilter struct {
	ClientRef  string
	CompanyRef string
	Status     InvoiceStatus
	IssueDates DateRange
	Limit      int
	NextToken  *string
}
