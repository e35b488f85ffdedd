package services

import (
	"context"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// NewInvoiceInput carries the fields of a new draft invoice.
type NewInvoiceInput struct {
	IssueDate  time.Time
	ClientRef  string
	CompanyRef string
	BookingRef *string
	Currency   string // Defaults to the configured currency when empty
	LineItems  []domain.InvoiceLineItem
}

// InvoiceReaderSvc defines read operations for invoices
type InvoiceReaderSvc interface {
	// GetInvoice retrieves an invoice. Returns apperrors.ErrUnknownInvoice when absent.
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves a page of invoices and the token for the next page.
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, *string, error)
}

// InvoiceWriterSvc defines the invoice lifecycle operations
type InvoiceWriterSvc interface {
	// CreateDraft creates an invoice in Draft.
	CreateDraft(ctx context.Context, input NewInvoiceInput, userID string) (*domain.Invoice, error)

	// UpdateDraftLines replaces the line items of a Draft invoice.
	UpdateDraftLines(ctx context.Context, invoiceID string, lines []domain.InvoiceLineItem, userID string) (*domain.Invoice, error)

	// Post finalizes a Draft invoice and assigns its number.
	Post(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error)

	// DiscardDraft deletes a Draft invoice.
	DiscardDraft(ctx context.Context, invoiceID string, userID string) error
}

// InvoiceSvcFacade combines all invoice-related service interfaces
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
}
