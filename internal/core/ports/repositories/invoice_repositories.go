package repositories

import (
	"context"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its line items. Returns apperrors.ErrNotFound when absent.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves a page of invoices matching the filter, newest issue date first.
	// It returns the invoices, a token for the next page, and an error.
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, *string, error)

	// ListOpenInvoicesByClient retrieves every Posted or Partial invoice of a client in one currency,
	// oldest issue date first, ties broken by invoice number.
	ListOpenInvoicesByClient(ctx context.Context, clientRef string, currency string) ([]domain.Invoice, error)

	// ListAllInvoices retrieves every invoice with its line items. Used by the ledger audit.
	ListAllInvoices(ctx context.Context) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice persists a new draft invoice and its line items.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateInvoice locks the invoice, applies mutate and persists header, line items and
	// posting fields. The collected amount is never written here. If mutate returns an
	// error nothing is written.
	UpdateInvoice(ctx context.Context, invoiceID string, mutate func(*domain.Invoice) error) (*domain.Invoice, error)

	// DeleteDraftInvoice removes an invoice that has not been posted.
	// Returns apperrors.ErrAlreadyPosted for posted invoices.
	DeleteDraftInvoice(ctx context.Context, invoiceID string) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
