package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// AllocationReader defines read operations for committed allocations
type AllocationReader interface {
	// ListAllocationsByCollection retrieves the allocations of one collection ordered by invoice id.
	ListAllocationsByCollection(ctx context.Context, collectionID string) ([]domain.PaymentAllocation, error)

	// ListAllocationsByInvoice retrieves the allocations against one invoice ordered by collection id.
	ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.PaymentAllocation, error)

	// ListAllAllocations retrieves every allocation. Used by the ledger audit.
	ListAllAllocations(ctx context.Context) ([]domain.PaymentAllocation, error)
}

// LedgerTx is the storage view the allocation engine works through. Everything done
// through one LedgerTx commits or rolls back together, and rows it has locked stay
// locked until then.
type LedgerTx interface {
	// LockCollection locks and returns a collection. Returns apperrors.ErrNotFound when absent.
	LockCollection(ctx context.Context, collectionID string) (*domain.Collection, error)

	// LockInvoices locks the given invoices in ascending id order and returns those that exist.
	LockInvoices(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error)

	// FindAllocation returns the allocation for a pair. Returns apperrors.ErrNotFound when absent.
	FindAllocation(ctx context.Context, collectionID, invoiceID string) (*domain.PaymentAllocation, error)

	// UpsertAllocation creates or replaces the allocation for its (collection, invoice) pair.
	UpsertAllocation(ctx context.Context, allocation domain.PaymentAllocation) error

	// DeleteAllocation removes the allocation for a pair.
	DeleteAllocation(ctx context.Context, collectionID, invoiceID string) error

	// SumAllocationsByInvoice totals the allocations against an invoice as seen by this transaction.
	SumAllocationsByInvoice(ctx context.Context, invoiceID string, currency string) (domain.Money, error)

	// SumAllocationsByCollection totals the allocations of a collection as seen by this transaction.
	SumAllocationsByCollection(ctx context.Context, collectionID string, currency string) (domain.Money, error)

	// ListAllocationsByCollection lists the allocations of a collection as seen by this transaction.
	ListAllocationsByCollection(ctx context.Context, collectionID string) ([]domain.PaymentAllocation, error)

	// SetInvoiceCollected stores a recomputed collected amount.
	SetInvoiceCollected(ctx context.Context, invoiceID string, collected domain.Money, userID string, now time.Time) error

	// SetCollectionApplied stores a recomputed applied amount.
	SetCollectionApplied(ctx context.Context, collectionID string, applied domain.Money, userID string, now time.Time) error
}

// LedgerTxRunner runs fn inside one storage transaction. If fn returns an error every
// write made through tx is discarded and the error is returned unchanged.
type LedgerTxRunner interface {
	RunInLedgerTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// AllocationRepositoryFacade combines allocation reads with the engine's transactional view
type AllocationRepositoryFacade interface {
	AllocationReader
	LedgerTxRunner
}
