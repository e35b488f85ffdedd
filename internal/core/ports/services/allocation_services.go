package services

import (
	"context"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// AllocationEngineSvc applies collections against invoices
type AllocationEngineSvc interface {
	// Allocate applies the collection across the targets in the given order, clamping each
	// target to what both sides can absorb. Replaces any existing allocation per pair.
	Allocate(ctx context.Context, collectionID string, targets []domain.AllocationTarget, userID string) (*domain.AllocationResult, error)

	// Deallocate removes the allocation between a collection and an invoice.
	Deallocate(ctx context.Context, collectionID string, invoiceID string, userID string) (*domain.AllocationResult, error)

	// AutoAllocate applies the collection to the client's open invoices, oldest first.
	AutoAllocate(ctx context.Context, collectionID string, userID string) (*domain.AllocationResult, error)
}

// AllocationReaderSvc defines read operations for allocations
type AllocationReaderSvc interface {
	ListAllocations(ctx context.Context, collectionID string) ([]domain.PaymentAllocation, error)
	ListInvoiceAllocations(ctx context.Context, invoiceID string) ([]domain.PaymentAllocation, error)
}

// AllocationSvcFacade combines all allocation-related service interfaces
type AllocationSvcFacade interface {
	AllocationEngineSvc
	AllocationReaderSvc
}
