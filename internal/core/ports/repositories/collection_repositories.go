package repositories

import (
	"context"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// CollectionReader defines read operations for collection data
type CollectionReader interface {
	// FindCollectionByID retrieves a collection. Returns apperrors.ErrNotFound when absent.
	FindCollectionByID(ctx context.Context, collectionID string) (*domain.Collection, error)

	// ListCollections retrieves a page of collections matching the filter, newest first.
	ListCollections(ctx context.Context, filter domain.CollectionFilter) ([]domain.Collection, *string, error)

	// ListAllCollections retrieves every collection. Used by the ledger audit.
	ListAllCollections(ctx context.Context) ([]domain.Collection, error)
}

// CollectionWriter defines write operations for collection data
type CollectionWriter interface {
	// SaveCollection persists a new collection with nothing applied.
	SaveCollection(ctx context.Context, collection domain.Collection) error

	// DeleteCollection removes a collection that has no allocations.
	// Returns apperrors.ErrHasAllocations otherwise.
	DeleteCollection(ctx context.Context, collectionID string) error
}

// CollectionRepositoryFacade combines all collection-related repository interfaces
type CollectionRepositoryFacade interface {
	CollectionReader
	CollectionWriter
}
