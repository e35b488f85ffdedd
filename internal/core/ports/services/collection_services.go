package services

import (
	"context"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// NewCollectionInput carries the fields of a new collection.
type NewCollectionInput struct {
	CollectionDate  time.Time
	ClientRef       string
	CompanyRef      string
	PaymentMethod   domain.PaymentMethod
	ReferenceNumber *string
	AmountReceived  domain.Money
}

// CollectionReaderSvc defines read operations for collections
type CollectionReaderSvc interface {
	// GetCollection retrieves a collection. Returns apperrors.ErrUnknownPayment when absent.
	GetCollection(ctx context.Context, collectionID string) (*domain.Collection, error)

	// ListCollections retrieves a page of collections and the token for the next page.
	ListCollections(ctx context.Context, filter domain.CollectionFilter) ([]domain.Collection, *string, error)
}

// CollectionWriterSvc defines write operations for collections
type CollectionWriterSvc interface {
	// CreateCollection records a received amount.
	CreateCollection(ctx context.Context, input NewCollectionInput, userID string) (*domain.Collection, error)

	// DeleteCollection removes a collection that has no allocations.
	DeleteCollection(ctx context.Context, collectionID string, userID string) error
}

// CollectionSvcFacade combines all collection-related service interfaces
type CollectionSvcFacade interface {
	CollectionReaderSvc
	CollectionWriterSvc
}
