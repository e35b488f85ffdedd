package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

type collectionService struct {
	BaseService
	collectionRepo portsrepo.CollectionRepositoryFacade
	numberer       portssvc.DocumentNumberer
}

// NewCollectionService creates the payment ledger.
func NewCollectionService(repo portsrepo.CollectionRepositoryFacade, numberer portssvc.DocumentNumberer, options ...ServiceOption) portssvc.CollectionSvcFacade {
	return &collectionService{
		BaseService:    newBaseService(options),
		collectionRepo: repo,
		numberer:       numberer,
	}
}

var _ portssvc.CollectionSvcFacade = (*collectionService)(nil)

func (s *collectionService) CreateCollection(ctx context.Context, input portssvc.NewCollectionInput, userID string) (*domain.Collection, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	if err := requireRef("clientRef", input.ClientRef); err != nil {
		return nil, err
	}
	if err := requireRef("companyRef", input.CompanyRef); err != nil {
		return nil, err
	}
	if !input.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("%w: payment method %q", apperrors.ErrInvalidEnum, input.PaymentMethod)
	}
	currency, err := s.currencyOrDefault(input.AmountReceived.Currency)
	if err != nil {
		return nil, err
	}
	received := domain.NewMoney(input.AmountReceived.Minor, currency)
	if !received.IsPositive() {
		return nil, apperrors.ErrNonPositiveAmount
	}

	now := s.Now()
	collectionDate := input.CollectionDate
	if collectionDate.IsZero() {
		collectionDate = now.Truncate(24 * time.Hour)
	}
	receiptNumber, err := s.numberer.NextNumber(ctx, domain.SeriesReceipt, collectionDate)
	if err != nil {
		return nil, err
	}

	collection := domain.Collection{
		CollectionID:    uuid.NewString(),
		ReceiptNumber:   receiptNumber,
		CollectionDate:  collectionDate,
		ClientRef:       input.ClientRef,
		CompanyRef:      input.CompanyRef,
		PaymentMethod:   input.PaymentMethod,
		ReferenceNumber: input.ReferenceNumber,
		AmountReceived:  received,
		Applied:         domain.Zero(currency),
		AuditFields:     domain.NewAuditFields(userID, now),
	}

	if err := s.collectionRepo.SaveCollection(ctx, collection); err != nil {
		s.LogError(ctx, err, "Failed to save collection",
			slog.String("collection_id", collection.CollectionID))
		return nil, err
	}

	s.LogInfo(ctx, "Collection recorded",
		slog.String("collection_id", collection.CollectionID),
		slog.String("receipt_number", collection.ReceiptNumber),
		slog.String("received", received.String()))
	return &collection, nil
}

func (s *collectionService) DeleteCollection(ctx context.Context, collectionID string, userID string) error {
	if err := requireRef("userID", userID); err != nil {
		return err
	}
	if err := s.collectionRepo.DeleteCollection(ctx, collectionID); err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownPayment)
		s.logUnexpected(ctx, err, "Failed to delete collection", slog.String("collection_id", collectionID))
		return err
	}
	s.LogInfo(ctx, "Collection deleted",
		slog.String("collection_id", collectionID),
		slog.String("user_id", userID))
	return nil
}

func (s *collectionService) GetCollection(ctx context.Context, collectionID string) (*domain.Collection, error) {
	collection, err := s.collectionRepo.FindCollectionByID(ctx, collectionID)
	if err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownPayment)
		s.logUnexpected(ctx, err, "Failed to find collection", slog.String("collection_id", collectionID))
		return nil, err
	}
	return collection, nil
}

func (s *collectionService) ListCollections(ctx context.Context, filter domain.CollectionFilter) ([]domain.Collection, *string, error) {
	collections, next, err := s.collectionRepo.ListCollections(ctx, filter)
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to list collections")
		return nil, nil, fmt.Errorf("failed to list collections: %w", err)
	}
	if collections == nil {
		collections = []domain.Collection{}
	}
	return collections, next, nil
}
