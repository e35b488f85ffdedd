package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/SscSPs/neuron_ledger/internal/core/services"

type allocationService struct {
	BaseService
	allocationRepo portsrepo.AllocationRepositoryFacade
	invoiceRepo    portsrepo.InvoiceReader
	collectionRepo portsrepo.CollectionReader
	tracer         trace.Tracer
}

// NewAllocationService creates the allocation engine.
func NewAllocationService(
	allocationRepo portsrepo.AllocationRepositoryFacade,
	invoiceRepo portsrepo.InvoiceReader,
	collectionRepo portsrepo.CollectionReader,
	options ...ServiceOption,
) portssvc.AllocationSvcFacade {
	return &allocationService{
		BaseService:    newBaseService(options),
		allocationRepo: allocationRepo,
		invoiceRepo:    invoiceRepo,
		collectionRepo: collectionRepo,
		tracer:         otel.Tracer(tracerName),
	}
}

var _ portssvc.AllocationSvcFacade = (*allocationService)(nil)

// ledgerState is what an engine step sees inside its transaction.
type ledgerState struct {
	tx         portsrepo.LedgerTx
	collection *domain.Collection
	invoices   map[string]domain.Invoice
	userID     string
	now        time.Time
}

// Allocate applies a collection to invoices in caller order. Each target replaces
// any existing allocation for its pair and is clamped to what both the invoice and
// the collection can still absorb; a clamped target yields a warning, not an error.
func (s *allocationService) Allocate(ctx context.Context, collectionID string, targets []domain.AllocationTarget, userID string) (*domain.AllocationResult, error) {
	ctx, span := s.tracer.Start(ctx, "AllocationEngine.Allocate", trace.WithAttributes(
		attribute.String("collection.id", collectionID),
		attribute.Int("allocation.targets", len(targets)),
	))
	defer span.End()

	result, err := s.allocate(ctx, collectionID, targets, userID)
	return s.finish(ctx, span, "Allocation applied", collectionID, result, err)
}

func (s *allocationService) allocate(ctx context.Context, collectionID string, targets []domain.AllocationTarget, userID string) (*domain.AllocationResult, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	invoiceIDs, err := validateTargets(targets)
	if err != nil {
		return nil, err
	}

	return s.runLedgerTx(ctx, collectionID, invoiceIDs, userID, func(ctx context.Context, st *ledgerState) ([]domain.PartialAllocationWarning, error) {
		for _, target := range targets {
			inv, ok := st.invoices[target.InvoiceID]
			if !ok {
				return nil, fmt.Errorf("invoice %s: %w", target.InvoiceID, apperrors.ErrUnknownInvoice)
			}
			if err := checkAllocatable(st.collection, inv, target.Amount); err != nil {
				return nil, err
			}
		}

		var warnings []domain.PartialAllocationWarning
		for _, target := range targets {
			warning, err := s.applyTarget(ctx, st, target)
			if err != nil {
				return nil, err
			}
			if warning != nil {
				warnings = append(warnings, *warning)
			}
		}
		return warnings, nil
	})
}

// validateTargets runs the checks that need no stored state.
func validateTargets(targets []domain.AllocationTarget) ([]string, error) {
	seen := make(map[string]bool, len(targets))
	ids := make([]string, 0, len(targets))
	for _, target := range targets {
		if err := requireRef("invoiceID", target.InvoiceID); err != nil {
			return nil, err
		}
		if target.Amount.IsNegative() {
			return nil, fmt.Errorf("invoice %s: %w", target.InvoiceID, apperrors.ErrNonPositiveAmount)
		}
		if seen[target.InvoiceID] {
			return nil, fmt.Errorf("invoice %s: %w", target.InvoiceID, apperrors.ErrDuplicateTarget)
		}
		seen[target.InvoiceID] = true
		ids = append(ids, target.InvoiceID)
	}
	if len(targets) > 0 {
		first := targets[0].Amount.Currency
		for _, target := range targets[1:] {
			if target.Amount.Currency != first {
				return nil, apperrors.ErrCurrencyMismatch
			}
		}
	}
	return ids, nil
}

func checkAllocatable(collection *domain.Collection, inv domain.Invoice, amount domain.Money) error {
	if !inv.IsPosted() {
		return fmt.Errorf("invoice %s: %w", inv.InvoiceID, apperrors.ErrInvoiceNotPosted)
	}
	if inv.ClientRef != collection.ClientRef {
		return fmt.Errorf("invoice %s: %w", inv.InvoiceID, apperrors.ErrClientMismatch)
	}
	if inv.Currency != collection.Currency() || amount.Currency != collection.Currency() {
		return fmt.Errorf("invoice %s: %w", inv.InvoiceID, apperrors.ErrCurrencyMismatch)
	}
	return nil
}

// applyTarget writes one target. The existing amount for the pair is released
// before the clamp so that re-allocating the same amount is a no-op.
func (s *allocationService) applyTarget(ctx context.Context, st *ledgerState, target domain.AllocationTarget) (*domain.PartialAllocationWarning, error) {
	if target.Amount.IsZero() {
		return nil, nil
	}
	inv := st.invoices[target.InvoiceID]
	currency := st.collection.Currency()

	existing := domain.Zero(currency)
	current, err := st.tx.FindAllocation(ctx, st.collection.CollectionID, inv.InvoiceID)
	switch {
	case err == nil:
		existing = current.AmountApplied
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	collectedElsewhere, err := inv.CollectedAmount().Subtract(existing)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", inv.InvoiceID, apperrors.ErrInvariantViolation.Wrap(err))
	}
	appliedElsewhere, err := st.collection.AppliedAmount().Subtract(existing)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", st.collection.CollectionID, apperrors.ErrInvariantViolation.Wrap(err))
	}
	invoiceRoom, err := inv.StatedAmount().Subtract(collectedElsewhere)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", inv.InvoiceID, apperrors.ErrInvariantViolation.Wrap(err))
	}
	collectionRoom, err := st.collection.AmountReceived.Subtract(appliedElsewhere)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", st.collection.CollectionID, apperrors.ErrInvariantViolation.Wrap(err))
	}
	applied, err := domain.MinMoney(target.Amount, invoiceRoom, collectionRoom)
	if err != nil {
		return nil, err
	}

	if applied.IsPositive() {
		allocation := domain.PaymentAllocation{
			AllocationID:  uuid.NewString(),
			CollectionID:  st.collection.CollectionID,
			InvoiceID:     inv.InvoiceID,
			AmountApplied: applied,
			AuditFields:   domain.NewAuditFields(st.userID, st.now),
		}
		if current != nil {
			allocation.AllocationID = current.AllocationID
			allocation.CreatedAt = current.CreatedAt
			allocation.CreatedBy = current.CreatedBy
		}
		if err := st.tx.UpsertAllocation(ctx, allocation); err != nil {
			return nil, err
		}
	} else if current != nil {
		if err := st.tx.DeleteAllocation(ctx, st.collection.CollectionID, inv.InvoiceID); err != nil {
			return nil, err
		}
	}

	// running totals for the next target in this call; rechecked against row sums before commit
	inv.Collected, _ = collectedElsewhere.Add(applied)
	st.invoices[inv.InvoiceID] = inv
	st.collection.Applied, _ = appliedElsewhere.Add(applied)

	if cmp, _ := applied.Compare(target.Amount); cmp >= 0 {
		return nil, nil
	}
	shortfall, _ := target.Amount.Subtract(applied)
	return &domain.PartialAllocationWarning{
		InvoiceID: inv.InvoiceID,
		Requested: target.Amount,
		Applied:   applied,
		Shortfall: shortfall,
	}, nil
}

// Deallocate removes the allocation for a pair and recomputes both sides.
func (s *allocationService) Deallocate(ctx context.Context, collectionID string, invoiceID string, userID string) (*domain.AllocationResult, error) {
	ctx, span := s.tracer.Start(ctx, "AllocationEngine.Deallocate", trace.WithAttributes(
		attribute.String("collection.id", collectionID),
		attribute.String("invoice.id", invoiceID),
	))
	defer span.End()

	result, err := s.deallocate(ctx, collectionID, invoiceID, userID)
	return s.finish(ctx, span, "Allocation removed", collectionID, result, err)
}

func (s *allocationService) deallocate(ctx context.Context, collectionID string, invoiceID string, userID string) (*domain.AllocationResult, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	if err := requireRef("invoiceID", invoiceID); err != nil {
		return nil, err
	}
	return s.runLedgerTx(ctx, collectionID, []string{invoiceID}, userID, func(ctx context.Context, st *ledgerState) ([]domain.PartialAllocationWarning, error) {
		if _, err := st.tx.FindAllocation(ctx, collectionID, invoiceID); err != nil {
			return nil, notFoundAs(err, apperrors.ErrNoSuchAllocation)
		}
		if err := st.tx.DeleteAllocation(ctx, collectionID, invoiceID); err != nil {
			return nil, notFoundAs(err, apperrors.ErrNoSuchAllocation)
		}
		return nil, nil
	})
}

// AutoAllocate spreads the unapplied balance over the client's open invoices,
// oldest first, each up to its remaining balance.
func (s *allocationService) AutoAllocate(ctx context.Context, collectionID string, userID string) (*domain.AllocationResult, error) {
	ctx, span := s.tracer.Start(ctx, "AllocationEngine.AutoAllocate", trace.WithAttributes(
		attribute.String("collection.id", collectionID),
	))
	defer span.End()

	result, err := s.autoAllocate(ctx, collectionID, userID)
	return s.finish(ctx, span, "Auto-allocation applied", collectionID, result, err)
}

func (s *allocationService) autoAllocate(ctx context.Context, collectionID string, userID string) (*domain.AllocationResult, error) {
	collection, err := s.collectionRepo.FindCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrUnknownPayment)
	}
	open, err := s.invoiceRepo.ListOpenInvoicesByClient(ctx, collection.ClientRef, collection.Currency())
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	existing, err := s.allocationRepo.ListAllocationsByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	current := make(map[string]domain.Money, len(existing))
	for _, a := range existing {
		current[a.InvoiceID] = a.AmountApplied
	}

	remaining := collection.UnappliedBalance()
	var targets []domain.AllocationTarget
	for _, inv := range open {
		if !remaining.IsPositive() {
			break
		}
		share, err := domain.MinMoney(inv.Balance(), remaining)
		if err != nil {
			return nil, err
		}
		if !share.IsPositive() {
			continue
		}
		request := share
		if held, ok := current[inv.InvoiceID]; ok {
			if request, err = held.Add(share); err != nil {
				return nil, err
			}
		}
		targets = append(targets, domain.AllocationTarget{InvoiceID: inv.InvoiceID, Amount: request})
		remaining, _ = remaining.Subtract(share)
	}

	s.LogDebug(ctx, "Auto-allocation planned",
		slog.String("collection_id", collectionID),
		slog.Int("targets", len(targets)))
	return s.allocate(ctx, collectionID, targets, userID)
}

// runLedgerTx locks the collection and invoices, runs step and then recomputes
// every stored total from the allocation rows before the transaction commits.
func (s *allocationService) runLedgerTx(
	ctx context.Context,
	collectionID string,
	invoiceIDs []string,
	userID string,
	step func(ctx context.Context, st *ledgerState) ([]domain.PartialAllocationWarning, error),
) (*domain.AllocationResult, error) {
	var result *domain.AllocationResult
	err := s.allocationRepo.RunInLedgerTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		collection, err := tx.LockCollection(ctx, collectionID)
		if err != nil {
			return notFoundAs(err, apperrors.ErrUnknownPayment)
		}
		invoices, err := tx.LockInvoices(ctx, invoiceIDs)
		if err != nil {
			return err
		}

		st := &ledgerState{tx: tx, collection: collection, invoices: invoices, userID: userID, now: s.Now()}
		warnings, err := step(ctx, st)
		if err != nil {
			return err
		}

		touched := make([]domain.Invoice, 0, len(invoiceIDs))
		for _, id := range invoiceIDs {
			inv, ok := st.invoices[id]
			if !ok {
				continue
			}
			if err := recomputeInvoice(ctx, st, &inv); err != nil {
				return err
			}
			touched = append(touched, inv)
		}
		if err := recomputeCollection(ctx, st); err != nil {
			return err
		}

		allocations, err := tx.ListAllocationsByCollection(ctx, collectionID)
		if err != nil {
			return err
		}
		if warnings == nil {
			warnings = []domain.PartialAllocationWarning{}
		}
		result = &domain.AllocationResult{
			Collection:  *st.collection,
			Invoices:    touched,
			Allocations: allocations,
			Warnings:    warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func recomputeInvoice(ctx context.Context, st *ledgerState, inv *domain.Invoice) error {
	collected, err := st.tx.SumAllocationsByInvoice(ctx, inv.InvoiceID, inv.Currency)
	if err != nil {
		return err
	}
	if cmp, err := collected.Compare(inv.StatedAmount()); err != nil || cmp > 0 || collected.IsNegative() {
		return fmt.Errorf("invoice %s collected %s of %s: %w", inv.InvoiceID, collected, inv.StatedAmount(), apperrors.ErrInvariantViolation)
	}
	if err := st.tx.SetInvoiceCollected(ctx, inv.InvoiceID, collected, st.userID, st.now); err != nil {
		return err
	}
	inv.Collected = collected
	inv.Touch(st.userID, st.now)
	return nil
}

func recomputeCollection(ctx context.Context, st *ledgerState) error {
	c := st.collection
	applied, err := st.tx.SumAllocationsByCollection(ctx, c.CollectionID, c.Currency())
	if err != nil {
		return err
	}
	if cmp, err := applied.Compare(c.AmountReceived); err != nil || cmp > 0 || applied.IsNegative() {
		return fmt.Errorf("collection %s applied %s of %s: %w", c.CollectionID, applied, c.AmountReceived, apperrors.ErrInvariantViolation)
	}
	if err := st.tx.SetCollectionApplied(ctx, c.CollectionID, applied, st.userID, st.now); err != nil {
		return err
	}
	c.Applied = applied
	c.Touch(st.userID, st.now)
	return nil
}

// finish records the outcome on the span and in the request log.
func (s *allocationService) finish(ctx context.Context, span trace.Span, msg, collectionID string, result *domain.AllocationResult, err error) (*domain.AllocationResult, error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logUnexpected(ctx, err, "Allocation engine call failed", slog.String("collection_id", collectionID))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("collection.status", string(result.Collection.Status())),
		attribute.Int("allocation.warnings", len(result.Warnings)),
	)
	s.LogInfo(ctx, msg,
		slog.String("collection_id", collectionID),
		slog.String("applied", result.Collection.AppliedAmount().String()),
		slog.String("status", string(result.Collection.Status())),
		slog.Int("warnings", len(result.Warnings)))
	return result, nil
}

func (s *allocationService) ListAllocations(ctx context.Context, collectionID string) ([]domain.PaymentAllocation, error) {
	if _, err := s.collectionRepo.FindCollectionByID(ctx, collectionID); err != nil {
		return nil, notFoundAs(err, apperrors.ErrUnknownPayment)
	}
	allocations, err := s.allocationRepo.ListAllocationsByCollection(ctx, collectionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list allocations", slog.String("collection_id", collectionID))
		return nil, err
	}
	if allocations == nil {
		allocations = []domain.PaymentAllocation{}
	}
	return allocations, nil
}

func (s *allocationService) ListInvoiceAllocations(ctx context.Context, invoiceID string) ([]domain.PaymentAllocation, error) {
	if _, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID); err != nil {
		return nil, notFoundAs(err, apperrors.ErrUnknownInvoice)
	}
	allocations, err := s.allocationRepo.ListAllocationsByInvoice(ctx, invoiceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoice allocations", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	if allocations == nil {
		allocations = []domain.PaymentAllocation{}
	}
	return allocations, nil
}
