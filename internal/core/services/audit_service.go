package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
)

type auditService struct {
	BaseService
	invoiceRepo    portsrepo.InvoiceReader
	collectionRepo portsrepo.CollectionReader
	allocationRepo portsrepo.AllocationReader
}

// NewAuditService creates the ledger audit. It only reads.
func NewAuditService(
	invoiceRepo portsrepo.InvoiceReader,
	collectionRepo portsrepo.CollectionReader,
	allocationRepo portsrepo.AllocationReader,
	options ...ServiceOption,
) portssvc.LedgerAuditSvc {
	return &auditService{
		BaseService:    newBaseService(options),
		invoiceRepo:    invoiceRepo,
		collectionRepo: collectionRepo,
		allocationRepo: allocationRepo,
	}
}

var _ portssvc.LedgerAuditSvc = (*auditService)(nil)

// AuditLedger compares every stored collected/applied total with the sum of its
// allocation rows and with its cap. The reads are not taken in one snapshot, so an
// engine call committing mid-audit can show up as a transient drift.
func (s *auditService) AuditLedger(ctx context.Context) (*domain.AuditReport, error) {
	allocations, err := s.allocationRepo.ListAllAllocations(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to read allocations for audit")
		return nil, fmt.Errorf("failed to read allocations: %w", err)
	}
	invoices, err := s.invoiceRepo.ListAllInvoices(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to read invoices for audit")
		return nil, fmt.Errorf("failed to read invoices: %w", err)
	}
	collections, err := s.collectionRepo.ListAllCollections(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to read collections for audit")
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}

	byInvoice := make(map[string][]domain.Money)
	byCollection := make(map[string][]domain.Money)
	for _, a := range allocations {
		byInvoice[a.InvoiceID] = append(byInvoice[a.InvoiceID], a.AmountApplied)
		byCollection[a.CollectionID] = append(byCollection[a.CollectionID], a.AmountApplied)
	}

	report := &domain.AuditReport{
		CheckedAt:          s.Now(),
		InvoicesChecked:    len(invoices),
		CollectionsChecked: len(collections),
		AllocationsChecked: len(allocations),
		Drifts:             []domain.LedgerDrift{},
	}
	for _, inv := range invoices {
		report.Drifts = append(report.Drifts,
			checkTotal("invoice", inv.InvoiceID, inv.CollectedAmount(), inv.StatedAmount(), byInvoice[inv.InvoiceID])...)
	}
	for _, c := range collections {
		report.Drifts = append(report.Drifts,
			checkTotal("collection", c.CollectionID, c.AppliedAmount(), c.AmountReceived, byCollection[c.CollectionID])...)
	}

	if report.Clean() {
		s.LogInfo(ctx, "Ledger audit clean",
			slog.Int("invoices", report.InvoicesChecked),
			slog.Int("collections", report.CollectionsChecked),
			slog.Int("allocations", report.AllocationsChecked))
	} else {
		s.GetLogger(ctx).Warn("Ledger audit found drift", slog.Int("drifts", len(report.Drifts)))
	}
	return report, nil
}

func checkTotal(entityType, id string, stored, limit domain.Money, rows []domain.Money) []domain.LedgerDrift {
	var drifts []domain.LedgerDrift
	drift := func(kind domain.DriftKind, expected domain.Money) {
		drifts = append(drifts, domain.LedgerDrift{EntityType: entityType, EntityID: id, Kind: kind, Stored: stored, Expected: expected})
	}

	expected, err := domain.SumMoney(stored.Currency, rows...)
	if err != nil {
		// a row in another currency can never sum to the stored total
		drift(domain.DriftSumMismatch, domain.Zero(stored.Currency))
	} else if expected != stored {
		drift(domain.DriftSumMismatch, expected)
	}
	if stored.IsNegative() {
		drift(domain.DriftNegative, domain.Zero(stored.Currency))
	}
	if cmp, err := stored.Compare(limit); err == nil && cmp > 0 {
		drift(domain.DriftOverCap, limit)
	}
	return drifts
}
