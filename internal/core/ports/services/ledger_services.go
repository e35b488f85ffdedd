package services

import (
	"context"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// DocumentNumberer assigns human-facing document numbers.
type DocumentNumberer interface {
	NextNumber(ctx context.Context, series domain.DocumentSeries, date time.Time) (string, error)
}

// LedgerAuditSvc re-checks stored totals against allocation rows.
type LedgerAuditSvc interface {
	AuditLedger(ctx context.Context) (*domain.AuditReport, error)
}
