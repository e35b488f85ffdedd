package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
)

type documentNumberer struct {
	BaseService
	sequenceRepo portsrepo.SequenceRepository
}

// NewDocumentNumberer numbers documents per series and calendar month, e.g. OR-202610-0042.
// A number drawn by a call that later fails is not reused.
func NewDocumentNumberer(repo portsrepo.SequenceRepository, options ...ServiceOption) portssvc.DocumentNumberer {
	return &documentNumberer{BaseService: newBaseService(options), sequenceRepo: repo}
}

var _ portssvc.DocumentNumberer = (*documentNumberer)(nil)

func (n *documentNumberer) NextNumber(ctx context.Context, series domain.DocumentSeries, date time.Time) (string, error) {
	period := domain.SequencePeriod(date)
	value, err := n.sequenceRepo.NextSequenceValue(ctx, string(series), period)
	if err != nil {
		n.LogError(ctx, err, "Failed to draw document number",
			slog.String("series", string(series)),
			slog.String("period", period))
		return "", fmt.Errorf("failed to assign %s number: %w", series, err)
	}
	return domain.FormatDocumentNumber(series, period, value), nil
}
