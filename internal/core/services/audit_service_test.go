package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_CleanLedger(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	inv := postedInvoice(t, svc, testClient, testDay, pesos(500))
	col := newCollection(t, svc, testClient, pesos(300))
	_, err := svc.Allocation.Allocate(ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(300))}, testUser)
	require.NoError(t, err)

	report, err := svc.Audit.AuditLedger(ctx)
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.NotNil(t, report.Drifts)
	assert.Equal(t, 1, report.InvoicesChecked)
	assert.Equal(t, 1, report.CollectionsChecked)
	assert.Equal(t, 1, report.AllocationsChecked)
	assert.Equal(t, testDay.Add(9*time.Hour), report.CheckedAt)
}

func TestAuditService_ReportsDrift(t *testing.T) {
	svc, store := newTestServices(t)
	ctx := context.Background()
	inv := postedInvoice(t, svc, testClient, testDay, pesos(500))
	col := newCollection(t, svc, testClient, pesos(300))
	_, err := svc.Allocation.Allocate(ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(300))}, testUser)
	require.NoError(t, err)

	// corrupt the stored totals behind the engine's back
	err = store.RunInLedgerTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.SetInvoiceCollected(ctx, inv.InvoiceID, php(pesos(600)), "ops", testDay); err != nil {
			return err
		}
		return tx.SetCollectionApplied(ctx, col.CollectionID, php(pesos(100)), "ops", testDay)
	})
	require.NoError(t, err)

	report, err := svc.Audit.AuditLedger(ctx)
	require.NoError(t, err)
	require.False(t, report.Clean())

	kinds := map[string][]domain.DriftKind{}
	for _, d := range report.Drifts {
		kinds[d.EntityID] = append(kinds[d.EntityID], d.Kind)
	}
	assert.ElementsMatch(t, []domain.DriftKind{domain.DriftSumMismatch, domain.DriftOverCap}, kinds[inv.InvoiceID])
	assert.Equal(t, []domain.DriftKind{domain.DriftSumMismatch}, kinds[col.CollectionID])
}
