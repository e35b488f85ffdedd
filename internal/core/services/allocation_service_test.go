package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/SscSPs/neuron_ledger/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AllocationServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	svc   *portssvc.ServiceContainer
	store *memory.Store
}

func (suite *AllocationServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.svc, suite.store = newTestServices(suite.T())
}

func TestAllocationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AllocationServiceTestSuite))
}

func (suite *AllocationServiceTestSuite) invoice(id string) *domain.Invoice {
	inv, err := suite.svc.Invoice.GetInvoice(suite.ctx, id)
	suite.Require().NoError(err)
	return inv
}

func (suite *AllocationServiceTestSuite) collection(id string) *domain.Collection {
	c, err := suite.svc.Collection.GetCollection(suite.ctx, id)
	suite.Require().NoError(err)
	return c
}

func (suite *AllocationServiceTestSuite) assertAuditClean() {
	report, err := suite.svc.Audit.AuditLedger(suite.ctx)
	suite.Require().NoError(err)
	suite.True(report.Clean(), "unexpected drift: %+v", report.Drifts)
}

// --- Scenarios ---

func (suite *AllocationServiceTestSuite) TestFullPaymentSettlesInvoice() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(125000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(125000))

	result, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(125000))}, testUser)
	suite.Require().NoError(err)

	suite.Empty(result.Warnings)
	suite.Require().Len(result.Invoices, 1)
	suite.Equal(domain.InvoicePaid, result.Invoices[0].Status())
	suite.True(result.Invoices[0].Balance().IsZero())
	suite.Equal(domain.CollectionFullyApplied, result.Collection.Status())
	suite.True(result.Collection.UnappliedBalance().IsZero())

	suite.Equal(domain.InvoicePaid, suite.invoice(inv.InvoiceID).Status())
	suite.Equal(domain.CollectionFullyApplied, suite.collection(col.CollectionID).Status())
	suite.assertAuditClean()
}

func (suite *AllocationServiceTestSuite) TestSmallPaymentLeavesInvoicePartial() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(85000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(40000))

	result, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(40000))}, testUser)
	suite.Require().NoError(err)

	stored := suite.invoice(inv.InvoiceID)
	suite.Equal(domain.InvoicePartial, stored.Status())
	suite.Equal(php(pesos(45000)), stored.Balance())
	suite.Equal(domain.CollectionFullyApplied, result.Collection.Status())
	suite.True(result.Collection.UnappliedBalance().IsZero())
}

func (suite *AllocationServiceTestSuite) TestClampToCollectionRemainderWarns() {
	invA := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(45000))
	invB := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(10000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(50000))

	result, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{
		target(invA.InvoiceID, pesos(45000)),
		target(invB.InvoiceID, pesos(15000)),
	}, testUser)
	suite.Require().NoError(err)

	suite.Require().Len(result.Warnings, 1)
	w := result.Warnings[0]
	suite.Equal(invB.InvoiceID, w.InvoiceID)
	suite.Equal(php(pesos(15000)), w.Requested)
	suite.Equal(php(pesos(5000)), w.Applied)
	suite.Equal(php(pesos(10000)), w.Shortfall)

	suite.Equal(php(pesos(50000)), result.Collection.AppliedAmount())
	suite.Equal(domain.CollectionFullyApplied, result.Collection.Status())
	suite.Equal(php(pesos(5000)), suite.invoice(invB.InvoiceID).CollectedAmount())
	suite.Equal(domain.InvoicePartial, suite.invoice(invB.InvoiceID).Status())
	suite.assertAuditClean()
}

func (suite *AllocationServiceTestSuite) TestClampToInvoiceBalanceWarns() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(10000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(50000))

	result, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(15000))}, testUser)
	suite.Require().NoError(err)

	suite.Require().Len(result.Warnings, 1)
	suite.Equal(php(pesos(10000)), result.Warnings[0].Applied)
	suite.Equal(php(pesos(5000)), result.Warnings[0].Shortfall)
	suite.Equal(domain.InvoicePaid, result.Invoices[0].Status())
	suite.Equal(domain.CollectionPartiallyApplied, result.Collection.Status())
}

func (suite *AllocationServiceTestSuite) TestDeallocateMovesStatusesBack() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	colA := newCollection(suite.T(), suite.svc, testClient, pesos(600))
	colB := newCollection(suite.T(), suite.svc, testClient, pesos(400))

	_, err := suite.svc.Allocation.Allocate(suite.ctx, colA.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(600))}, testUser)
	suite.Require().NoError(err)
	_, err = suite.svc.Allocation.Allocate(suite.ctx, colB.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(400))}, testUser)
	suite.Require().NoError(err)
	suite.Equal(domain.InvoicePaid, suite.invoice(inv.InvoiceID).Status())

	result, err := suite.svc.Allocation.Deallocate(suite.ctx, colB.CollectionID, inv.InvoiceID, testUser)
	suite.Require().NoError(err)

	suite.Equal(domain.InvoicePartial, result.Invoices[0].Status())
	suite.Equal(php(pesos(600)), result.Invoices[0].CollectedAmount())
	suite.Equal(domain.CollectionUnapplied, result.Collection.Status())
	suite.Empty(result.Allocations)
	suite.Equal(domain.InvoicePartial, suite.invoice(inv.InvoiceID).Status())
	suite.assertAuditClean()
}

// --- Properties ---

func (suite *AllocationServiceTestSuite) TestAllocateIsIdempotentPerPair() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(1000))
	targets := []domain.AllocationTarget{target(inv.InvoiceID, pesos(300))}

	first, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, targets, testUser)
	suite.Require().NoError(err)
	second, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, targets, testUser)
	suite.Require().NoError(err)

	suite.Equal(first.Collection.AppliedAmount(), second.Collection.AppliedAmount())
	suite.Equal(first.Invoices[0].CollectedAmount(), second.Invoices[0].CollectedAmount())
	suite.Require().Len(second.Allocations, 1)
	suite.Equal(first.Allocations[0].AllocationID, second.Allocations[0].AllocationID)
	suite.Equal(php(pesos(300)), second.Allocations[0].AmountApplied)
	suite.Empty(second.Warnings)
}

func (suite *AllocationServiceTestSuite) TestReallocateReplacesAmount() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(1000))

	_, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(300))}, testUser)
	suite.Require().NoError(err)
	result, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(1000))}, testUser)
	suite.Require().NoError(err)

	suite.Empty(result.Warnings, "the existing 300 is released before clamping")
	suite.Equal(php(pesos(1000)), result.Collection.AppliedAmount())
	suite.Equal(domain.InvoicePaid, result.Invoices[0].Status())
}

func (suite *AllocationServiceTestSuite) TestDeallocateThenAllocateRoundTrip() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(700))
	targets := []domain.AllocationTarget{target(inv.InvoiceID, pesos(700))}

	before, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, targets, testUser)
	suite.Require().NoError(err)
	_, err = suite.svc.Allocation.Deallocate(suite.ctx, col.CollectionID, inv.InvoiceID, testUser)
	suite.Require().NoError(err)
	after, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, targets, testUser)
	suite.Require().NoError(err)

	suite.Equal(before.Collection.AppliedAmount(), after.Collection.AppliedAmount())
	suite.Equal(before.Collection.Status(), after.Collection.Status())
	suite.Equal(before.Invoices[0].CollectedAmount(), after.Invoices[0].CollectedAmount())
	suite.Equal(before.Invoices[0].Status(), after.Invoices[0].Status())
}

func (suite *AllocationServiceTestSuite) TestZeroAmountIsNoOp() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(1000))

	result, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, 0)}, testUser)
	suite.Require().NoError(err)
	suite.Empty(result.Allocations)
	suite.Empty(result.Warnings)
	suite.Equal(domain.CollectionUnapplied, result.Collection.Status())
	suite.Equal(domain.InvoicePosted, suite.invoice(inv.InvoiceID).Status())

	_, err = suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(200))}, testUser)
	suite.Require().NoError(err)
	result, err = suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, 0)}, testUser)
	suite.Require().NoError(err)
	suite.Require().Len(result.Allocations, 1, "a zero target leaves the existing row alone")
	suite.Equal(php(pesos(200)), result.Allocations[0].AmountApplied)
}

func (suite *AllocationServiceTestSuite) TestUnknownInvoiceWritesNothing() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(1000))

	_, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{
		target(inv.InvoiceID, pesos(500)),
		target("does-not-exist", pesos(100)),
	}, testUser)
	suite.ErrorIs(err, apperrors.ErrUnknownInvoice)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.Equal(domain.InvoicePosted, suite.invoice(inv.InvoiceID).Status())
	suite.Equal(domain.CollectionUnapplied, suite.collection(col.CollectionID).Status())
	allocations, err := suite.svc.Allocation.ListAllocations(suite.ctx, col.CollectionID)
	suite.Require().NoError(err)
	suite.Empty(allocations)
}

func (suite *AllocationServiceTestSuite) TestRejections() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(1000))
	otherClient := postedInvoice(suite.T(), suite.svc, "client-2", testDay, pesos(1000))
	draft, err := suite.svc.Invoice.CreateDraft(suite.ctx, portssvc.NewInvoiceInput{
		ClientRef: testClient, CompanyRef: testComp, Currency: "PHP",
		LineItems: []domain.InvoiceLineItem{{Description: "x", Amount: php(100)}},
	}, testUser)
	suite.Require().NoError(err)

	cases := []struct {
		name         string
		collectionID string
		targets      []domain.AllocationTarget
		want         error
	}{
		{"unknown collection", "missing", []domain.AllocationTarget{target(inv.InvoiceID, 100)}, apperrors.ErrUnknownPayment},
		{"negative amount", col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, -1)}, apperrors.ErrNonPositiveAmount},
		{"duplicate target", col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, 1), target(inv.InvoiceID, 2)}, apperrors.ErrDuplicateTarget},
		{"currency mismatch", col.CollectionID, []domain.AllocationTarget{{InvoiceID: inv.InvoiceID, Amount: domain.NewMoney(100, "USD")}}, apperrors.ErrCurrencyMismatch},
		{"draft invoice", col.CollectionID, []domain.AllocationTarget{target(draft.InvoiceID, 100)}, apperrors.ErrInvoiceNotPosted},
		{"other client", col.CollectionID, []domain.AllocationTarget{target(otherClient.InvoiceID, 100)}, apperrors.ErrClientMismatch},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.svc.Allocation.Allocate(suite.ctx, tc.collectionID, tc.targets, testUser)
			suite.ErrorIs(err, tc.want)
		})
	}
	suite.Equal(domain.CollectionUnapplied, suite.collection(col.CollectionID).Status())
}

func (suite *AllocationServiceTestSuite) TestDeallocateWithoutRow() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(1000))

	_, err := suite.svc.Allocation.Deallocate(suite.ctx, col.CollectionID, inv.InvoiceID, testUser)
	suite.ErrorIs(err, apperrors.ErrNoSuchAllocation)

	_, err = suite.svc.Allocation.Deallocate(suite.ctx, "missing", inv.InvoiceID, testUser)
	suite.ErrorIs(err, apperrors.ErrUnknownPayment)
}

func (suite *AllocationServiceTestSuite) TestAutoAllocateOldestFirst() {
	newest := postedInvoice(suite.T(), suite.svc, testClient, testDay.AddDate(0, 0, 10), pesos(500))
	oldest := postedInvoice(suite.T(), suite.svc, testClient, testDay.AddDate(0, 0, -10), pesos(300))
	middle := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(400))
	col := newCollection(suite.T(), suite.svc, testClient, pesos(900))

	_, err := suite.svc.Allocation.Allocate(suite.ctx, col.CollectionID, []domain.AllocationTarget{target(middle.InvoiceID, pesos(100))}, testUser)
	suite.Require().NoError(err)

	result, err := suite.svc.Allocation.AutoAllocate(suite.ctx, col.CollectionID, testUser)
	suite.Require().NoError(err)
	suite.Empty(result.Warnings)
	suite.Equal(domain.CollectionFullyApplied, result.Collection.Status())

	suite.Equal(domain.InvoicePaid, suite.invoice(oldest.InvoiceID).Status())
	suite.Equal(domain.InvoicePaid, suite.invoice(middle.InvoiceID).Status())
	suite.Equal(php(pesos(200)), suite.invoice(newest.InvoiceID).CollectedAmount())
	suite.assertAuditClean()
}

func (suite *AllocationServiceTestSuite) TestListInvoiceAllocations() {
	inv := postedInvoice(suite.T(), suite.svc, testClient, testDay, pesos(1000))
	colA := newCollection(suite.T(), suite.svc, testClient, pesos(100))
	colB := newCollection(suite.T(), suite.svc, testClient, pesos(100))
	for _, c := range []*domain.Collection{colA, colB} {
		_, err := suite.svc.Allocation.Allocate(suite.ctx, c.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(100))}, testUser)
		suite.Require().NoError(err)
	}

	allocations, err := suite.svc.Allocation.ListInvoiceAllocations(suite.ctx, inv.InvoiceID)
	suite.Require().NoError(err)
	suite.Len(allocations, 2)

	_, err = suite.svc.Allocation.ListInvoiceAllocations(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrUnknownInvoice)
}

// Concurrent collections racing for one invoice must never push it past its stated amount.
func TestAllocate_ConcurrentCallsNeverOverCollect(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	inv := postedInvoice(t, svc, testClient, testDay, pesos(1000))

	const callers = 8
	collections := make([]*domain.Collection, callers)
	for i := range collections {
		collections[i] = newCollection(t, svc, testClient, pesos(300))
	}

	var wg sync.WaitGroup
	for _, c := range collections {
		wg.Add(1)
		go func(collectionID string) {
			defer wg.Done()
			_, err := svc.Allocation.Allocate(ctx, collectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(300))}, testUser)
			assert.NoError(t, err)
		}(c.CollectionID)
	}
	wg.Wait()

	stored, err := svc.Invoice.GetInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, php(pesos(1000)), stored.CollectedAmount())
	assert.Equal(t, domain.InvoicePaid, stored.Status())

	report, err := svc.Audit.AuditLedger(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "unexpected drift: %+v", report.Drifts)
}
