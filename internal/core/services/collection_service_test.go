package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionService_CreateCollection(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	ref := "BDO-88213"

	c, err := svc.Collection.CreateCollection(ctx, portssvc.NewCollectionInput{
		ClientRef:       testClient,
		CompanyRef:      testComp,
		PaymentMethod:   domain.PaymentCheck,
		ReferenceNumber: &ref,
		AmountReceived:  domain.NewMoney(pesos(5000), ""),
	}, testUser)
	require.NoError(t, err)

	assert.Equal(t, "OR-202510-0001", c.ReceiptNumber)
	assert.Equal(t, testDay, c.CollectionDate)
	assert.Equal(t, php(pesos(5000)), c.AmountReceived)
	assert.True(t, c.AppliedAmount().IsZero())
	assert.Equal(t, php(pesos(5000)), c.UnappliedBalance())
	assert.Equal(t, domain.CollectionUnapplied, c.Status())

	second := newCollection(t, svc, testClient, pesos(100))
	assert.Equal(t, "OR-202510-0002", second.ReceiptNumber)
}

func TestCollectionService_CreateCollectionValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	valid := portssvc.NewCollectionInput{
		ClientRef:      testClient,
		CompanyRef:     testComp,
		PaymentMethod:  domain.PaymentCash,
		AmountReceived: php(100),
	}

	tests := []struct {
		name   string
		mutate func(*portssvc.NewCollectionInput)
		want   error
	}{
		{"zero amount", func(in *portssvc.NewCollectionInput) { in.AmountReceived = php(0) }, apperrors.ErrNonPositiveAmount},
		{"negative amount", func(in *portssvc.NewCollectionInput) { in.AmountReceived = php(-100) }, apperrors.ErrNonPositiveAmount},
		{"unknown method", func(in *portssvc.NewCollectionInput) { in.PaymentMethod = "Barter" }, apperrors.ErrInvalidEnum},
		{"missing company", func(in *portssvc.NewCollectionInput) { in.CompanyRef = " " }, apperrors.ErrMissingReference},
		{"invalid currency", func(in *portssvc.NewCollectionInput) { in.AmountReceived = domain.NewMoney(100, "ZZ") }, apperrors.ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			_, err := svc.Collection.CreateCollection(ctx, input, testUser)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCollectionService_DeleteCollection(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	inv := postedInvoice(t, svc, testClient, testDay, pesos(100))
	col := newCollection(t, svc, testClient, pesos(100))

	_, err := svc.Allocation.Allocate(ctx, col.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(100))}, testUser)
	require.NoError(t, err)

	err = svc.Collection.DeleteCollection(ctx, col.CollectionID, testUser)
	assert.ErrorIs(t, err, apperrors.ErrHasAllocations)

	_, err = svc.Allocation.Deallocate(ctx, col.CollectionID, inv.InvoiceID, testUser)
	require.NoError(t, err)
	require.NoError(t, svc.Collection.DeleteCollection(ctx, col.CollectionID, testUser))

	_, err = svc.Collection.GetCollection(ctx, col.CollectionID)
	assert.ErrorIs(t, err, apperrors.ErrUnknownPayment)
	err = svc.Collection.DeleteCollection(ctx, col.CollectionID, testUser)
	assert.ErrorIs(t, err, apperrors.ErrUnknownPayment)
}

func TestCollectionService_ListCollectionsByStatus(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	inv := postedInvoice(t, svc, testClient, testDay, pesos(1000))
	applied := newCollection(t, svc, testClient, pesos(100))
	newCollection(t, svc, testClient, pesos(100))

	_, err := svc.Allocation.Allocate(ctx, applied.CollectionID, []domain.AllocationTarget{target(inv.InvoiceID, pesos(100))}, testUser)
	require.NoError(t, err)

	fully, _, err := svc.Collection.ListCollections(ctx, domain.CollectionFilter{Status: domain.CollectionFullyApplied})
	require.NoError(t, err)
	require.Len(t, fully, 1)
	assert.Equal(t, applied.CollectionID, fully[0].CollectionID)

	all, next, err := svc.Collection.ListCollections(ctx, domain.CollectionFilter{ClientRef: testClient})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Nil(t, next)
}
