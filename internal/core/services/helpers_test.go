package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/SscSPs/neuron_ledger/internal/core/services"
	"github.com/SscSPs/neuron_ledger/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

const (
	testUser   = "user-1"
	testClient = "client-1"
	testComp   = "company-1"
)

var testDay = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

func php(minor int64) domain.Money { return domain.NewMoney(minor, "PHP") }

// newTestServices wires every service over a fresh memory store with a fixed clock.
func newTestServices(t *testing.T) (*portssvc.ServiceContainer, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	clock := func() time.Time { return testDay.Add(9 * time.Hour) }
	return services.NewServiceContainer(nil, memory.NewRepositoryProvider(store), services.WithClock(clock)), store
}

// postedInvoice creates and posts an invoice for client with one line per amount.
func postedInvoice(t *testing.T, svc *portssvc.ServiceContainer, client string, issued time.Time, amounts ...int64) *domain.Invoice {
	t.Helper()
	ctx := context.Background()
	lines := make([]domain.InvoiceLineItem, len(amounts))
	for i, a := range amounts {
		lines[i] = domain.InvoiceLineItem{Description: "freight charge", Amount: php(a)}
	}
	draft, err := svc.Invoice.CreateDraft(ctx, portssvc.NewInvoiceInput{
		IssueDate:  issued,
		ClientRef:  client,
		CompanyRef: testComp,
		Currency:   "PHP",
		LineItems:  lines,
	}, testUser)
	require.NoError(t, err)
	posted, err := svc.Invoice.Post(ctx, draft.InvoiceID, testUser)
	require.NoError(t, err)
	return posted
}

func newCollection(t *testing.T, svc *portssvc.ServiceContainer, client string, received int64) *domain.Collection {
	t.Helper()
	c, err := svc.Collection.CreateCollection(context.Background(), portssvc.NewCollectionInput{
		CollectionDate: testDay,
		ClientRef:      client,
		CompanyRef:     testComp,
		PaymentMethod:  domain.PaymentBankTransfer,
		AmountReceived: php(received),
	}, testUser)
	require.NoError(t, err)
	return c
}

func target(invoiceID string, minor int64) domain.AllocationTarget {
	return domain.AllocationTarget{InvoiceID: invoiceID, Amount: php(minor)}
}

// pesos converts whole pesos to minor units.
func pesos(n int64) int64 { return n * 100 }
