package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
)

func (s *Store) listAllocations(match func(domain.PaymentAllocation) bool, less func(a, b domain.PaymentAllocation) bool) []domain.PaymentAllocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.PaymentAllocation{}
	for _, a := range s.allocations {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byInvoiceID(a, b domain.PaymentAllocation) bool {
	if a.CollectionID != b.CollectionID {
		return a.CollectionID < b.CollectionID
	}
	return a.InvoiceID < b.InvoiceID
}

func (s *Store) ListAllocationsByCollection(ctx context.Context, collectionID string) ([]domain.PaymentAllocation, error) {
	return s.listAllocations(func(a domain.PaymentAllocation) bool { return a.CollectionID == collectionID }, byInvoiceID), nil
}

func (s *Store) ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.PaymentAllocation, error) {
	return s.listAllocations(func(a domain.PaymentAllocation) bool { return a.InvoiceID == invoiceID }, byInvoiceID), nil
}

func (s *Store) ListAllAllocations(ctx context.Context) ([]domain.PaymentAllocation, error) {
	return s.listAllocations(func(domain.PaymentAllocation) bool { return true }, byInvoiceID), nil
}

// RunInLedgerTx gives fn a transaction whose writes are buffered and applied in
// one step when fn succeeds. Record locks taken through the tx are held until then.
func (s *Store) RunInLedgerTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	tx := &ledgerTx{
		store:             s,
		allocations:       make(map[allocationKey]*domain.PaymentAllocation),
		invoiceCollected:  make(map[string]stamped),
		collectionApplied: make(map[string]stamped),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// stamped is a buffered amount together with who wrote it and when.
type stamped struct {
	amount domain.Money
	userID string
	at     time.Time
}

type ledgerTx struct {
	store  *Store
	unlock []func()
	held   map[string]bool

	// allocations overlays the store; a nil entry marks a deleted pair.
	allocations       map[allocationKey]*domain.PaymentAllocation
	invoiceCollected  map[string]stamped
	collectionApplied map[string]stamped
}

var _ portsrepo.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) lock(key string) {
	if t.held == nil {
		t.held = make(map[string]bool)
	}
	if t.held[key] {
		return
	}
	t.unlock = append(t.unlock, t.store.locks.lock(key))
	t.held[key] = true
}

func (t *ledgerTx) release() {
	for i := len(t.unlock) - 1; i >= 0; i-- {
		t.unlock[i]()
	}
	t.unlock = nil
}

func (t *ledgerTx) LockCollection(ctx context.Context, collectionID string) (*domain.Collection, error) {
	t.lock(collectionLockKey(collectionID))
	c, err := t.store.FindCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if v, ok := t.collectionApplied[collectionID]; ok {
		c.Applied = v.amount
	}
	return c, nil
}

func (t *ledgerTx) LockInvoices(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error) {
	ids := append([]string(nil), invoiceIDs...)
	sort.Strings(ids)

	locked := make(map[string]domain.Invoice, len(ids))
	for _, id := range ids {
		t.lock(invoiceLockKey(id))
		inv, err := t.store.FindInvoiceByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if v, ok := t.invoiceCollected[id]; ok {
			inv.Collected = v.amount
		}
		locked[id] = *inv
	}
	return locked, nil
}

// visible returns the allocations the tx can see, overlay applied.
func (t *ledgerTx) visible(match func(allocationKey) bool) []domain.PaymentAllocation {
	t.store.mu.RLock()
	merged := make(map[allocationKey]domain.PaymentAllocation)
	for key, a := range t.store.allocations {
		if match(key) {
			merged[key] = a
		}
	}
	t.store.mu.RUnlock()

	for key, a := range t.allocations {
		if !match(key) {
			continue
		}
		if a == nil {
			delete(merged, key)
		} else {
			merged[key] = *a
		}
	}

	out := make([]domain.PaymentAllocation, 0, len(merged))
	for _, a := range merged {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return byInvoiceID(out[i], out[j]) })
	return out
}

func (t *ledgerTx) FindAllocation(ctx context.Context, collectionID, invoiceID string) (*domain.PaymentAllocation, error) {
	key := allocationKey{collectionID: collectionID, invoiceID: invoiceID}
	found := t.visible(func(k allocationKey) bool { return k == key })
	if len(found) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &found[0], nil
}

func (t *ledgerTx) UpsertAllocation(ctx context.Context, allocation domain.PaymentAllocation) error {
	key := allocationKey{collectionID: allocation.CollectionID, invoiceID: allocation.InvoiceID}
	if existing, err := t.FindAllocation(ctx, key.collectionID, key.invoiceID); err == nil {
		allocation.AllocationID = existing.AllocationID
		allocation.CreatedAt = existing.CreatedAt
		allocation.CreatedBy = existing.CreatedBy
	}
	t.allocations[key] = &allocation
	return nil
}

func (t *ledgerTx) DeleteAllocation(ctx context.Context, collectionID, invoiceID string) error {
	if _, err := t.FindAllocation(ctx, collectionID, invoiceID); err != nil {
		return err
	}
	t.allocations[allocationKey{collectionID: collectionID, invoiceID: invoiceID}] = nil
	return nil
}

func sumApplied(currency string, allocations []domain.PaymentAllocation) (domain.Money, error) {
	amounts := make([]domain.Money, len(allocations))
	for i, a := range allocations {
		amounts[i] = a.AmountApplied
	}
	return domain.SumMoney(currency, amounts...)
}

func (t *ledgerTx) SumAllocationsByInvoice(ctx context.Context, invoiceID string, currency string) (domain.Money, error) {
	return sumApplied(currency, t.visible(func(k allocationKey) bool { return k.invoiceID == invoiceID }))
}

func (t *ledgerTx) SumAllocationsByCollection(ctx context.Context, collectionID string, currency string) (domain.Money, error) {
	return sumApplied(currency, t.visible(func(k allocationKey) bool { return k.collectionID == collectionID }))
}

func (t *ledgerTx) ListAllocationsByCollection(ctx context.Context, collectionID string) ([]domain.PaymentAllocation, error) {
	return t.visible(func(k allocationKey) bool { return k.collectionID == collectionID }), nil
}

func (t *ledgerTx) SetInvoiceCollected(ctx context.Context, invoiceID string, collected domain.Money, userID string, now time.Time) error {
	t.invoiceCollected[invoiceID] = stamped{amount: collected, userID: userID, at: now}
	return nil
}

func (t *ledgerTx) SetCollectionApplied(ctx context.Context, collectionID string, applied domain.Money, userID string, now time.Time) error {
	t.collectionApplied[collectionID] = stamped{amount: applied, userID: userID, at: now}
	return nil
}

// commit applies the buffered writes under the store lock so readers see all or none of them.
func (t *ledgerTx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, a := range t.allocations {
		if a == nil {
			delete(s.allocations, key)
			continue
		}
		s.allocations[key] = *a
	}
	for id, v := range t.invoiceCollected {
		inv, ok := s.invoices[id]
		if !ok {
			continue
		}
		inv.Collected = v.amount
		inv.Touch(v.userID, v.at)
		s.invoices[id] = inv
	}
	for id, v := range t.collectionApplied {
		c, ok := s.collections[id]
		if !ok {
			continue
		}
		c.Applied = v.amount
		c.Touch(v.userID, v.at)
		s.collections[id] = c
	}
}
