// Package memory holds an in-process implementation of every repository port.
// It backs the server when no database is configured and the service tests.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/neuron_ledger/internal/utils/pagination"
)

type allocationKey struct {
	collectionID string
	invoiceID    string
}

// Store keeps every aggregate in maps guarded by mu. Row locks are modelled by
// per-record mutexes in locks, taken in the same order the Postgres store takes
// row locks, so read-modify-write sequences on one record never interleave.
type Store struct {
	mu          sync.RWMutex
	invoices    map[string]domain.Invoice
	collections map[string]domain.Collection
	allocations map[allocationKey]domain.PaymentAllocation
	expenses    map[string]domain.Expense
	categories  map[string]domain.ExpenseCategory
	sequences   map[string]int64

	locks keyedLocks
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		invoices:    make(map[string]domain.Invoice),
		collections: make(map[string]domain.Collection),
		allocations: make(map[allocationKey]domain.PaymentAllocation),
		expenses:    make(map[string]domain.Expense),
		categories:  make(map[string]domain.ExpenseCategory),
		sequences:   make(map[string]int64),
	}
}

// NewRepositoryProvider exposes one Store through every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		InvoiceRepo:    store,
		CollectionRepo: store,
		AllocationRepo: store,
		ExpenseRepo:    store,
		CategoryRepo:   store,
		SequenceRepo:   store,
	}
}

var (
	_ portsrepo.InvoiceRepositoryFacade    = (*Store)(nil)
	_ portsrepo.CollectionRepositoryFacade = (*Store)(nil)
	_ portsrepo.AllocationRepositoryFacade = (*Store)(nil)
	_ portsrepo.ExpenseRepositoryFacade    = (*Store)(nil)
	_ portsrepo.CategoryRepositoryFacade   = (*Store)(nil)
	_ portsrepo.SequenceRepository         = (*Store)(nil)
)

// keyedLocks hands out one mutex per record key. An entry lives only while some
// caller holds or waits on it.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedLock)
	}
	entry, ok := k.entries[key]
	if !ok {
		entry = &keyedLock{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			k.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}

// size reports how many keys currently have an entry.
func (k *keyedLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func invoiceLockKey(id string) string    { return "invoice:" + id }
func collectionLockKey(id string) string { return "collection:" + id }
func expenseLockKey(id string) string    { return "expense:" + id }

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	inv.LineItems = append([]domain.InvoiceLineItem(nil), inv.LineItems...)
	return inv
}

func cloneExpense(e domain.Expense) domain.Expense {
	e.LineItems = append([]domain.ExpenseLineItem(nil), e.LineItems...)
	return e
}

// sortKey is the (date, createdAt, id) triple lists are ordered by.
type sortKey struct {
	date      time.Time
	createdAt time.Time
	id        string
}

// paginate orders items newest first and returns the page after nextToken.
func paginate[T any](items []T, key func(T) sortKey, limit int, nextToken *string) ([]T, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	sort.Slice(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		return pagination.Cursor{Date: a.date, CreatedAt: a.createdAt, ID: a.id}.Before(b.date, b.createdAt, b.id)
	})

	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		start := len(items)
		for i, item := range items {
			k := key(item)
			if cursor.Before(k.date, k.createdAt, k.id) {
				start = i
				break
			}
		}
		items = items[start:]
	}

	if len(items) <= limit {
		return items, nil, nil
	}
	page := items[:limit]
	last := key(page[limit-1])
	token := pagination.EncodeToken(last.date, last.createdAt, last.id)
	return page, &token, nil
}
