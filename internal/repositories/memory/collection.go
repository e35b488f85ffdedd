package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

func (s *Store) FindCollectionByID(ctx context.Context, collectionID string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collectionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCollections(ctx context.Context, filter domain.CollectionFilter) ([]domain.Collection, *string, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, nil, fmt.Errorf("%w: collection status %q", apperrors.ErrInvalidEnum, filter.Status)
	}

	s.mu.RLock()
	matched := make([]domain.Collection, 0, len(s.collections))
	for _, c := range s.collections {
		if filter.ClientRef != "" && c.ClientRef != filter.ClientRef {
			continue
		}
		if filter.CompanyRef != "" && c.CompanyRef != filter.CompanyRef {
			continue
		}
		if filter.Status != "" && c.Status() != filter.Status {
			continue
		}
		if !filter.CollectionDates.Contains(c.CollectionDate) {
			continue
		}
		matched = append(matched, c)
	}
	s.mu.RUnlock()

	return paginate(matched, func(c domain.Collection) sortKey {
		return sortKey{date: c.CollectionDate, createdAt: c.CreatedAt, id: c.CollectionID}
	}, filter.Limit, filter.NextToken)
}

func (s *Store) ListAllCollections(ctx context.Context) ([]domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Collection, 0, len(s.collections))
	for _, c := range s.collections {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CollectionID < all[j].CollectionID })
	return all, nil
}

func (s *Store) SaveCollection(ctx context.Context, collection domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[collection.CollectionID]; exists {
		return fmt.Errorf("collection %s: %w", collection.CollectionID, apperrors.ErrDuplicate)
	}
	for _, other := range s.collections {
		if other.ReceiptNumber == collection.ReceiptNumber {
			return fmt.Errorf("receipt number %s: %w", collection.ReceiptNumber, apperrors.ErrDuplicate)
		}
	}
	if collection.Applied.Currency == "" {
		collection.Applied = domain.Zero(collection.Currency())
	}
	s.collections[collection.CollectionID] = collection
	return nil
}

// DeleteCollection refuses while any allocation still references the collection.
func (s *Store) DeleteCollection(ctx context.Context, collectionID string) error {
	unlock := s.locks.lock(collectionLockKey(collectionID))
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collectionID]; !ok {
		return apperrors.ErrNotFound
	}
	for key := range s.allocations {
		if key.collectionID == collectionID {
			return apperrors.ErrHasAllocations
		}
	}
	delete(s.collections, collectionID)
	return nil
}
