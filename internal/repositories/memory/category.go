package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

func (s *Store) FindCategoryByID(ctx context.Context, categoryID string) (*domain.ExpenseCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[categoryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.ExpenseCategory, 0, len(s.categories))
	for _, c := range s.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// nameTaken must be called with mu held.
func (s *Store) nameTaken(name, exceptID string) bool {
	for id, c := range s.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) SaveCategory(ctx context.Context, category domain.ExpenseCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[category.CategoryID]; exists || s.nameTaken(category.Name, "") {
		return fmt.Errorf("category %q: %w", category.Name, apperrors.ErrDuplicate)
	}
	s.categories[category.CategoryID] = category
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.ExpenseCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.CategoryID]; !ok {
		return apperrors.ErrNotFound
	}
	if s.nameTaken(category.Name, category.CategoryID) {
		return fmt.Errorf("category %q: %w", category.Name, apperrors.ErrDuplicate)
	}
	s.categories[category.CategoryID] = category
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[categoryID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.categories, categoryID)
	return nil
}
