package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

func (s *Store) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := cloneExpense(e)
	return &cp, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, *string, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, nil, fmt.Errorf("%w: expense status %q", apperrors.ErrInvalidEnum, filter.Status)
	}

	s.mu.RLock()
	matched := make([]domain.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if filter.CompanyRef != "" && e.CompanyRef != filter.CompanyRef {
			continue
		}
		if filter.CategoryID != "" && e.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if !filter.ExpenseDates.Contains(e.ExpenseDate) {
			continue
		}
		matched = append(matched, cloneExpense(e))
	}
	s.mu.RUnlock()

	return paginate(matched, func(e domain.Expense) sortKey {
		return sortKey{date: e.ExpenseDate, createdAt: e.CreatedAt, id: e.ExpenseID}
	}, filter.Limit, filter.NextToken)
}

func (s *Store) SaveExpense(ctx context.Context, expense domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expenses[expense.ExpenseID]; exists {
		return fmt.Errorf("expense %s: %w", expense.ExpenseID, apperrors.ErrDuplicate)
	}
	s.expenses[expense.ExpenseID] = cloneExpense(expense)
	return nil
}

func (s *Store) UpdateExpense(ctx context.Context, expenseID string, mutate func(*domain.Expense) error) (*domain.Expense, error) {
	unlock := s.locks.lock(expenseLockKey(expenseID))
	defer unlock()

	current, err := s.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := mutate(current); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.expenses[expenseID] = cloneExpense(*current)
	s.mu.Unlock()

	updated := cloneExpense(*current)
	return &updated, nil
}
