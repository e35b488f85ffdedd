package repositories

import (
	"context"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense with its line items and approval chain.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a page of expenses matching the filter, newest first.
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, *string, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpense locks the expense, applies mutate and persists the result.
	// If mutate returns an error nothing is written.
	UpdateExpense(ctx context.Context, expenseID string, mutate func(*domain.Expense) error) (*domain.Expense, error)
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
