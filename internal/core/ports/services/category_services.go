package services

import (
	"context"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// CategoryInput carries the editable fields of an expense category.
type CategoryInput struct {
	Name               string
	DefaultExpenseType domain.ExpenseType
	DefaultCompanyRef  *string
}

// CategorySvcFacade defines the operations of the category registry
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, input CategoryInput, userID string) (*domain.ExpenseCategory, error)
	GetCategory(ctx context.Context, categoryID string) (*domain.ExpenseCategory, error)
	ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	UpdateCategory(ctx context.Context, categoryID string, input CategoryInput, userID string) (*domain.ExpenseCategory, error)
	DeleteCategory(ctx context.Context, categoryID string, userID string) error
}
