package repositories

import (
	"context"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// CategoryReader defines read operations for expense categories
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.ExpenseCategory, error)
	ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
}

// CategoryWriter defines write operations for expense categories.
// Save and Update return apperrors.ErrDuplicate when the name is taken.
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category domain.ExpenseCategory) error
	UpdateCategory(ctx context.Context, category domain.ExpenseCategory) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
