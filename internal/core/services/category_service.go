package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewCategoryService creates the expense category registry.
func NewCategoryService(repo portsrepo.CategoryRepositoryFacade, options ...ServiceOption) portssvc.CategorySvcFacade {
	return &categoryService{BaseService: newBaseService(options), categoryRepo: repo}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func validateCategoryInput(input portssvc.CategoryInput) (portssvc.CategoryInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	if !input.DefaultExpenseType.IsValid() {
		return input, fmt.Errorf("%w: expense type %q", apperrors.ErrInvalidEnum, input.DefaultExpenseType)
	}
	return input, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, input portssvc.CategoryInput, userID string) (*domain.ExpenseCategory, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	input, err := validateCategoryInput(input)
	if err != nil {
		return nil, err
	}

	category := domain.ExpenseCategory{
		CategoryID:         uuid.NewString(),
		Name:               input.Name,
		DefaultExpenseType: input.DefaultExpenseType,
		DefaultCompanyRef:  input.DefaultCompanyRef,
		AuditFields:        domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		s.logUnexpected(ctx, err, "Failed to save category", slog.String("name", category.Name))
		return nil, err
	}

	s.LogInfo(ctx, "Expense category created",
		slog.String("category_id", category.CategoryID),
		slog.String("name", category.Name))
	return &category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID string) (*domain.ExpenseCategory, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownCategory)
		s.logUnexpected(ctx, err, "Failed to find category", slog.String("category_id", categoryID))
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		return []domain.ExpenseCategory{}, nil
	}
	return categories, nil
}

// UpdateCategory changes the name and defaults. Expenses created earlier keep the values they copied.
func (s *categoryService) UpdateCategory(ctx context.Context, categoryID string, input portssvc.CategoryInput, userID string) (*domain.ExpenseCategory, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	input, err := validateCategoryInput(input)
	if err != nil {
		return nil, err
	}
	category, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.DefaultExpenseType = input.DefaultExpenseType
	category.DefaultCompanyRef = input.DefaultCompanyRef
	category.Touch(userID, s.Now())

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownCategory)
		s.logUnexpected(ctx, err, "Failed to update category", slog.String("category_id", categoryID))
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string, userID string) error {
	if err := requireRef("userID", userID); err != nil {
		return err
	}
	if err := s.categoryRepo.DeleteCategory(ctx, categoryID); err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownCategory)
		s.logUnexpected(ctx, err, "Failed to delete category", slog.String("category_id", categoryID))
		return err
	}
	s.LogInfo(ctx, "Expense category deleted",
		slog.String("category_id", categoryID),
		slog.String("user_id", userID))
	return nil
}
