package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

type expenseService struct {
	BaseService
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	categoryRepo portsrepo.CategoryReader
	numberer     portssvc.DocumentNumberer
}

// NewExpenseService creates the expense approval tracker.
func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	categoryRepo portsrepo.CategoryReader,
	numberer portssvc.DocumentNumberer,
	options ...ServiceOption,
) portssvc.ExpenseSvcFacade {
	return &expenseService{
		BaseService:  newBaseService(options),
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		numberer:     numberer,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) CreateExpense(ctx context.Context, input portssvc.NewExpenseInput, userID string) (*domain.Expense, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	if err := requireRef("payee", input.Payee); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, input.CategoryID)
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrUnknownCategory)
	}

	// defaults are copied, so later category edits never reach this expense
	expenseType := input.ExpenseType
	if expenseType == "" {
		expenseType = category.DefaultExpenseType
	}
	if !expenseType.IsValid() {
		return nil, fmt.Errorf("%w: expense type %q", apperrors.ErrInvalidEnum, expenseType)
	}
	companyRef := input.CompanyRef
	if companyRef == "" && category.DefaultCompanyRef != nil {
		companyRef = *category.DefaultCompanyRef
	}
	if err := requireRef("companyRef", companyRef); err != nil {
		return nil, err
	}
	currency, err := s.currencyOrDefault(input.Currency)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateExpenseLines(currency, input.LineItems); err != nil {
		return nil, err
	}

	now := s.Now()
	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = now.Truncate(24 * time.Hour)
	}
	number, err := s.numberer.NextNumber(ctx, domain.SeriesExpense, expenseDate)
	if err != nil {
		return nil, err
	}

	expense := domain.Expense{
		ExpenseID:      uuid.NewString(),
		ExpenseNumber:  number,
		ExpenseDate:    expenseDate,
		CategoryID:     category.CategoryID,
		CompanyRef:     companyRef,
		Payee:          input.Payee,
		ExpenseType:    expenseType,
		PaymentChannel: input.PaymentChannel,
		BookingRef:     input.BookingRef,
		Currency:       currency,
		LineItems:      append([]domain.ExpenseLineItem(nil), input.LineItems...),
		Approvals:      domain.NewApprovalChain(),
		Status:         domain.ExpenseDraft,
		AuditFields:    domain.NewAuditFields(userID, now),
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense", slog.String("expense_id", expense.ExpenseID))
		return nil, err
	}

	s.LogInfo(ctx, "Expense created",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("expense_number", expense.ExpenseNumber),
		slog.String("category_id", expense.CategoryID))
	return &expense, nil
}

// update runs a state transition under the expense's row lock.
func (s *expenseService) update(ctx context.Context, expenseID, userID, action string, transition func(e *domain.Expense, now time.Time) error) (*domain.Expense, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	updated, err := s.expenseRepo.UpdateExpense(ctx, expenseID, func(e *domain.Expense) error {
		now := s.Now()
		if err := transition(e, now); err != nil {
			return err
		}
		e.Touch(userID, now)
		return nil
	})
	if err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownExpense)
		s.logUnexpected(ctx, err, "Failed to "+action+" expense", slog.String("expense_id", expenseID))
		return nil, err
	}
	s.LogInfo(ctx, "Expense "+action+" succeeded",
		slog.String("expense_id", expenseID),
		slog.String("status", string(updated.Status)))
	return updated, nil
}

func (s *expenseService) UpdateDraftLines(ctx context.Context, expenseID string, lines []domain.ExpenseLineItem, userID string) (*domain.Expense, error) {
	return s.update(ctx, expenseID, userID, "update lines of", func(e *domain.Expense, _ time.Time) error {
		return e.ReplaceLines(append([]domain.ExpenseLineItem(nil), lines...))
	})
}

func (s *expenseService) Submit(ctx context.Context, expenseID string, userID string) (*domain.Expense, error) {
	return s.update(ctx, expenseID, userID, "submit", func(e *domain.Expense, now time.Time) error {
		return e.Submit(now)
	})
}

// AdvanceApproval signs off one stage. approverRef is recorded on the step and as the updater.
func (s *expenseService) AdvanceApproval(ctx context.Context, expenseID string, stage domain.ApprovalStage, approverRef string) (*domain.Expense, error) {
	return s.update(ctx, expenseID, approverRef, "approve", func(e *domain.Expense, now time.Time) error {
		return e.AdvanceApproval(stage, approverRef, now)
	})
}

func (s *expenseService) MarkPaid(ctx context.Context, expenseID string, userID string) (*domain.Expense, error) {
	return s.update(ctx, expenseID, userID, "pay", func(e *domain.Expense, now time.Time) error {
		return e.MarkPaid(now)
	})
}

func (s *expenseService) GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownExpense)
		s.logUnexpected(ctx, err, "Failed to find expense", slog.String("expense_id", expenseID))
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, *string, error) {
	expenses, next, err := s.expenseRepo.ListExpenses(ctx, filter)
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to list expenses")
		return nil, nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return expenses, next, nil
}
