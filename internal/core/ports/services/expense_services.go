package services

import (
	"context"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

// NewExpenseInput carries the fields of a new expense. ExpenseType and CompanyRef
// fall back to the category defaults when empty.
type NewExpenseInput struct {
	ExpenseDate    time.Time
	CategoryID     string
	CompanyRef     string
	Payee          string
	ExpenseType    domain.ExpenseType
	PaymentChannel string
	BookingRef     *string
	Currency       string
	LineItems      []domain.ExpenseLineItem
}

// ExpenseReaderSvc defines read operations for expenses
type ExpenseReaderSvc interface {
	GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, *string, error)
}

// ExpenseWriterSvc defines the expense approval and payment operations
type ExpenseWriterSvc interface {
	// CreateExpense creates an expense in Draft.
	CreateExpense(ctx context.Context, input NewExpenseInput, userID string) (*domain.Expense, error)

	// UpdateDraftLines replaces the line items of a Draft expense.
	UpdateDraftLines(ctx context.Context, expenseID string, lines []domain.ExpenseLineItem, userID string) (*domain.Expense, error)

	// Submit moves a Draft expense to Unpaid.
	Submit(ctx context.Context, expenseID string, userID string) (*domain.Expense, error)

	// AdvanceApproval completes one approval stage on behalf of approverRef.
	AdvanceApproval(ctx context.Context, expenseID string, stage domain.ApprovalStage, approverRef string) (*domain.Expense, error)

	// MarkPaid moves an approved Unpaid expense to Paid.
	MarkPaid(ctx context.Context, expenseID string, userID string) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
