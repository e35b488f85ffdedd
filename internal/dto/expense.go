package dto

import (
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ExpenseLineRequest is one cost line in major units.
type ExpenseLineRequest struct {
	Particular  string          `json:"particular" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"1500.00"`
}

// CreateExpenseRequest defines the data needed to create a draft expense.
// ExpenseType and CompanyRef default to the category's values.
type CreateExpenseRequest struct {
	ExpenseDate    string               `json:"expenseDate" example:"2025-10-01"`
	CategoryID     string               `json:"categoryID" binding:"required"`
	CompanyRef     string               `json:"companyRef"`
	Payee          string               `json:"payee" binding:"required"`
	ExpenseType    string               `json:"expenseType" enums:"Operations,Admin,Commission,ItemizedCost"`
	PaymentChannel string               `json:"paymentChannel"`
	BookingRef     *string              `json:"bookingRef,omitempty"`
	Currency       string               `json:"currency" binding:"omitempty,currency" example:"PHP"`
	LineItems      []ExpenseLineRequest `json:"lineItems" binding:"dive"`
}

// UpdateExpenseLinesRequest replaces the line items of a draft expense.
type UpdateExpenseLinesRequest struct {
	LineItems []ExpenseLineRequest `json:"lineItems" binding:"required,dive"`
}

// AdvanceApprovalRequest signs off one approval stage. ApproverRef defaults to the caller.
type AdvanceApprovalRequest struct {
	Stage       string `json:"stage" binding:"required,oneof=Prepared Noted Approved"`
	ApproverRef string `json:"approverRef"`
}

func toExpenseLines(lines []ExpenseLineRequest, currencyCode string) ([]domain.ExpenseLineItem, error) {
	out := make([]domain.ExpenseLineItem, len(lines))
	for i, line := range lines {
		amount, err := toMoney(fmt.Sprintf("lineItems[%d].amount", i), line.Amount, currencyCode)
		if err != nil {
			return nil, err
		}
		out[i] = domain.ExpenseLineItem{Particular: line.Particular, Description: line.Description, Amount: amount}
	}
	return out, nil
}

// ToInput converts the request, scaling amounts in defaultCurrency when the request names none.
func (r CreateExpenseRequest) ToInput(defaultCurrency string) (portssvc.NewExpenseInput, error) {
	currencyCode := r.Currency
	if currencyCode == "" {
		currencyCode = defaultCurrency
	}
	expenseDate, err := parseDate(r.ExpenseDate)
	if err != nil {
		return portssvc.NewExpenseInput{}, fmt.Errorf("%w: expenseDate must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	lines, err := toExpenseLines(r.LineItems, currencyCode)
	if err != nil {
		return portssvc.NewExpenseInput{}, err
	}
	return portssvc.NewExpenseInput{
		ExpenseDate:    expenseDate,
		CategoryID:     r.CategoryID,
		CompanyRef:     r.CompanyRef,
		Payee:          r.Payee,
		ExpenseType:    domain.ExpenseType(r.ExpenseType),
		PaymentChannel: r.PaymentChannel,
		BookingRef:     r.BookingRef,
		Currency:       currencyCode,
		LineItems:      lines,
	}, nil
}

// ToLines converts the request lines in the expense's currency.
func (r UpdateExpenseLinesRequest) ToLines(currencyCode string) ([]domain.ExpenseLineItem, error) {
	return toExpenseLines(r.LineItems, currencyCode)
}

// ListExpensesParams defines the query parameters for listing expenses.
type ListExpensesParams struct {
	CompanyRef string  `form:"companyRef"`
	CategoryID string  `form:"categoryID"`
	Status     string  `form:"status" binding:"omitempty,oneof=Draft Unpaid Paid"`
	From       string  `form:"from"`
	To         string  `form:"to"`
	Limit      int     `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken  *string `form:"nextToken"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListExpensesParams) ToFilter() (domain.ExpenseFilter, error) {
	dates, err := dateRange(p.From, p.To)
	if err != nil {
		return domain.ExpenseFilter{}, fmt.Errorf("%w: from/to must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return domain.ExpenseFilter{
		CompanyRef:   p.CompanyRef,
		CategoryID:   p.CategoryID,
		Status:       domain.ExpenseStatus(p.Status),
		ExpenseDates: dates,
		Limit:        p.Limit,
		NextToken:    p.NextToken,
	}, nil
}

// ExpenseLineResponse is one cost line.
type ExpenseLineResponse struct {
	Particular  string        `json:"particular"`
	Description string        `json:"description"`
	Amount      MoneyResponse `json:"amount"`
}

// ApprovalStepResponse is the state of one approval stage.
type ApprovalStepResponse struct {
	Stage       string  `json:"stage" enums:"Prepared,Noted,Approved"`
	State       string  `json:"state" enums:"Pending,Completed"`
	CompletedBy string  `json:"completedBy,omitempty"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID      string                 `json:"expenseID"`
	ExpenseNumber  string                 `json:"expenseNumber"`
	ExpenseDate    string                 `json:"expenseDate"`
	CategoryID     string                 `json:"categoryID"`
	CompanyRef     string                 `json:"companyRef"`
	Payee          string                 `json:"payee"`
	ExpenseType    string                 `json:"expenseType"`
	PaymentChannel string                 `json:"paymentChannel,omitempty"`
	BookingRef     *string                `json:"bookingRef,omitempty"`
	Currency       string                 `json:"currency"`
	LineItems      []ExpenseLineResponse  `json:"lineItems"`
	TotalAmount    MoneyResponse          `json:"totalAmount"`
	Approvals      []ApprovalStepResponse `json:"approvals"`
	Status         string                 `json:"status" enums:"Draft,Unpaid,Paid"`
	SubmittedAt    *string                `json:"submittedAt,omitempty"`
	PaidAt         *string                `json:"paidAt,omitempty"`
	AuditFieldsResponse
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	lines := make([]ExpenseLineResponse, len(e.LineItems))
	for i, line := range e.LineItems {
		lines[i] = ExpenseLineResponse{Particular: line.Particular, Description: line.Description, Amount: ToMoneyResponse(line.Amount)}
	}
	approvals := make([]ApprovalStepResponse, len(e.Approvals))
	for i, step := range e.Approvals {
		approvals[i] = ApprovalStepResponse{
			Stage:       step.Stage.String(),
			State:       string(step.State),
			CompletedBy: step.CompletedBy,
			CompletedAt: formatTimePtr(step.CompletedAt),
		}
	}
	return ExpenseResponse{
		ExpenseID:           e.ExpenseID,
		ExpenseNumber:       e.ExpenseNumber,
		ExpenseDate:         formatDate(e.ExpenseDate),
		CategoryID:          e.CategoryID,
		CompanyRef:          e.CompanyRef,
		Payee:               e.Payee,
		ExpenseType:         e.ExpenseType.String(),
		PaymentChannel:      e.PaymentChannel,
		BookingRef:          e.BookingRef,
		Currency:            e.Currency,
		LineItems:           lines,
		TotalAmount:         ToMoneyResponse(e.TotalAmount()),
		Approvals:           approvals,
		Status:              e.Status.String(),
		SubmittedAt:         formatTimePtr(e.SubmittedAt),
		PaidAt:              formatTimePtr(e.PaidAt),
		AuditFieldsResponse: toAuditFieldsResponse(e.AuditFields),
	}
}

// ListExpensesResponse is one page of expenses.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListExpensesResponse converts a page of expenses.
func ToListExpensesResponse(expenses []domain.Expense, next *string) ListExpensesResponse {
	res := ListExpensesResponse{Expenses: make([]ExpenseResponse, len(expenses)), NextToken: next}
	for i := range expenses {
		res.Expenses[i] = ToExpenseResponse(&expenses[i])
	}
	return res
}
