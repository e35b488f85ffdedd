package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
)

// ExpenseType classifies an expense.
type ExpenseType string

const (
	ExpenseOperations   ExpenseType = "Operations"
	ExpenseAdmin        ExpenseType = "Admin"
	ExpenseCommission   ExpenseType = "Commission"
	ExpenseItemizedCost ExpenseType = "ItemizedCost"
)

// IsValid checks if the type is a known ExpenseType
func (t ExpenseType) IsValid() bool {
	switch t {
	case ExpenseOperations, ExpenseAdmin, ExpenseCommission, ExpenseItemizedCost:
		return true
	}
	return false
}

func (t ExpenseType) String() string {
	return string(t)
}

// ExpenseStatus is the stored payment state of an expense.
type ExpenseStatus string

const (
	ExpenseDraft  ExpenseStatus = "Draft"
	ExpenseUnpaid ExpenseStatus = "Unpaid"
	ExpensePaid   ExpenseStatus = "Paid"
)

// IsValid checks if the status is a known ExpenseStatus
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseDraft, ExpenseUnpaid, ExpensePaid:
		return true
	}
	return false
}

func (s ExpenseStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the expense is paid.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpensePaid
}

// CanEditLines returns true while line items are still mutable.
func (s ExpenseStatus) CanEditLines() bool {
	return s == ExpenseDraft
}

// CanSubmit returns true if the expense can move to Unpaid.
func (s ExpenseStatus) CanSubmit() bool {
	return s == ExpenseDraft
}

// CanApprove returns true if approval stages may still be completed.
func (s ExpenseStatus) CanApprove() bool {
	return s == ExpenseDraft || s == ExpenseUnpaid
}

// ApprovalStage is one step of the expense approval chain.
type ApprovalStage string

const (
	StagePrepared ApprovalStage = "Prepared"
	StageNoted    ApprovalStage = "Noted"
	StageApproved ApprovalStage = "Approved"
)

// ApprovalStages lists the stages in the order they must be completed.
var ApprovalStages = [...]ApprovalStage{StagePrepared, StageNoted, StageApproved}

// IsValid checks if the stage is a known ApprovalStage
func (s ApprovalStage) IsValid() bool {
	return s.index() >= 0
}

func (s ApprovalStage) String() string {
	return string(s)
}

func (s ApprovalStage) index() int {
	switch s {
	case StagePrepared:
		return 0
	case StageNoted:
		return 1
	case StageApproved:
		return 2
	}
	return -1
}

// StepState is whether an approval stage has been signed off.
type StepState string

const (
	StepPending   StepState = "Pending"
	StepCompleted StepState = "Completed"
)

// ApprovalStep is the state of one stage in the chain.
type ApprovalStep struct {
	Stage       ApprovalStage `json:"stage"`
	State       StepState     `json:"state"`
	CompletedBy string        `json:"completedBy,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// ApprovalChain holds the three stages in order. It is a value: Advance returns a new chain.
type ApprovalChain [3]ApprovalStep

// NewApprovalChain returns a chain with every stage Pending.
func NewApprovalChain() ApprovalChain {
	var chain ApprovalChain
	for i, stage := range ApprovalStages {
		chain[i] = ApprovalStep{Stage: stage, State: StepPending}
	}
	return chain
}

// Step returns the state of stage.
func (c ApprovalChain) Step(stage ApprovalStage) ApprovalStep {
	return c[stage.index()]
}

// IsCompleted reports whether stage has been signed off.
func (c ApprovalChain) IsCompleted(stage ApprovalStage) bool {
	idx := stage.index()
	return idx >= 0 && c[idx].State == StepCompleted
}

// Advance completes stage by userRef at the given time. Every earlier stage must
// already be completed. The receiver is never modified.
func (c ApprovalChain) Advance(stage ApprovalStage, by string, at time.Time) (ApprovalChain, error) {
	idx := stage.index()
	if idx < 0 {
		return c, fmt.Errorf("%w: approval stage %q", apperrors.ErrInvalidEnum, stage)
	}
	if by == "" {
		return c, fmt.Errorf("%w: approver", apperrors.ErrMissingReference)
	}
	if c[idx].State == StepCompleted {
		return c, fmt.Errorf("%s: %w", stage, apperrors.ErrStageAlreadyCompleted)
	}
	for i := 0; i < idx; i++ {
		if c[i].State != StepCompleted {
			return c, fmt.Errorf("%s before %s: %w", stage, c[i].Stage, apperrors.ErrOutOfOrderApproval)
		}
	}
	next := c
	completedAt := at
	next[idx] = ApprovalStep{Stage: stage, State: StepCompleted, CompletedBy: by, CompletedAt: &completedAt}
	return next, nil
}

// ExpenseLineItem is one cost line of an expense.
type ExpenseLineItem struct {
	Particular  string `json:"particular"`
	Description string `json:"description"`
	Amount      Money  `json:"amount"`
}

// Expense is a cost incurred, routed through approvals before it is paid.
type Expense struct {
	ExpenseID      string            `json:"expenseID"`
	ExpenseNumber  string            `json:"expenseNumber"`
	ExpenseDate    time.Time         `json:"expenseDate"`
	CategoryID     string            `json:"categoryID"`
	CompanyRef     string            `json:"companyRef"`
	Payee          string            `json:"payee"`
	ExpenseType    ExpenseType       `json:"expenseType"`
	PaymentChannel string            `json:"paymentChannel"`
	BookingRef     *string           `json:"bookingRef,omitempty"`
	Currency       string            `json:"currency"`
	LineItems      []ExpenseLineItem `json:"lineItems"`
	Approvals      ApprovalChain     `json:"approvals"`
	Status         ExpenseStatus     `json:"status"`
	SubmittedAt    *time.Time        `json:"submittedAt,omitempty"`
	PaidAt         *time.Time        `json:"paidAt,omitempty"`
	AuditFields
}

// TotalAmount is the sum of the line items.
func (e Expense) TotalAmount() Money {
	total := Zero(e.Currency)
	for _, line := range e.LineItems {
		if sum, err := total.Add(line.Amount); err == nil {
			total = sum
		}
	}
	return total
}

// ValidateExpenseLines checks every line is a positive amount in the expense currency,
// using the same rule as invoice lines. An empty list is accepted; Submit enforces at
// least one line.
func ValidateExpenseLines(currencyCode string, lines []ExpenseLineItem) error {
	total := Zero(currencyCode)
	for idx, line := range lines {
		if line.Amount.Currency != currencyCode {
			return fmt.Errorf("line %d: %w", idx+1, apperrors.ErrCurrencyMismatch)
		}
		if !line.Amount.IsPositive() {
			return fmt.Errorf("line %d: %w", idx+1, apperrors.ErrEmptyLineItems)
		}
		var err error
		if total, err = total.Add(line.Amount); err != nil {
			return fmt.Errorf("line %d: %w", idx+1, err)
		}
	}
	return nil
}

// ReplaceLines swaps the line items of a Draft expense.
func (e *Expense) ReplaceLines(lines []ExpenseLineItem) error {
	if !e.Status.CanEditLines() {
		return apperrors.ErrAlreadySubmitted
	}
	if err := ValidateExpenseLines(e.Currency, lines); err != nil {
		return err
	}
	e.LineItems = lines
	return nil
}

// Submit moves a Draft expense to Unpaid and freezes its line items.
func (e *Expense) Submit(now time.Time) error {
	if !e.Status.CanSubmit() {
		return apperrors.ErrAlreadySubmitted
	}
	if len(e.LineItems) == 0 {
		return apperrors.ErrEmptyLineItems
	}
	if err := ValidateExpenseLines(e.Currency, e.LineItems); err != nil {
		return err
	}
	e.Status = ExpenseUnpaid
	e.SubmittedAt = &now
	return nil
}

// AdvanceApproval completes one stage of the approval chain.
// On error the chain is left exactly as it was.
func (e *Expense) AdvanceApproval(stage ApprovalStage, by string, now time.Time) error {
	if e.Status == ExpensePaid {
		return apperrors.ErrAlreadyPaid
	}
	next, err := e.Approvals.Advance(stage, by, now)
	if err != nil {
		return err
	}
	e.Approvals = next
	return nil
}

// MarkPaid moves an approved Unpaid expense to Paid. Paid is terminal.
func (e *Expense) MarkPaid(now time.Time) error {
	switch e.Status {
	case ExpensePaid:
		return apperrors.ErrAlreadyPaid
	case ExpenseDraft:
		return apperrors.ErrNotSubmitted
	case ExpenseUnpaid:
		if !e.Approvals.IsCompleted(StageApproved) {
			return apperrors.ErrApprovalIncomplete
		}
		e.Status = ExpensePaid
		e.PaidAt = &now
		return nil
	}
	return fmt.Errorf("%w: expense status %q", apperrors.ErrInvalidEnum, e.Status)
}

// ExpenseFilter narrows expense list queries. Empty fields are ignored.
type ExpenseFilter struct {
	CompanyRef   string
	CategoryID   string
	Status       ExpenseStatus
	ExpenseDates DateRange
	Limit        int
	NextToken    *string
}
