package mapping

import (
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/SscSPs/neuron_ledger/internal/models"
)

// ToModelExpense converts a domain Expense to its row and line rows.
func ToModelExpense(d domain.Expense) (models.Expense, []models.ExpenseLine) {
	row := models.Expense{
		ExpenseID:      d.ExpenseID,
		ExpenseNumber:  d.ExpenseNumber,
		ExpenseDate:    d.ExpenseDate,
		CategoryID:     d.CategoryID,
		CompanyRef:     d.CompanyRef,
		Payee:          d.Payee,
		ExpenseType:    string(d.ExpenseType),
		PaymentChannel: d.PaymentChannel,
		BookingRef:     d.BookingRef,
		CurrencyCode:   d.Currency,
		Status:         string(d.Status),
		SubmittedAt:    d.SubmittedAt,
		PaidAt:         d.PaidAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	row.PreparedBy, row.PreparedAt = stepColumns(d.Approvals.Step(domain.StagePrepared))
	row.NotedBy, row.NotedAt = stepColumns(d.Approvals.Step(domain.StageNoted))
	row.ApprovedBy, row.ApprovedAt = stepColumns(d.Approvals.Step(domain.StageApproved))

	lines := make([]models.ExpenseLine, len(d.LineItems))
	for i, li := range d.LineItems {
		lines[i] = models.ExpenseLine{
			ExpenseID:   d.ExpenseID,
			LineNo:      i + 1,
			Particular:  li.Particular,
			Description: li.Description,
			AmountMinor: li.Amount.Minor,
		}
	}
	return row, lines
}

// ToDomainExpense converts an expense row and its line rows (ordered by line_no) to a domain Expense.
func ToDomainExpense(m models.Expense, lines []models.ExpenseLine) domain.Expense {
	d := domain.Expense{
		ExpenseID:      m.ExpenseID,
		ExpenseNumber:  m.ExpenseNumber,
		ExpenseDate:    m.ExpenseDate,
		CategoryID:     m.CategoryID,
		CompanyRef:     m.CompanyRef,
		Payee:          m.Payee,
		ExpenseType:    domain.ExpenseType(m.ExpenseType),
		PaymentChannel: m.PaymentChannel,
		BookingRef:     m.BookingRef,
		Currency:       m.CurrencyCode,
		LineItems:      make([]domain.ExpenseLineItem, len(lines)),
		Status:         domain.ExpenseStatus(m.Status),
		SubmittedAt:    m.SubmittedAt,
		PaidAt:         m.PaidAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	d.Approvals = domain.ApprovalChain{
		stepFromColumns(domain.StagePrepared, m.PreparedBy, m.PreparedAt),
		stepFromColumns(domain.StageNoted, m.NotedBy, m.NotedAt),
		stepFromColumns(domain.StageApproved, m.ApprovedBy, m.ApprovedAt),
	}
	for i, line := range lines {
		d.LineItems[i] = domain.ExpenseLineItem{
			Particular:  line.Particular,
			Description: line.Description,
			Amount:      domain.NewMoney(line.AmountMinor, m.CurrencyCode),
		}
	}
	return d
}

func stepColumns(step domain.ApprovalStep) (*string, *time.Time) {
	if step.State != domain.StepCompleted {
		return nil, nil
	}
	by := step.CompletedBy
	return &by, step.CompletedAt
}

func stepFromColumns(stage domain.ApprovalStage, by *string, at *time.Time) domain.ApprovalStep {
	if by == nil || at == nil {
		return domain.ApprovalStep{Stage: stage, State: domain.StepPending}
	}
	completedAt := *at
	return domain.ApprovalStep{Stage: stage, State: domain.StepCompleted, CompletedBy: *by, CompletedAt: &completedAt}
}

// ToModelCategory converts a domain ExpenseCategory to a model ExpenseCategory
func ToModelCategory(d domain.ExpenseCategory) models.ExpenseCategory {
	return models.ExpenseCategory{
		CategoryID:         d.CategoryID,
		Name:               d.Name,
		DefaultExpenseType: string(d.DefaultExpenseType),
		DefaultCompanyRef:  d.DefaultCompanyRef,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategory converts a model ExpenseCategory to a domain ExpenseCategory
func ToDomainCategory(m models.ExpenseCategory) domain.ExpenseCategory {
	return domain.ExpenseCategory{
		CategoryID:         m.CategoryID,
		Name:               m.Name,
		DefaultExpenseType: domain.ExpenseType(m.DefaultExpenseType),
		DefaultCompanyRef:  m.DefaultCompanyRef,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}
