package models

import "time"

// Expense is the row stored in the expenses table. The approval chain is flattened
// into one pair of columns per stage.
type Expense struct {
	ExpenseID      string     `db:"expense_id"`
	ExpenseNumber  string     `db:"expense_number"`
	ExpenseDate    time.Time  `db:"expense_date"`
	CategoryID     string     `db:"category_id"`
	CompanyRef     string     `db:"company_ref"`
	Payee          string     `db:"payee"`
	ExpenseType    string     `db:"expense_type"`
	PaymentChannel string     `db:"payment_channel"`
	BookingRef     *string    `db:"booking_ref"`
	CurrencyCode   string     `db:"currency_code"`
	Status         string     `db:"status"`
	PreparedBy     *string    `db:"prepared_by"`
	PreparedAt     *time.Time `db:"prepared_at"`
	NotedBy        *string    `db:"noted_by"`
	NotedAt        *time.Time `db:"noted_at"`
	ApprovedBy     *string    `db:"approved_by"`
	ApprovedAt     *time.Time `db:"approved_at"`
	SubmittedAt    *time.Time `db:"submitted_at"`
	PaidAt         *time.Time `db:"paid_at"`
	AuditFields
}

// ExpenseLine is the row stored in the expense_line_items table.
type ExpenseLine struct {
	ExpenseID   string `db:"expense_id"`
	LineNo      int    `db:"line_no"`
	Particular  string `db:"particular"`
	Description string `db:"description"`
	AmountMinor int64  `db:"amount_minor"`
}

// ExpenseCategory is the row stored in the expense_categories table.
type ExpenseCategory struct {
	CategoryID         string  `db:"category_id"`
	Name               string  `db:"name"`
	DefaultExpenseType string  `db:"default_expense_type"`
	DefaultCompanyRef  *string `db:"default_company_ref"`
	AuditFields
}
