package domain

// ExpenseCategory is reference data whose defaults are copied onto new expenses.
type ExpenseCategory struct {
	CategoryID         string      `json:"categoryID"`
	Name               string      `json:"name"` // Unique
	DefaultExpenseType ExpenseType `json:"defaultExpenseType"`
	DefaultCompanyRef  *string     `json:"defaultCompanyRef,omitempty"`
	AuditFields
}
