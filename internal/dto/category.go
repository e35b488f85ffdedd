package dto

import (
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
)

// CategoryRequest defines the editable fields of an expense category.
type CategoryRequest struct {
	Name               string  `json:"name" binding:"required,max=100"`
	DefaultExpenseType string  `json:"defaultExpenseType" binding:"required,oneof=Operations Admin Commission ItemizedCost"`
	DefaultCompanyRef  *string `json:"defaultCompanyRef,omitempty"`
}

// ToInput converts the request.
func (r CategoryRequest) ToInput() portssvc.CategoryInput {
	return portssvc.CategoryInput{
		Name:               r.Name,
		DefaultExpenseType: domain.ExpenseType(r.DefaultExpenseType),
		DefaultCompanyRef:  r.DefaultCompanyRef,
	}
}

// CategoryResponse defines the data returned for an expense category.
type CategoryResponse struct {
	CategoryID         string  `json:"categoryID"`
	Name               string  `json:"name"`
	DefaultExpenseType string  `json:"defaultExpenseType"`
	DefaultCompanyRef  *string `json:"defaultCompanyRef,omitempty"`
	AuditFieldsResponse
}

// ToCategoryResponse converts a domain.ExpenseCategory to CategoryResponse DTO
func ToCategoryResponse(c *domain.ExpenseCategory) CategoryResponse {
	return CategoryResponse{
		CategoryID:          c.CategoryID,
		Name:                c.Name,
		DefaultExpenseType:  c.DefaultExpenseType.String(),
		DefaultCompanyRef:   c.DefaultCompanyRef,
		AuditFieldsResponse: toAuditFieldsResponse(c.AuditFields),
	}
}

// ToListCategoryResponse converts a slice of categories, reusing the single converter.
func ToListCategoryResponse(categories []domain.ExpenseCategory) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i := range categories {
		res[i] = ToCategoryResponse(&categories[i])
	}
	return res
}
