package dto

import (
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one billed line in major units.
type InvoiceLineRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"1250.00"`
}

// CreateInvoiceRequest defines the data needed to create a draft invoice.
type CreateInvoiceRequest struct {
	IssueDate  string               `json:"issueDate" example:"2025-10-01"` // YYYY-MM-DD, defaults to today
	ClientRef  string               `json:"clientRef" binding:"required"`
	CompanyRef string               `json:"companyRef" binding:"required"`
	BookingRef *string              `json:"bookingRef,omitempty"`
	Currency   string               `json:"currency" binding:"omitempty,currency" example:"PHP"`
	LineItems  []InvoiceLineRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// UpdateInvoiceLinesRequest replaces the line items of a draft invoice.
type UpdateInvoiceLinesRequest struct {
	LineItems []InvoiceLineRequest `json:"lineItems" binding:"required,min=1,dive"`
}

func toInvoiceLines(lines []InvoiceLineRequest, currencyCode string) ([]domain.InvoiceLineItem, error) {
	out := make([]domain.InvoiceLineItem, len(lines))
	for i, line := range lines {
		amount, err := toMoney(fmt.Sprintf("lineItems[%d].amount", i), line.Amount, currencyCode)
		if err != nil {
			return nil, err
		}
		out[i] = domain.InvoiceLineItem{Description: line.Description, Amount: amount}
	}
	return out, nil
}

// ToInput converts the request, scaling amounts in currencyCode when the request names none.
func (r CreateInvoiceRequest) ToInput(defaultCurrency string) (portssvc.NewInvoiceInput, error) {
	currencyCode := r.Currency
	if currencyCode == "" {
		currencyCode = defaultCurrency
	}
	issueDate, err := parseDate(r.IssueDate)
	if err != nil {
		return portssvc.NewInvoiceInput{}, fmt.Errorf("%w: issueDate must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	lines, err := toInvoiceLines(r.LineItems, currencyCode)
	if err != nil {
		return portssvc.NewInvoiceInput{}, err
	}
	return portssvc.NewInvoiceInput{
		IssueDate:  issueDate,
		ClientRef:  r.ClientRef,
		CompanyRef: r.CompanyRef,
		BookingRef: r.BookingRef,
		Currency:   currencyCode,
		LineItems:  lines,
	}, nil
}

// ToLines converts the request lines in the invoice's currency.
func (r UpdateInvoiceLinesRequest) ToLines(currencyCode string) ([]domain.InvoiceLineItem, error) {
	return toInvoiceLines(r.LineItems, currencyCode)
}

// ListInvoicesParams defines the query parameters for listing invoices.
type ListInvoicesParams struct {
	ClientRef  string  `form:"clientRef"`
	CompanyRef string  `form:"companyRef"`
	Status     string  `form:"status" binding:"omitempty,oneof=Draft Posted Partial Paid"`
	From       string  `form:"from"`
	To         string  `form:"to"`
	Limit      int     `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken  *string `form:"nextToken"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListInvoicesParams) ToFilter() (domain.InvoiceFilter, error) {
	dates, err := dateRange(p.From, p.To)
	if err != nil {
		return domain.InvoiceFilter{}, fmt.Errorf("%w: from/to must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return domain.InvoiceFilter{
		ClientRef:  p.ClientRef,
		CompanyRef: p.CompanyRef,
		Status:     domain.InvoiceStatus(p.Status),
		IssueDates: dates,
		Limit:      p.Limit,
		NextToken:  p.NextToken,
	}, nil
}

// InvoiceLineResponse is one billed line.
type InvoiceLineResponse struct {
	Description string        `json:"description"`
	Amount      MoneyResponse `json:"amount"`
}

// InvoiceResponse defines the data returned for an invoice. Status and the
// amounts are derived on every read.
type InvoiceResponse struct {
	InvoiceID     string                `json:"invoiceID"`
	InvoiceNumber string                `json:"invoiceNumber,omitempty"`
	IssueDate     string                `json:"issueDate"`
	ClientRef     string                `json:"clientRef"`
	CompanyRef    string                `json:"companyRef"`
	BookingRef    *string               `json:"bookingRef,omitempty"`
	Currency      string                `json:"currency"`
	LineItems     []InvoiceLineResponse `json:"lineItems"`
	StatedAmount  MoneyResponse         `json:"statedAmount"`
	Collected     MoneyResponse         `json:"collectedAmount"`
	Balance       MoneyResponse         `json:"balance"`
	Status        string                `json:"status" enums:"Draft,Posted,Partial,Paid"`
	PostedAt      *string               `json:"postedAt,omitempty"`
	AuditFieldsResponse
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse DTO
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.LineItems))
	for i, line := range inv.LineItems {
		lines[i] = InvoiceLineResponse{Description: line.Description, Amount: ToMoneyResponse(line.Amount)}
	}
	return InvoiceResponse{
		InvoiceID:           inv.InvoiceID,
		InvoiceNumber:       inv.InvoiceNumber,
		IssueDate:           formatDate(inv.IssueDate),
		ClientRef:           inv.ClientRef,
		CompanyRef:          inv.CompanyRef,
		BookingRef:          inv.BookingRef,
		Currency:            inv.Currency,
		LineItems:           lines,
		StatedAmount:        ToMoneyResponse(inv.StatedAmount()),
		Collected:           ToMoneyResponse(inv.CollectedAmount()),
		Balance:             ToMoneyResponse(inv.Balance()),
		Status:              inv.Status().String(),
		PostedAt:            formatTimePtr(inv.PostedAt),
		AuditFieldsResponse: toAuditFieldsResponse(inv.AuditFields),
	}
}

// ListInvoicesResponse is one page of invoices.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListInvoicesResponse converts a page of invoices.
func ToListInvoicesResponse(invoices []domain.Invoice, next *string) ListInvoicesResponse {
	res := ListInvoicesResponse{Invoices: make([]InvoiceResponse, len(invoices)), NextToken: next}
	for i := range invoices {
		res.Invoices[i] = ToInvoiceResponse(&invoices[i])
	}
	return res
}
