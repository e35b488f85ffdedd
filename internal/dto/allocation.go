package dto

import (
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/SscSPs/neuron_ledger/internal/utils"
	"github.com/shopspring/decimal"
)

// AllocationTargetRequest asks for amount to be applied to one invoice.
type AllocationTargetRequest struct {
	InvoiceID string          `json:"invoiceID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"45000.00"`
}

// AllocateRequest lists the targets in the order they should be applied.
type AllocateRequest struct {
	Allocations []AllocationTargetRequest `json:"allocations" binding:"required,min=1,dive"`
}

// ToTargets converts the request in the collection's currency.
func (r AllocateRequest) ToTargets(currencyCode string) ([]domain.AllocationTarget, error) {
	targets := make([]domain.AllocationTarget, len(r.Allocations))
	for i, a := range r.Allocations {
		amount, err := toMoney(fmt.Sprintf("allocations[%d].amount", i), a.Amount, currencyCode)
		if err != nil {
			return nil, err
		}
		targets[i] = domain.AllocationTarget{InvoiceID: a.InvoiceID, Amount: amount}
	}
	return targets, nil
}

// AllocationResponse defines the data returned for a payment allocation.
type AllocationResponse struct {
	AllocationID  string        `json:"allocationID"`
	CollectionID  string        `json:"collectionID"`
	InvoiceID     string        `json:"invoiceID"`
	AmountApplied MoneyResponse `json:"amountApplied"`
	AuditFieldsResponse
}

// ToAllocationResponse converts a domain.PaymentAllocation.
func ToAllocationResponse(a domain.PaymentAllocation) AllocationResponse {
	return AllocationResponse{
		AllocationID:        a.AllocationID,
		CollectionID:        a.CollectionID,
		InvoiceID:           a.InvoiceID,
		AmountApplied:       ToMoneyResponse(a.AmountApplied),
		AuditFieldsResponse: toAuditFieldsResponse(a.AuditFields),
	}
}

// ToListAllocationResponse converts a list of allocations.
func ToListAllocationResponse(allocations []domain.PaymentAllocation) []AllocationResponse {
	res := make([]AllocationResponse, len(allocations))
	for i, a := range allocations {
		res[i] = ToAllocationResponse(a)
	}
	return res
}

// AllocationWarningResponse reports a target applied for less than requested.
type AllocationWarningResponse struct {
	InvoiceID string        `json:"invoiceID"`
	Requested MoneyResponse `json:"requested"`
	Applied   MoneyResponse `json:"applied"`
	Shortfall MoneyResponse `json:"shortfall"`
	Message   string        `json:"message"`
}

// AllocationResultResponse is the committed state after an engine call.
type AllocationResultResponse struct {
	Collection  CollectionResponse          `json:"collection"`
	Invoices    []InvoiceResponse           `json:"invoices"`
	Allocations []AllocationResponse        `json:"allocations"`
	Warnings    []AllocationWarningResponse `json:"warnings"`
}

// ToAllocationResultResponse converts a domain.AllocationResult.
func ToAllocationResultResponse(r *domain.AllocationResult) AllocationResultResponse {
	res := AllocationResultResponse{
		Collection:  ToCollectionResponse(&r.Collection),
		Invoices:    make([]InvoiceResponse, len(r.Invoices)),
		Allocations: ToListAllocationResponse(r.Allocations),
		Warnings:    make([]AllocationWarningResponse, len(r.Warnings)),
	}
	for i := range r.Invoices {
		res.Invoices[i] = ToInvoiceResponse(&r.Invoices[i])
	}
	for i, w := range r.Warnings {
		res.Warnings[i] = AllocationWarningResponse{
			InvoiceID: w.InvoiceID,
			Requested: ToMoneyResponse(w.Requested),
			Applied:   ToMoneyResponse(w.Applied),
			Shortfall: ToMoneyResponse(w.Shortfall),
			Message:   utils.FormatShortfallMessage(w),
		}
	}
	return res
}
