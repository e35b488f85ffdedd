package dto

import (
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// CreateCollectionRequest defines the data needed to record a received payment.
type CreateCollectionRequest struct {
	CollectionDate  string          `json:"collectionDate" example:"2025-10-01"` // YYYY-MM-DD, defaults to today
	ClientRef       string          `json:"clientRef" binding:"required"`
	CompanyRef      string          `json:"companyRef" binding:"required"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required" enums:"Cash,Check,Bank Transfer,Online Transfer,Credit Card,Other"`
	ReferenceNumber *string         `json:"referenceNumber,omitempty"`
	AmountReceived  decimal.Decimal `json:"amountReceived" swaggertype:"string" example:"50000.00"`
	Currency        string          `json:"currency" binding:"omitempty,currency" example:"PHP"`
}

// ToInput converts the request, scaling the amount in defaultCurrency when the request names none.
func (r CreateCollectionRequest) ToInput(defaultCurrency string) (portssvc.NewCollectionInput, error) {
	currencyCode := r.Currency
	if currencyCode == "" {
		currencyCode = defaultCurrency
	}
	collectionDate, err := parseDate(r.CollectionDate)
	if err != nil {
		return portssvc.NewCollectionInput{}, fmt.Errorf("%w: collectionDate must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	received, err := toMoney("amountReceived", r.AmountReceived, currencyCode)
	if err != nil {
		return portssvc.NewCollectionInput{}, err
	}
	return portssvc.NewCollectionInput{
		CollectionDate:  collectionDate,
		ClientRef:       r.ClientRef,
		CompanyRef:      r.CompanyRef,
		PaymentMethod:   domain.PaymentMethod(r.PaymentMethod),
		ReferenceNumber: r.ReferenceNumber,
		AmountReceived:  received,
	}, nil
}

// ListCollectionsParams defines the query parameters for listing collections.
type ListCollectionsParams struct {
	ClientRef  string  `form:"clientRef"`
	CompanyRef string  `form:"companyRef"`
	Status     string  `form:"status"`
	From       string  `form:"from"`
	To         string  `form:"to"`
	Limit      int     `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken  *string `form:"nextToken"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListCollectionsParams) ToFilter() (domain.CollectionFilter, error) {
	dates, err := dateRange(p.From, p.To)
	if err != nil {
		return domain.CollectionFilter{}, fmt.Errorf("%w: from/to must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return domain.CollectionFilter{
		ClientRef:       p.ClientRef,
		CompanyRef:      p.CompanyRef,
		Status:          domain.CollectionStatus(p.Status),
		CollectionDates: dates,
		Limit:           p.Limit,
		NextToken:       p.NextToken,
	}, nil
}

// CollectionResponse defines the data returned for a collection.
type CollectionResponse struct {
	CollectionID     string        `json:"collectionID"`
	ReceiptNumber    string        `json:"receiptNumber"`
	CollectionDate   string        `json:"collectionDate"`
	ClientRef        string        `json:"clientRef"`
	CompanyRef       string        `json:"companyRef"`
	PaymentMethod    string        `json:"paymentMethod"`
	ReferenceNumber  *string       `json:"referenceNumber,omitempty"`
	AmountReceived   MoneyResponse `json:"amountReceived"`
	AppliedAmount    MoneyResponse `json:"appliedAmount"`
	UnappliedBalance MoneyResponse `json:"unappliedBalance"`
	Status           string        `json:"status" enums:"Unapplied,Partially Applied,Fully Applied"`
	AuditFieldsResponse
}

// ToCollectionResponse converts a domain.Collection to CollectionResponse DTO
func ToCollectionResponse(c *domain.Collection) CollectionResponse {
	return CollectionResponse{
		CollectionID:        c.CollectionID,
		ReceiptNumber:       c.ReceiptNumber,
		CollectionDate:      formatDate(c.CollectionDate),
		ClientRef:           c.ClientRef,
		CompanyRef:          c.CompanyRef,
		PaymentMethod:       c.PaymentMethod.String(),
		ReferenceNumber:     c.ReferenceNumber,
		AmountReceived:      ToMoneyResponse(c.AmountReceived),
		AppliedAmount:       ToMoneyResponse(c.AppliedAmount()),
		UnappliedBalance:    ToMoneyResponse(c.UnappliedBalance()),
		Status:              string(c.Status()),
		AuditFieldsResponse: toAuditFieldsResponse(c.AuditFields),
	}
}

// ListCollectionsResponse is one page of collections.
type ListCollectionsResponse struct {
	Collections []CollectionResponse `json:"collections"`
	NextToken   *string              `json:"nextToken,omitempty"`
}

// ToListCollectionsResponse converts a page of collections.
func ToListCollectionsResponse(collections []domain.Collection, next *string) ListCollectionsResponse {
	res := ListCollectionsResponse{Collections: make([]CollectionResponse, len(collections)), NextToken: next}
	for i := range collections {
		res.Collections[i] = ToCollectionResponse(&collections[i])
	}
	return res
}
