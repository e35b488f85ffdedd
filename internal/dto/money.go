package dto

import (
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyResponse renders an amount in major units, e.g. {"amount":"1250.50","currency":"PHP"}.
type MoneyResponse struct {
	Amount   decimal.Decimal `json:"amount" swaggertype:"string" example:"1250.50"`
	Currency string          `json:"currency" example:"PHP"`
}

// ToMoneyResponse converts a domain.Money to its wire form.
func ToMoneyResponse(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Decimal(), Currency: m.Currency}
}

// toMoney converts a major-unit request amount, naming the offending field on failure.
func toMoney(field string, amount decimal.Decimal, currencyCode string) (domain.Money, error) {
	m, err := domain.ParseMoney(amount, currencyCode)
	if err != nil {
		return domain.Money{}, fmt.Errorf("%s: %w", field, err)
	}
	return m, nil
}

// AuditFieldsResponse is embedded in every record response.
type AuditFieldsResponse struct {
	CreatedAt     string `json:"createdAt"`
	CreatedBy     string `json:"createdBy"`
	LastUpdatedAt string `json:"lastUpdatedAt"`
	LastUpdatedBy string `json:"lastUpdatedBy"`
}

func toAuditFieldsResponse(a domain.AuditFields) AuditFieldsResponse {
	return AuditFieldsResponse{
		CreatedAt:     a.CreatedAt.UTC().Format(timestampLayout),
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt.UTC().Format(timestampLayout),
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
