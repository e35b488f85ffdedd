package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoiceRequest_ToInput(t *testing.T) {
	var req dto.CreateInvoiceRequest
	body := `{"issueDate":"2025-10-01","clientRef":"c1","companyRef":"co1",
		"lineItems":[{"description":"freight","amount":"1250.50"},{"description":"fuel","amount":99}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	input, err := req.ToInput("PHP")
	require.NoError(t, err)

	assert.Equal(t, "PHP", input.Currency)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), input.IssueDate)
	require.Len(t, input.LineItems, 2)
	assert.Equal(t, domain.NewMoney(125050, "PHP"), input.LineItems[0].Amount)
	assert.Equal(t, domain.NewMoney(9900, "PHP"), input.LineItems[1].Amount)
}

func TestCreateInvoiceRequest_Rejections(t *testing.T) {
	req := dto.CreateInvoiceRequest{
		IssueDate: "01/10/2025",
		LineItems: []dto.InvoiceLineRequest{{Description: "x", Amount: decimal.RequireFromString("1")}},
	}
	_, err := req.ToInput("PHP")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	req.IssueDate = ""
	req.LineItems[0].Amount = decimal.RequireFromString("1.005")
	_, err = req.ToInput("PHP")
	assert.ErrorIs(t, err, apperrors.ErrAmountPrecision)
	assert.Contains(t, err.Error(), "lineItems[0].amount")
}

func TestAllocateRequest_ToTargets(t *testing.T) {
	req := dto.AllocateRequest{Allocations: []dto.AllocationTargetRequest{
		{InvoiceID: "a", Amount: decimal.RequireFromString("45000")},
		{InvoiceID: "b", Amount: decimal.RequireFromString("15000.25")},
	}}
	targets, err := req.ToTargets("PHP")
	require.NoError(t, err)
	assert.Equal(t, []domain.AllocationTarget{
		{InvoiceID: "a", Amount: domain.NewMoney(4500000, "PHP")},
		{InvoiceID: "b", Amount: domain.NewMoney(1500025, "PHP")},
	}, targets)
}

func TestCurrencyValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, dto.RegisterValidators(v))

	type payload struct {
		Currency string `validate:"omitempty,currency"`
	}
	assert.NoError(t, v.Struct(payload{Currency: "PHP"}))
	assert.NoError(t, v.Struct(payload{}))
	assert.Error(t, v.Struct(payload{Currency: "PESO"}))
}

func TestToAllocationResultResponse(t *testing.T) {
	result := &domain.AllocationResult{
		Collection: domain.Collection{CollectionID: "col", AmountReceived: domain.NewMoney(5000000, "PHP"), Applied: domain.NewMoney(5000000, "PHP")},
		Warnings: []domain.PartialAllocationWarning{{
			InvoiceID: "b",
			Requested: domain.NewMoney(1500000, "PHP"),
			Applied:   domain.NewMoney(500000, "PHP"),
			Shortfall: domain.NewMoney(1000000, "PHP"),
		}},
	}

	res := dto.ToAllocationResultResponse(result)

	assert.Equal(t, "Fully Applied", res.Collection.Status)
	assert.True(t, decimal.Zero.Equal(res.Collection.UnappliedBalance.Amount))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "10000", res.Warnings[0].Shortfall.Amount.String())
	assert.Contains(t, res.Warnings[0].Message, "invoice b")
	assert.NotNil(t, res.Invoices)
	assert.NotNil(t, res.Allocations)
}
