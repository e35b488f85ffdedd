package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/services"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/SscSPs/neuron_ledger/internal/middleware"
	"github.com/SscSPs/neuron_ledger/internal/platform/config"
	"github.com/SscSPs/neuron_ledger/internal/platform/idempotency"
	"github.com/SscSPs/neuron_ledger/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = dto.RegisterValidators(v)
	}
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := &config.Config{
		IsProduction:    true,
		JWTSecret:       testSecret,
		DefaultCurrency: "PHP",
		IdempotencyTTL:  time.Hour,
	}
	container := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore()))
	idem := idempotency.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = idem.Close() })

	r := gin.New()
	RegisterRoutes(r, cfg, container, idem)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return &testAPI{t: t, router: r, token: token}
}

func (a *testAPI) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// postedInvoice creates and posts an invoice through the API.
func (a *testAPI) postedInvoice(client string, amounts ...string) dto.InvoiceResponse {
	a.t.Helper()
	lines := make([]map[string]string, len(amounts))
	for i, amt := range amounts {
		lines[i] = map[string]string{"description": "trucking", "amount": amt}
	}
	w := a.do(http.MethodPost, "/api/v1/invoices", map[string]any{
		"issueDate":  "2025-10-01",
		"clientRef":  client,
		"companyRef": "company-1",
		"lineItems":  lines,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	draft := decode[dto.InvoiceResponse](a.t, w)

	w = a.do(http.MethodPost, "/api/v1/invoices/"+draft.InvoiceID+"/post", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.InvoiceResponse](a.t, w)
}

func (a *testAPI) collection(client, amount string) dto.CollectionResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/collections", map[string]any{
		"collectionDate": "2025-10-02",
		"clientRef":      client,
		"companyRef":     "company-1",
		"paymentMethod":  "Bank Transfer",
		"amountReceived": amount,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.CollectionResponse](a.t, w)
}

func TestHealthAndAuth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	inv := api.postedInvoice("client-1", "500.00", "350.00")
	assert.Equal(t, "Posted", inv.Status)
	assert.Equal(t, "INV-202510-0001", inv.InvoiceNumber)
	assert.True(t, inv.StatedAmount.Amount.Equal(decimal.RequireFromString("850")))

	w := api.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/post", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_POSTED", decode[dto.ErrorResponse](t, w).Code)

	w = api.do(http.MethodGet, "/api/v1/invoices/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_INVOICE", decode[dto.ErrorResponse](t, w).Code)

	w = api.do(http.MethodGet, "/api/v1/invoices?status=Posted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.ListInvoicesResponse](t, w).Invoices, 1)
}

func TestCreateInvoiceValidation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{
			name: "missing client",
			body: map[string]any{"companyRef": "c", "lineItems": []map[string]string{{"description": "x", "amount": "1"}}},
			code: "INVALID_REQUEST",
		},
		{
			name: "unknown currency",
			body: map[string]any{"clientRef": "a", "companyRef": "c", "currency": "XXXX", "lineItems": []map[string]string{{"description": "x", "amount": "1"}}},
			code: "INVALID_REQUEST",
		},
		{
			name: "too many decimals",
			body: map[string]any{"clientRef": "a", "companyRef": "c", "lineItems": []map[string]string{{"description": "x", "amount": "1.005"}}},
			code: "AMOUNT_PRECISION",
		},
		{
			name: "bad date",
			body: map[string]any{"issueDate": "01/10/2025", "clientRef": "a", "companyRef": "c", "lineItems": []map[string]string{{"description": "x", "amount": "1"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/v1/invoices", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, w).Code)
			}
		})
	}
}

func TestAllocateReturnsWarningsWhenClamped(t *testing.T) {
	api := newTestAPI(t)
	inv := api.postedInvoice("client-1", "850.00")
	col := api.collection("client-1", "400.00")

	w := api.do(http.MethodPost, "/api/v1/collections/"+col.CollectionID+"/allocations", map[string]any{
		"allocations": []map[string]string{{"invoiceID": inv.InvoiceID, "amount": "500.00"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decode[dto.AllocationResultResponse](t, w)
	require.Len(t, result.Warnings, 1)
	assert.True(t, result.Warnings[0].Shortfall.Amount.Equal(decimal.RequireFromString("100")))
	assert.NotEmpty(t, result.Warnings[0].Message)
	assert.Equal(t, "Fully Applied", result.Collection.Status)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, "Partial", result.Invoices[0].Status)
	assert.True(t, result.Invoices[0].Balance.Amount.Equal(decimal.RequireFromString("450")))

	w = api.do(http.MethodGet, "/api/v1/invoices/"+inv.InvoiceID+"/allocations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.AllocationResponse](t, w), 1)

	w = api.do(http.MethodDelete, "/api/v1/collections/"+col.CollectionID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "HAS_ALLOCATIONS", decode[dto.ErrorResponse](t, w).Code)

	w = api.do(http.MethodDelete, "/api/v1/collections/"+col.CollectionID+"/allocations/"+inv.InvoiceID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Unapplied", decode[dto.AllocationResultResponse](t, w).Collection.Status)

	w = api.do(http.MethodGet, "/api/v1/ledger/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.AuditReportResponse](t, w).Clean)
}

func TestAllocateRejectsDraftInvoice(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodPost, "/api/v1/invoices", map[string]any{
		"clientRef":  "client-1",
		"companyRef": "company-1",
		"lineItems":  []map[string]string{{"description": "x", "amount": "100"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decode[dto.InvoiceResponse](t, w)
	col := api.collection("client-1", "100")

	w = api.do(http.MethodPost, "/api/v1/collections/"+col.CollectionID+"/allocations", map[string]any{
		"allocations": []map[string]string{{"invoiceID": draft.InvoiceID, "amount": "100"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVOICE_NOT_POSTED", decode[dto.ErrorResponse](t, w).Code)
}

func TestIdempotencyKeyRejectsReplay(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]any{
		"clientRef":      "client-1",
		"companyRef":     "company-1",
		"paymentMethod":  "Cash",
		"amountReceived": "10",
	}

	w := api.do(http.MethodPost, "/api/v1/collections", body, middleware.IdempotencyKeyHeader, "abc")
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/api/v1/collections", body, middleware.IdempotencyKeyHeader, "abc")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodGet, "/api/v1/collections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.ListCollectionsResponse](t, w).Collections, 1)
}

func TestExpenseApprovalFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/expense-categories", map[string]any{
		"name":               "Fuel",
		"defaultExpenseType": "Operations",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decode[dto.CategoryResponse](t, w)

	w = api.do(http.MethodPost, "/api/v1/expense-categories", map[string]any{
		"name":               "Fuel",
		"defaultExpenseType": "Admin",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"expenseDate": "2025-10-03",
		"categoryID":  category.CategoryID,
		"companyRef":  "company-1",
		"payee":       "Petron",
		"lineItems":   []map[string]any{{"particular": "diesel", "amount": "1200.50"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expense := decode[dto.ExpenseResponse](t, w)
	assert.Equal(t, "Draft", expense.Status)
	path := "/api/v1/expenses/" + expense.ExpenseID

	w = api.do(http.MethodPost, path+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPost, path+"/pay", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "APPROVAL_INCOMPLETE", decode[dto.ErrorResponse](t, w).Code)

	w = api.do(http.MethodPost, path+"/approvals", map[string]string{"stage": "Noted"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "OUT_OF_ORDER_APPROVAL", decode[dto.ErrorResponse](t, w).Code)

	for _, stage := range []string{"Prepared", "Noted", "Approved"} {
		w = api.do(http.MethodPost, path+"/approvals", map[string]string{"stage": stage})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = api.do(http.MethodPost, path+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[dto.ExpenseResponse](t, w)
	assert.Equal(t, "Paid", paid.Status)
	require.Len(t, paid.Approvals, 3)
	assert.Equal(t, "user-1", paid.Approvals[0].CompletedBy)
}
