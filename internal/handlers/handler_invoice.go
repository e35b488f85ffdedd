package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/SscSPs/neuron_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles HTTP requests related to invoices.
type invoiceHandler struct {
	invoiceService    portssvc.InvoiceSvcFacade
	allocationService portssvc.AllocationReaderSvc
	defaultCurrency   string
}

// registerInvoiceRoutes registers routes related to invoices.
func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade, allocationService portssvc.AllocationReaderSvc, defaultCurrency string) {
	h := &invoiceHandler{invoiceService: invoiceService, allocationService: allocationService, defaultCurrency: defaultCurrency}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:invoiceID", h.getInvoice)
		invoices.PUT("/:invoiceID/lines", h.updateInvoiceLines)
		invoices.POST("/:invoiceID/post", h.postInvoice)
		invoices.DELETE("/:invoiceID", h.discardInvoice)
		invoices.GET("/:invoiceID/allocations", h.listInvoiceAllocations)
	}
}

// createInvoice godoc
// @Summary Create a draft invoice
// @Description Creates an unnumbered invoice in Draft. Amounts are decimal strings in major units.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Param   Idempotency-Key header string false "Rejects a replay of the same command"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create invoice"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	input, err := req.ToInput(h.defaultCurrency)
	if err != nil {
		respondError(c, err, "Failed to create invoice")
		return
	}

	invoice, err := h.invoiceService.CreateDraft(c.Request.Context(), input, userID)
	if err != nil {
		respondError(c, err, "Failed to create invoice")
		return
	}
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice))
}

// listInvoices godoc
// @Summary List invoices
// @Description Lists invoices newest first, filtered by client, company, derived status and issue date.
// @Tags invoices
// @Produce  json
// @Param   clientRef query string false "Client reference"
// @Param   companyRef query string false "Company reference"
// @Param   status query string false "Derived status" Enums(Draft, Posted, Partial, Paid)
// @Param   from query string false "Issue date from (YYYY-MM-DD)"
// @Param   to query string false "Issue date to (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Failed to list invoices"
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, err, "Failed to list invoices")
		return
	}

	invoices, next, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvoicesResponse(invoices, next))
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{invoiceID} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// updateInvoiceLines godoc
// @Summary Replace the line items of a draft invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Param   lines body dto.UpdateInvoiceLinesRequest true "New line items"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invoice already posted"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/lines [put]
func (h *invoiceHandler) updateInvoiceLines(c *gin.Context) {
	var req dto.UpdateInvoiceLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceID")

	current, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, err, "Failed to update invoice lines")
		return
	}
	lines, err := req.ToLines(current.Currency)
	if err != nil {
		respondError(c, err, "Failed to update invoice lines")
		return
	}

	invoice, err := h.invoiceService.UpdateDraftLines(c.Request.Context(), invoiceID, lines, userID)
	if err != nil {
		respondError(c, err, "Failed to update invoice lines")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// postInvoice godoc
// @Summary Post a draft invoice
// @Description Assigns the next INV number and makes the invoice eligible for allocations.
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Invoice has no valid lines"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invoice already posted"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/post [post]
func (h *invoiceHandler) postInvoice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Post(c.Request.Context(), c.Param("invoiceID"), userID)
	if err != nil {
		respondError(c, err, "Failed to post invoice")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Invoice posted", slog.String("invoice_number", invoice.InvoiceNumber))
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// discardInvoice godoc
// @Summary Discard a draft invoice
// @Tags invoices
// @Param   invoiceID path string true "Invoice ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invoice already posted"
// @Security BearerAuth
// @Router /invoices/{invoiceID} [delete]
func (h *invoiceHandler) discardInvoice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.invoiceService.DiscardDraft(c.Request.Context(), c.Param("invoiceID"), userID); err != nil {
		respondError(c, err, "Failed to discard invoice")
		return
	}
	c.Status(http.StatusNoContent)
}

// listInvoiceAllocations godoc
// @Summary List the allocations applied to an invoice
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {array} dto.AllocationResponse
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/allocations [get]
func (h *invoiceHandler) listInvoiceAllocations(c *gin.Context) {
	allocations, err := h.allocationService.ListInvoiceAllocations(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondError(c, err, "Failed to list invoice allocations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAllocationResponse(allocations))
}
