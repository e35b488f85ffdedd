package handlers

import (
	"net/http"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// expenseHandler handles HTTP requests related to expenses and their approvals.
type expenseHandler struct {
	expenseService  portssvc.ExpenseSvcFacade
	defaultCurrency string
}

// registerExpenseRoutes registers routes related to expenses.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, defaultCurrency string) {
	h := &expenseHandler{expenseService: expenseService, defaultCurrency: defaultCurrency}

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expenseID", h.getExpense)
		expenses.PUT("/:expenseID/lines", h.updateExpenseLines)
		expenses.POST("/:expenseID/submit", h.submitExpense)
		expenses.POST("/:expenseID/approvals", h.advanceApproval)
		expenses.POST("/:expenseID/pay", h.markPaid)
	}
}

// createExpense godoc
// @Summary Create a draft expense
// @Description Creates an expense in Draft with every approval stage Pending and assigns the next EXP number.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Param   Idempotency-Key header string false "Rejects a replay of the same command"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Category not found"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	var req dto.CreateExpenseRequest
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
		respondError(c, err, "Failed to create expense")
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), input, userID)
	if err != nil {
		respondError(c, err, "Failed to create expense")
		return
	}
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses
// @Tags expenses
// @Produce  json
// @Param   companyRef query string false "Company reference"
// @Param   categoryID query string false "Category ID"
// @Param   status query string false "Status" Enums(Draft, Unpaid, Paid)
// @Param   from query string false "Expense date from (YYYY-MM-DD)"
// @Param   to query string false "Expense date to (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, err, "Failed to list expenses")
		return
	}

	expenses, next, err := h.expenseService.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(expenses, next))
}

// getExpense godoc
// @Summary Get an expense
// @Tags expenses
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} dto.ErrorResponse "Expense not found"
// @Security BearerAuth
// @Router /expenses/{expenseID} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("expenseID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve expense")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// updateExpenseLines godoc
// @Summary Replace the line items of a draft expense
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Param   lines body dto.UpdateExpenseLinesRequest true "New line items"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} dto.ErrorResponse "Expense not found"
// @Failure 409 {object} dto.ErrorResponse "Expense already submitted"
// @Security BearerAuth
// @Router /expenses/{expenseID}/lines [put]
func (h *expenseHandler) updateExpenseLines(c *gin.Context) {
	var req dto.UpdateExpenseLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	expenseID := c.Param("expenseID")

	current, err := h.expenseService.GetExpense(c.Request.Context(), expenseID)
	if err != nil {
		respondError(c, err, "Failed to update expense lines")
		return
	}
	lines, err := req.ToLines(current.Currency)
	if err != nil {
		respondError(c, err, "Failed to update expense lines")
		return
	}

	expense, err := h.expenseService.UpdateDraftLines(c.Request.Context(), expenseID, lines, userID)
	if err != nil {
		respondError(c, err, "Failed to update expense lines")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// submitExpense godoc
// @Summary Submit a draft expense
// @Description Moves the expense to Unpaid and freezes its line items.
// @Tags expenses
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse "Expense has no lines"
// @Failure 409 {object} dto.ErrorResponse "Expense already submitted"
// @Security BearerAuth
// @Router /expenses/{expenseID}/submit [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.Submit(c.Request.Context(), c.Param("expenseID"), userID)
	if err != nil {
		respondError(c, err, "Failed to submit expense")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// advanceApproval godoc
// @Summary Complete an approval stage
// @Description Stages complete in order: Prepared, Noted, Approved.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Param   approval body dto.AdvanceApprovalRequest true "Stage to complete"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 409 {object} dto.ErrorResponse "Out of order or already completed"
// @Security BearerAuth
// @Router /expenses/{expenseID}/approvals [post]
func (h *expenseHandler) advanceApproval(c *gin.Context) {
	var req dto.AdvanceApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	approver := req.ApproverRef
	if approver == "" {
		approver = userID
	}

	expense, err := h.expenseService.AdvanceApproval(c.Request.Context(), c.Param("expenseID"), domain.ApprovalStage(req.Stage), approver)
	if err != nil {
		respondError(c, err, "Failed to advance approval")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// markPaid godoc
// @Summary Mark an expense as paid
// @Description Requires the Approved stage to be completed. Paid is terminal.
// @Tags expenses
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 409 {object} dto.ErrorResponse "Approval incomplete or already paid"
// @Security BearerAuth
// @Router /expenses/{expenseID}/pay [post]
func (h *expenseHandler) markPaid(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.MarkPaid(c.Request.Context(), c.Param("expenseID"), userID)
	if err != nil {
		respondError(c, err, "Failed to mark expense paid")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}
