package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/SscSPs/neuron_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.LedgerAuditSvc
}

func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.LedgerAuditSvc) {
	h := &auditHandler{auditService: auditService}
	rg.GET("/ledger/audit", h.auditLedger)
}

// auditLedger godoc
// @Summary Audit the receivables ledger
// @Description Recomputes every invoice's collected amount and every collection's applied amount
// @Description from allocation rows and reports records whose stored totals disagree.
// @Tags ledger
// @Produce  json
// @Success 200 {object} dto.AuditReportResponse
// @Failure 500 {object} dto.ErrorResponse "Failed to audit ledger"
// @Security BearerAuth
// @Router /ledger/audit [get]
func (h *auditHandler) auditLedger(c *gin.Context) {
	report, err := h.auditService.AuditLedger(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to audit ledger")
		return
	}
	if !report.Clean() {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Ledger drift detected", slog.Int("drifts", len(report.Drifts)))
	}
	c.JSON(http.StatusOK, dto.ToAuditReportResponse(report))
}
