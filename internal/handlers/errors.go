package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/SscSPs/neuron_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusFor maps an error's kind to its HTTP status.
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.ErrValidation:
		return http.StatusBadRequest
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrState, apperrors.ErrDuplicate:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error","code"}. Internal errors are logged and their
// detail is replaced by failMsg.
func respondError(c *gin.Context, err error, failMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(failMsg, slog.String("error", err.Error()))
		body := dto.ErrorResponse{Error: failMsg}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			body.Code = appErr.Code
		}
		c.JSON(status, body)
		return
	}
	logger.Warn(failMsg, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, dto.ErrorResponse{Error: err.Error(), Code: apperrors.CodeOf(err)})
}

// bindError reports a request that failed JSON or query binding.
func bindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error(), Code: "INVALID_REQUEST"})
}

// requireUser returns the authenticated user ID or writes 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
	}
	return userID, ok
}
