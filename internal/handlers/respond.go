package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes err as a dto.ErrorResponse with the status of its kind.
// Internal errors are logged and their detail is not exposed.
func respondError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromContext(c)
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(status, dto.ErrorResponse{Error: msg})
		return
	}

	logger.Warn(msg, slog.String("error", err.Error()))
	resp := dto.ErrorResponse{Error: err.Error(), Code: string(apperrors.CodeOf(err))}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		resp.Resource = appErr.Resource
	}
	c.JSON(status, resp)
}

// respondBindError reports a malformed request body or query.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request format: " + err.Error(),
		Code:  string(apperrors.KindValidation),
	})
}
