package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/balance-check", h.checkBalances)
		reportingGroup.POST("/balance-replay", h.replayBalances)
	}
}

// getTrialBalance reports per-account totals as of the asOf query date, today by default.
// @Summary Get the trial balance
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   asOf query string false "Report date, YYYY-MM-DD. Defaults to today"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var asOf time.Time
	if asOfStr := c.Query("asOf"); asOfStr != "" {
		parsed, err := time.Parse(dateLayout, asOfStr)
		if err != nil {
			respondError(c, apperrors.New(apperrors.ErrValidation, "invalid asOf date %q, expected YYYY-MM-DD", asOfStr), "Invalid trial balance date")
			return
		}
		asOf = parsed
	}

	tb, err := h.reportingService.GetTrialBalance(c.Request.Context(), c.Param("tenant_id"), asOf)
	if err != nil {
		respondError(c, err, "Failed to generate trial balance report")
		return
	}

	if !tb.Balanced() {
		logger.Error("Trial balance does not balance",
			slog.String("debits", tb.TotalDebits.String()),
			slog.String("credits", tb.TotalCredits.String()))
	}
	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(tb.Rows)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}

// checkBalances compares stored balances with a replay of posted lines.
// @Summary Compare stored balances with a replay
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Success 200 {object} dto.BalanceCheckResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/reports/balance-check [get]
func (h *reportingHandler) checkBalances(c *gin.Context) {
	mismatches, err := h.reportingService.VerifyBalances(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		respondError(c, err, "Failed to verify balances")
		return
	}

	if mismatches == nil {
		mismatches = []domain.BalanceMismatch{}
	}
	if len(mismatches) > 0 {
		middleware.GetLoggerFromContext(c).Warn("Stored balances disagree with replay", slog.Int("mismatches", len(mismatches)))
	}
	c.JSON(http.StatusOK, dto.BalanceCheckResponse{Consistent: len(mismatches) == 0, Mismatches: mismatches})
}

// replayBalances rebuilds stored balances from posted lines.
// @Summary Rebuild stored balances from posted lines
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Success 200 {object} dto.BalanceReplayResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/reports/balance-replay [post]
func (h *reportingHandler) replayBalances(c *gin.Context) {
	balances, err := h.reportingService.ReplayBalances(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		respondError(c, err, "Failed to replay balances")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceReplayResponse{Accounts: len(balances)})
}
