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

const dateLayout = "2006-01-02"

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService  portssvc.JournalSvcFacade
	defaultCurrency string
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade, defaultCurrency string) *journalHandler {
	return &journalHandler{
		journalService:  journalService,
		defaultCurrency: defaultCurrency,
	}
}

// registerJournalRoutes registers entry routes and the account ledger.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, defaultCurrency string) {
	h := newJournalHandler(journalService, defaultCurrency)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("/:id", h.getEntry)
		entries.POST("/:id/post", h.postDraft)
		entries.POST("/:id/reverse", h.reverseEntry)
	}
	rg.GET("/accounts/:id/ledger", h.getAccountLedger)
}

// createEntry posts a manual entry, or stores it as a draft when requested.
// A repeated sourceEventID answers 200 with the entry first posted for it.
// @Summary Post a journal entry or save a draft
// @Description Posts the entry once per source event. A repeated source event returns the original with 200.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   X-Actor-ID header string false "Acting user, defaults to system"
// @Param   entry body dto.CreateEntryRequest true "Entry with at least two lines"
// @Success 201 {object} dto.EntryResponse "Posted or draft saved"
// @Success 200 {object} dto.EntryResponse "Source event already posted"
// @Failure 400 {object} dto.ErrorResponse "Unbalanced entry or invalid line"
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/entries [post]
func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.CurrencyCode == "" {
		req.CurrencyCode = h.defaultCurrency
	}

	tenantID := c.Param("tenant_id")
	draft := req.ToDraftEntry(middleware.GetActorFromContext(c))
	logger = logger.With(slog.String("source_event_id", req.SourceEventID))

	if req.Draft {
		entry, err := h.journalService.SaveDraft(c.Request.Context(), tenantID, draft)
		if err != nil {
			respondError(c, err, "Failed to save draft entry")
			return
		}
		logger.Info("Draft entry saved", slog.String("entry_id", entry.EntryID))
		c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
		return
	}

	result, err := h.journalService.PostEntry(c.Request.Context(), tenantID, draft)
	if err != nil {
		respondError(c, err, "Failed to post entry")
		return
	}

	logger.Info("Entry posted",
		slog.String("entry_id", result.Entry.EntryID),
		slog.Bool("replayed", result.Replayed))
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToPostResultResponse(result))
}

// @Summary Get a journal entry
// @Tags entries
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Router /tenants/{tenant_id}/entries/{id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	entry, err := h.journalService.GetEntry(c.Request.Context(), c.Param("tenant_id"), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// postDraft posts a stored draft entry.
// @Summary Post a draft entry
// @Tags entries
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   X-Actor-ID header string false "Acting user, defaults to system"
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} dto.ErrorResponse "Draft does not balance"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or source event held by another entry"
// @Router /tenants/{tenant_id}/entries/{id}/post [post]
func (h *journalHandler) postDraft(c *gin.Context) {
	result, err := h.journalService.PostDraft(c.Request.Context(), c.Param("tenant_id"), c.Param("id"), middleware.GetActorFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to post draft entry")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Draft entry posted",
		slog.String("entry_id", result.Entry.EntryID),
		slog.Int64("entry_number", result.Entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToPostResultResponse(result))
}

// reverseEntry posts the mirror of an entry and returns the reversing entry.
// @Summary Reverse a posted entry
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   X-Actor-ID header string false "Acting user, defaults to system"
// @Param   id path string true "Entry ID"
// @Param   reversal body dto.ReverseEntryRequest true "Reason for the reversal"
// @Success 201 {object} dto.EntryResponse "The reversing entry"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Already reversed or not posted"
// @Router /tenants/{tenant_id}/entries/{id}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entryID := c.Param("id")
	reversal, err := h.journalService.ReverseEntry(c.Request.Context(), c.Param("tenant_id"), entryID, req.Reason, middleware.GetActorFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to reverse entry")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}

// getAccountLedger lists an account's posted lines with running balances.
// @Summary Get an account ledger
// @Tags entries
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   id path string true "Account ID"
// @Param   from query string false "First date, YYYY-MM-DD"
// @Param   to query string false "Last date, YYYY-MM-DD"
// @Success 200 {object} dto.AccountLedgerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date range"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /tenants/{tenant_id}/accounts/{id}/ledger [get]
func (h *journalHandler) getAccountLedger(c *gin.Context) {
	var params dto.LedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	dateRange, err := parseDateRange(params.From, params.To)
	if err != nil {
		respondError(c, err, "Invalid ledger range")
		return
	}

	ledger, err := h.journalService.GetAccountLedger(c.Request.Context(), c.Param("tenant_id"), c.Param("id"), dateRange)
	if err != nil {
		respondError(c, err, "Failed to retrieve account ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountLedgerResponse(ledger))
}

func parseDateRange(from, to string) (domain.DateRange, error) {
	var r domain.DateRange
	var err error
	if from != "" {
		if r.From, err = time.Parse(dateLayout, from); err != nil {
			return r, apperrors.New(apperrors.ErrValidation, "invalid from date %q, expected YYYY-MM-DD", from)
		}
	}
	if to != "" {
		if r.To, err = time.Parse(dateLayout, to); err != nil {
			return r, apperrors.New(apperrors.ErrValidation, "invalid to date %q, expected YYYY-MM-DD", to)
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, apperrors.New(apperrors.ErrValidation, "to date is before from date")
	}
	return r, nil
}
