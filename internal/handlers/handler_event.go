package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// maxBatchEvents bounds a single ingestion request.
const maxBatchEvents = 500

// eventHandler accepts upstream billing events.
type eventHandler struct {
	eventService portssvc.EventService
}

func newEventHandler(es portssvc.EventService) *eventHandler {
	return &eventHandler{eventService: es}
}

// registerEventRoutes registers event ingestion routes. Ingestion is rate
// limited per tenant when rateLimiter is set.
func registerEventRoutes(rg *gin.RouterGroup, eventService portssvc.EventService, rateLimiter *limiter.Limiter) {
	h := newEventHandler(eventService)

	events := rg.Group("/events")
	if rateLimiter != nil {
		events.Use(middleware.RateLimit(rateLimiter))
	}
	{
		events.POST("", h.ingestEvents)
		events.POST("/preview", h.previewEvent)
	}
	rg.POST("/documents/audit", h.auditDocument)
}

// ingestEvents accepts one event object or an array of events. A single event
// answers with its result or error; a batch always answers 200 with
// per-event outcomes.
// @Summary Ingest business events
// @Description Accepts one event or a JSON array of events. Each event posts at most once per tenant.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   X-Actor-ID header string false "Acting user, defaults to system"
// @Param   events body object true "An event envelope or an array of them"
// @Success 201 {object} dto.EventResultResponse "Entry posted"
// @Success 200 {object} dto.BatchEventsResponse "Replayed, skipped or batch results"
// @Failure 400 {object} dto.ErrorResponse "Malformed event"
// @Failure 429 {object} dto.ErrorResponse "Rate limit exceeded"
// @Router /tenants/{tenant_id}/events [post]
func (h *eventHandler) ingestEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID := c.Param("tenant_id")

	body, err := c.GetRawData()
	if err != nil {
		respondBindError(c, err)
		return
	}
	body = bytes.TrimSpace(body)

	if len(body) > 0 && body[0] == '[' {
		h.ingestBatch(c, tenantID, body)
		return
	}

	event, err := decodeTenantEvent(tenantID, body)
	if err != nil {
		respondError(c, err, "Rejected event")
		return
	}
	event = withActor(c, event)

	result, err := h.eventService.ProcessEvent(c.Request.Context(), event)
	if err != nil {
		respondError(c, err, "Failed to process event")
		return
	}

	logger.Info("Event ingested",
		slog.String("event_id", result.EventID),
		slog.Bool("replayed", result.Replayed),
		slog.Bool("skipped", result.Skipped))
	status := http.StatusOK
	if result.EntryID != "" && !result.Replayed {
		status = http.StatusCreated
	}
	c.JSON(status, toEventResultResponse(*result))
}

func (h *eventHandler) ingestBatch(c *gin.Context, tenantID string, body []byte) {
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		respondBindError(c, err)
		return
	}
	if len(raws) == 0 || len(raws) > maxBatchEvents {
		respondError(c, apperrors.New(apperrors.ErrInvalidEvent, "a batch holds between 1 and %d events", maxBatchEvents), "Rejected event batch")
		return
	}

	// Events that fail to decode keep their position in the response.
	results := make([]dto.EventResultResponse, len(raws))
	var valid []eventadapter.Event
	var positions []int
	for i, raw := range raws {
		event, err := decodeTenantEvent(tenantID, raw)
		if err != nil {
			results[i] = dto.EventResultResponse{EventID: event.EventID}.WithError(err)
			continue
		}
		valid = append(valid, withActor(c, event))
		positions = append(positions, i)
	}

	for i, res := range h.eventService.ProcessBatch(c.Request.Context(), valid) {
		results[positions[i]] = toEventResultResponse(res)
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	middleware.GetLoggerFromContext(c).Info("Event batch ingested",
		slog.Int("events", len(results)),
		slog.Int("failed", failed))
	c.JSON(http.StatusOK, dto.BatchEventsResponse{Results: results, Failed: failed})
}

// previewEvent maps an event without posting it.
// @Summary Preview the entry an event would post
// @Tags events
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   event body object true "Event envelope"
// @Success 200 {object} dto.PreviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/events/preview [post]
func (h *eventHandler) previewEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondBindError(c, err)
		return
	}
	event, err := decodeTenantEvent(c.Param("tenant_id"), body)
	if err != nil {
		respondError(c, err, "Rejected event")
		return
	}

	draft, err := h.eventService.PreviewEvent(c.Request.Context(), event)
	if err != nil {
		respondError(c, err, "Failed to preview event")
		return
	}
	c.JSON(http.StatusOK, dto.ToPreviewResponse(draft))
}

// auditDocument compares a billing document with what the ledger holds for it.
// @Summary Audit a document against its posted entries
// @Tags events
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   document body dto.AuditDocumentRequest true "Exactly one document"
// @Success 200 {object} dto.AuditDocumentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/documents/audit [post]
func (h *eventHandler) auditDocument(c *gin.Context) {
	var req dto.AuditDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	doc, err := req.Document()
	if err != nil {
		respondError(c, err, "Invalid audit request")
		return
	}

	discrepancies, err := h.eventService.AuditDocument(c.Request.Context(), c.Param("tenant_id"), doc)
	if err != nil {
		respondError(c, err, "Failed to audit document")
		return
	}
	c.JSON(http.StatusOK, dto.AuditDocumentResponse{
		SourceType:    doc.SourceType(),
		SourceID:      doc.SourceID(),
		Consistent:    len(discrepancies) == 0,
		Discrepancies: discrepancies,
	})
}

// decodeTenantEvent decodes an event and checks it belongs to the path tenant.
// An envelope without a tenant inherits it from the path.
func decodeTenantEvent(tenantID string, raw []byte) (eventadapter.Event, error) {
	var head struct {
		EventID  string `json:"eventId"`
		TenantID string `json:"tenantId"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return eventadapter.Event{}, apperrors.Wrap(apperrors.ErrInvalidEvent, err)
	}
	if head.TenantID != "" && head.TenantID != tenantID {
		return eventadapter.Event{EventID: head.EventID},
			apperrors.New(apperrors.ErrInvalidEvent, "event tenant %q does not match path tenant", head.TenantID)
	}
	if head.TenantID == "" {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope == nil {
			return eventadapter.Event{EventID: head.EventID}, apperrors.New(apperrors.ErrInvalidEvent, "event must be a JSON object")
		}
		envelope["tenantId"], _ = json.Marshal(tenantID)
		raw, _ = json.Marshal(envelope)
	}

	event, err := eventadapter.DecodeEvent(raw)
	if err != nil {
		return eventadapter.Event{EventID: head.EventID}, err
	}
	return event, nil
}

// withActor attributes an event without an actor to the caller.
func withActor(c *gin.Context, e eventadapter.Event) eventadapter.Event {
	if e.Actor == "" {
		e.Actor = middleware.GetActorFromContext(c)
	}
	return e
}

func toEventResultResponse(r portssvc.EventResult) dto.EventResultResponse {
	return dto.EventResultResponse{
		EventID:  r.EventID,
		EntryID:  r.EntryID,
		Replayed: r.Replayed,
		Skipped:  r.Skipped,
	}.WithError(r.Err)
}
