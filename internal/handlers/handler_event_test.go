package handlers_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/derivation"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/handlers"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func invoiceEventJSON(eventID, tenantID string) string {
	tenant := ""
	if tenantID != "" {
		tenant = fmt.Sprintf(`"tenantId": %q,`, tenantID)
	}
	return fmt.Sprintf(`{
		"eventId": %q, %s
		"type": "INVOICE_ISSUED",
		"occurredAt": "2025-03-14T10:00:00Z",
		"payload": {"invoiceId": "INV-1", "grandTotal": "10750", "netAmount": "10000", "taxAmount": "750", "currency": "USD"}
	}`, eventID, tenant)
}

func eventWithID(id string) any {
	return mock.MatchedBy(func(e eventadapter.Event) bool { return e.EventID == id })
}

func (s *HandlerTestSuite) TestIngestEvent_Posts() {
	s.mockEventService.On("ProcessEvent", mock.Anything, mock.MatchedBy(func(e eventadapter.Event) bool {
		return e.EventID == "evt-1" &&
			e.TenantID == testTenant &&
			e.Type == eventadapter.InvoiceIssued &&
			e.Actor == "billing-svc"
	})).Return(&portssvc.EventResult{EventID: "evt-1", EntryID: "entry-1"}, nil).Once()

	w := s.do(http.MethodPost, basePath+"/events", invoiceEventJSON("evt-1", ""), "billing-svc")

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.EventResultResponse
	s.decode(w, &resp)
	s.Equal("entry-1", resp.EntryID)
	s.False(resp.Replayed)
}

func (s *HandlerTestSuite) TestIngestEvent_ReplayAndSkipAnswerOK() {
	s.mockEventService.On("ProcessEvent", mock.Anything, eventWithID("evt-1")).
		Return(&portssvc.EventResult{EventID: "evt-1", EntryID: "entry-1", Replayed: true}, nil).Once()
	s.mockEventService.On("ProcessEvent", mock.Anything, eventWithID("evt-2")).
		Return(&portssvc.EventResult{EventID: "evt-2", Skipped: true}, nil).Once()

	w := s.do(http.MethodPost, basePath+"/events", invoiceEventJSON("evt-1", testTenant), "")
	s.Equal(http.StatusOK, w.Code)
	var resp dto.EventResultResponse
	s.decode(w, &resp)
	s.True(resp.Replayed)

	w = s.do(http.MethodPost, basePath+"/events", invoiceEventJSON("evt-2", testTenant), "")
	s.Equal(http.StatusOK, w.Code)
	s.decode(w, &resp)
	s.True(resp.Skipped)
}

func (s *HandlerTestSuite) TestIngestEvent_TenantMismatch() {
	w := s.do(http.MethodPost, basePath+"/events", invoiceEventJSON("evt-1", "tenant-b"), "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(apperrors.CodeInvalidEvent), s.errorBody(w).Code)
	s.mockEventService.AssertNotCalled(s.T(), "ProcessEvent", mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestIngestEvent_Malformed() {
	for _, body := range []string{
		`{"eventId": "evt-1", "type": "INVOICE_ISSUED"}`,
		`{"eventId": "evt-1", "type": "SHIPMENT_SENT", "occurredAt": "2025-03-14T10:00:00Z", "payload": {}}`,
		`null`,
		`not json`,
	} {
		w := s.do(http.MethodPost, basePath+"/events", body, "")
		s.Equal(http.StatusBadRequest, w.Code, body)
		s.Equal(string(apperrors.CodeInvalidEvent), s.errorBody(w).Code, body)
	}
}

func (s *HandlerTestSuite) TestIngestEvent_ServiceRejection() {
	s.mockEventService.On("ProcessEvent", mock.Anything, eventWithID("evt-1")).
		Return(nil, apperrors.ErrAccountInactiveOrForeign).Once()

	w := s.do(http.MethodPost, basePath+"/events", invoiceEventJSON("evt-1", ""), "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(apperrors.CodeAccountInactiveOrForeign), s.errorBody(w).Code)
}

func (s *HandlerTestSuite) TestIngestBatch_KeepsOrderAndIsolatesFailures() {
	s.mockEventService.On("ProcessBatch", mock.Anything, mock.MatchedBy(func(events []eventadapter.Event) bool {
		return len(events) == 2 && events[0].EventID == "evt-1" && events[1].EventID == "evt-3"
	})).Return([]portssvc.EventResult{
		{EventID: "evt-1", EntryID: "entry-1"},
		{EventID: "evt-3", Err: apperrors.ErrUnmappedAccount},
	}).Once()

	body := "[" + strings.Join([]string{
		invoiceEventJSON("evt-1", ""),
		`{"eventId": "evt-2", "type": "NOPE"}`,
		invoiceEventJSON("evt-3", testTenant),
	}, ",") + "]"
	w := s.do(http.MethodPost, basePath+"/events", body, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.BatchEventsResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Results, 3)
	s.Equal(2, resp.Failed)
	s.Equal("entry-1", resp.Results[0].EntryID)
	s.Empty(resp.Results[0].Error)
	s.Equal("evt-2", resp.Results[1].EventID)
	s.Equal(string(apperrors.CodeInvalidEvent), resp.Results[1].Code)
	s.Equal(string(apperrors.CodeUnmappedAccount), resp.Results[2].Code)
}

func (s *HandlerTestSuite) TestIngestBatch_Empty() {
	w := s.do(http.MethodPost, basePath+"/events", "[]", "")

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestPreviewEvent() {
	s.mockEventService.On("PreviewEvent", mock.Anything, eventWithID("evt-1")).Return(&domain.DraftEntry{
		SourceType:    eventadapter.SourceInvoice,
		SourceID:      "INV-1",
		SourceEventID: "evt-1",
		CurrencyCode:  "USD",
		Lines: []domain.DraftLine{
			{AccountCode: domain.CodeAccountsReceivable, Side: domain.Debit, Amount: decimal.NewFromInt(10750)},
			{AccountCode: domain.CodeSalesRevenue, Side: domain.Credit, Amount: decimal.NewFromInt(10000)},
			{AccountCode: domain.CodeVATPayable, Side: domain.Credit, Amount: decimal.NewFromInt(750)},
		},
	}, nil).Once()

	w := s.do(http.MethodPost, basePath+"/events/preview", invoiceEventJSON("evt-1", ""), "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.PreviewResponse
	s.decode(w, &resp)
	s.Equal("INV-1", resp.SourceID)
	s.Require().Len(resp.Lines, 3)
	s.Equal(domain.CodeVATPayable, resp.Lines[2].AccountCode)
}

func (s *HandlerTestSuite) TestAuditDocument() {
	s.mockEventService.On("AuditDocument", mock.Anything, testTenant, mock.MatchedBy(func(d derivation.Document) bool {
		inv, ok := d.(derivation.InvoiceDocument)
		return ok && inv.InvoiceID == "INV-1" && len(inv.Items) == 1
	})).Return([]derivation.Discrepancy{{
		AccountCode: domain.CodeAccountsReceivable,
		Side:        domain.Debit,
		Expected:    decimal.NewFromInt(196),
		Posted:      decimal.NewFromInt(166),
	}}, nil).Once()

	body := `{"invoice": {"invoiceId": "INV-1", "currency": "USD", "items": [
		{"description": "Widget", "quantity": "2", "unitPrice": "80", "taxRate": "0.16"}]}}`
	w := s.do(http.MethodPost, basePath+"/documents/audit", body, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.AuditDocumentResponse
	s.decode(w, &resp)
	s.False(resp.Consistent)
	s.Equal(eventadapter.SourceInvoice, resp.SourceType)
	s.Require().Len(resp.Discrepancies, 1)
}

func (s *HandlerTestSuite) TestAuditDocument_RequiresExactlyOneDocument() {
	w := s.do(http.MethodPost, basePath+"/documents/audit", `{}`, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, basePath+"/documents/audit",
		`{"payment": {"paymentId": "P-1"}, "creditNote": {"creditNoteId": "CN-1"}}`, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestIngestEvent_RateLimited() {
	rl, err := middleware.NewLimiter("1-M")
	s.Require().NoError(err)
	router := gin.New()
	router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	handlers.RegisterRoutes(router, s.cfg, s.container(), rl, nil)

	s.mockEventService.On("ProcessEvent", mock.Anything, mock.Anything).
		Return(&portssvc.EventResult{EventID: "evt-1", EntryID: "entry-1"}, nil).Once()

	send := func(tenant string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants/"+tenant+"/events", strings.NewReader(invoiceEventJSON("evt-1", "")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}
	s.Equal(http.StatusCreated, send(testTenant))
	s.Equal(http.StatusTooManyRequests, send(testTenant))

	// Other tenants keep their own allowance.
	s.mockEventService.On("ProcessEvent", mock.Anything, mock.Anything).
		Return(&portssvc.EventResult{EventID: "evt-1", EntryID: "entry-2"}, nil).Once()
	s.Equal(http.StatusCreated, send("tenant-b"))
}
