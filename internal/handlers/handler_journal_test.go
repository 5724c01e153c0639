package handlers_test

import (
	"net/http"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const manualEntryBody = `{
	"sourceEventID": "manual-1",
	"memo": "Owner contribution",
	"lines": [
		{"accountCode": "1000", "side": "DEBIT", "amount": "500.00"},
		{"accountCode": "3000", "side": "CREDIT", "amount": "500.00"}
	]
}`

func postedEntry(id string, number int64) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:       id,
		TenantID:      testTenant,
		EntryNumber:   number,
		EntryDate:     time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Status:        domain.Posted,
		SourceType:    "MANUAL",
		SourceEventID: "manual-1",
		CurrencyCode:  "KES",
		Lines: []domain.JournalLine{
			{LineID: "l-1", EntryID: id, LineNumber: 1, AccountID: "acc-cash", Side: domain.Debit, Amount: decimal.NewFromInt(500)},
			{LineID: "l-2", EntryID: id, LineNumber: 2, AccountID: "acc-equity", Side: domain.Credit, Amount: decimal.NewFromInt(500)},
		},
	}
}

func (s *HandlerTestSuite) TestCreateEntry_PostsWithDefaultCurrency() {
	entry := postedEntry("entry-1", 1)
	s.mockJournalService.On("PostEntry", mock.Anything, testTenant, mock.MatchedBy(func(d domain.DraftEntry) bool {
		return d.CurrencyCode == "KES" &&
			d.CreatedBy == "clerk-1" &&
			d.SourceType == "MANUAL" &&
			d.SourceEventID == "manual-1" &&
			len(d.Lines) == 2 &&
			d.Lines[0].Amount.Equal(decimal.NewFromInt(500))
	})).Return(&domain.PostResult{Entry: entry}, nil).Once()

	w := s.do(http.MethodPost, basePath+"/entries", manualEntryBody, "clerk-1")

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	s.decode(w, &resp)
	s.Equal("entry-1", resp.EntryID)
	s.Equal(int64(1), resp.EntryNumber)
	s.False(resp.Replayed)
	s.Len(resp.Lines, 2)
}

func (s *HandlerTestSuite) TestCreateEntry_ReplayAnswersOK() {
	entry := postedEntry("entry-1", 1)
	s.mockJournalService.On("PostEntry", mock.Anything, testTenant, mock.Anything).
		Return(&domain.PostResult{Entry: entry, Replayed: true}, nil).Once()

	w := s.do(http.MethodPost, basePath+"/entries", manualEntryBody, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.EntryResponse
	s.decode(w, &resp)
	s.True(resp.Replayed)
}

func (s *HandlerTestSuite) TestCreateEntry_Unbalanced() {
	s.mockJournalService.On("PostEntry", mock.Anything, testTenant, mock.Anything).
		Return(nil, apperrors.New(apperrors.ErrUnbalancedEntry, "debits 500 credits 499")).Once()

	w := s.do(http.MethodPost, basePath+"/entries", manualEntryBody, "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(apperrors.CodeUnbalancedEntry), s.errorBody(w).Code)
}

func (s *HandlerTestSuite) TestCreateEntry_SaveDraft() {
	draft := postedEntry("entry-d", 0)
	draft.Status = domain.Draft
	s.mockJournalService.On("SaveDraft", mock.Anything, testTenant, mock.MatchedBy(func(d domain.DraftEntry) bool {
		return d.CurrencyCode == "USD"
	})).Return(&draft, nil).Once()

	body := `{"sourceEventID": "manual-2", "currencyCode": "USD", "draft": true, "lines": [
		{"accountCode": "1000", "side": "DEBIT", "amount": "5"},
		{"accountCode": "3000", "side": "CREDIT", "amount": "5"}]}`
	w := s.do(http.MethodPost, basePath+"/entries", body, "")

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	s.decode(w, &resp)
	s.Equal(domain.Draft, resp.Status)
	s.mockJournalService.AssertNotCalled(s.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestCreateEntry_RejectsBadSide() {
	body := `{"sourceEventID": "manual-3", "lines": [{"accountCode": "1000", "side": "LEFT", "amount": "5"}]}`

	w := s.do(http.MethodPost, basePath+"/entries", body, "")

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestGetEntry_NotFound() {
	s.mockJournalService.On("GetEntry", mock.Anything, testTenant, "nope").Return(nil, apperrors.ErrEntryNotFound).Once()

	w := s.do(http.MethodGet, basePath+"/entries/nope", nil, "")

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(string(apperrors.CodeEntryNotFound), s.errorBody(w).Code)
}

func (s *HandlerTestSuite) TestPostDraft() {
	entry := postedEntry("entry-d", 4)
	s.mockJournalService.On("PostDraft", mock.Anything, testTenant, "entry-d", "approver").Return(&domain.PostResult{Entry: entry}, nil).Once()

	w := s.do(http.MethodPost, basePath+"/entries/entry-d/post", nil, "approver")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.EntryResponse
	s.decode(w, &resp)
	s.Equal(int64(4), resp.EntryNumber)
}

func (s *HandlerTestSuite) TestPostDraft_SourceEventHeldByAnotherEntry() {
	s.mockJournalService.On("PostDraft", mock.Anything, testTenant, "entry-d", "approver").
		Return(nil, apperrors.WithResource(apperrors.ErrDuplicateSourceEvent, "evt-9")).Once()

	w := s.do(http.MethodPost, basePath+"/entries/entry-d/post", nil, "approver")

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(string(apperrors.CodeDuplicateSourceEvent), s.errorBody(w).Code)
}

func (s *HandlerTestSuite) TestReverseEntry() {
	reversal := postedEntry("entry-2", 2)
	reversal.ReversesEntryID = "entry-1"
	s.mockJournalService.On("ReverseEntry", mock.Anything, testTenant, "entry-1", "duplicate", "clerk-1").Return(&reversal, nil).Once()

	w := s.do(http.MethodPost, basePath+"/entries/entry-1/reverse", dto.ReverseEntryRequest{Reason: "duplicate"}, "clerk-1")

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	s.decode(w, &resp)
	s.Equal("entry-1", resp.ReversesEntryID)
}

func (s *HandlerTestSuite) TestReverseEntry_AlreadyReversed() {
	s.mockJournalService.On("ReverseEntry", mock.Anything, testTenant, "entry-1", "again", middleware.SystemActor).
		Return(nil, apperrors.ErrAlreadyReversed).Once()

	w := s.do(http.MethodPost, basePath+"/entries/entry-1/reverse", dto.ReverseEntryRequest{Reason: "again"}, "")

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(string(apperrors.CodeAlreadyReversed), s.errorBody(w).Code)
}

func (s *HandlerTestSuite) TestReverseEntry_RequiresReason() {
	w := s.do(http.MethodPost, basePath+"/entries/entry-1/reverse", map[string]string{}, "")

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestGetAccountLedger_ParsesRange() {
	account := testAccount("acc-cash", domain.CodeCash, domain.Asset)
	want := domain.DateRange{
		From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	ledger := &domain.AccountLedger{
		Account:        account,
		Range:          want,
		OpeningBalance: decimal.NewFromInt(100),
		ClosingBalance: decimal.NewFromInt(600),
		Lines: []domain.LedgerLine{{
			PostedLine: domain.PostedLine{
				JournalLine: domain.JournalLine{
					EntryID: "entry-1", LineNumber: 1, AccountID: "acc-cash",
					Side: domain.Debit, Amount: decimal.NewFromInt(500),
				},
				EntryNumber: 1,
				EntryDate:   want.From,
			},
			RunningBalance: decimal.NewFromInt(600),
		}},
	}
	s.mockJournalService.On("GetAccountLedger", mock.Anything, testTenant, "acc-cash", want).Return(ledger, nil).Once()

	w := s.do(http.MethodGet, basePath+"/accounts/acc-cash/ledger?from=2025-03-01&to=2025-03-31", nil, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.AccountLedgerResponse
	s.decode(w, &resp)
	s.True(resp.OpeningBalance.Equal(decimal.NewFromInt(100)))
	s.Require().Len(resp.Lines, 1)
	s.True(resp.Lines[0].RunningBalance.Equal(decimal.NewFromInt(600)))
	s.Require().NotNil(resp.From)
}

func (s *HandlerTestSuite) TestGetAccountLedger_BadDates() {
	w := s.do(http.MethodGet, basePath+"/accounts/acc-cash/ledger?from=03/01/2025", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, basePath+"/accounts/acc-cash/ledger?from=2025-04-01&to=2025-03-01", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
}
