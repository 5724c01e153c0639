package dto

import (
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineRequest is one line of a manually submitted entry. Either AccountID or
// AccountCode identifies the account.
type LineRequest struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Side        domain.Side     `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo"`
}

// CreateEntryRequest posts, or saves as a draft, a manual journal entry.
type CreateEntryRequest struct {
	SourceEventID string        `json:"sourceEventID" binding:"required,max=200"`
	SourceType    string        `json:"sourceType"`
	SourceID      string        `json:"sourceID"`
	EntryDate     time.Time     `json:"entryDate"`
	Memo          string        `json:"memo"`
	CurrencyCode  string        `json:"currencyCode" binding:"omitempty,len=3"`
	Draft         bool          `json:"draft"`
	Lines         []LineRequest `json:"lines" binding:"required,dive"`
}

// ToDraftEntry converts the request for the journal service.
func (r CreateEntryRequest) ToDraftEntry(actor string) domain.DraftEntry {
	lines := make([]domain.DraftLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.DraftLine{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Side:        l.Side,
			Amount:      l.Amount,
			Memo:        l.Memo,
		}
	}
	sourceType := r.SourceType
	if sourceType == "" {
		sourceType = "MANUAL"
	}
	return domain.DraftEntry{
		SourceType:    sourceType,
		SourceID:      r.SourceID,
		SourceEventID: r.SourceEventID,
		EntryDate:     r.EntryDate,
		Memo:          r.Memo,
		CurrencyCode:  r.CurrencyCode,
		CreatedBy:     actor,
		Lines:         lines,
	}
}

// ReverseEntryRequest carries the reason for a reversal.
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID     string          `json:"lineID"`
	LineNumber int             `json:"lineNumber"`
	AccountID  string          `json:"accountID"`
	Side       domain.Side     `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	Memo       string          `json:"memo,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID           string             `json:"entryID"`
	EntryNumber       int64              `json:"entryNumber"`
	EntryDate         time.Time          `json:"entryDate"`
	Status            domain.EntryStatus `json:"status"`
	SourceType        string             `json:"sourceType"`
	SourceID          string             `json:"sourceID"`
	SourceEventID     string             `json:"sourceEventID"`
	Memo              string             `json:"memo"`
	CurrencyCode      string             `json:"currencyCode"`
	ReversesEntryID   string             `json:"reversesEntryID,omitempty"`
	ReversedByEntryID string             `json:"reversedByEntryID,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	CreatedBy         string             `json:"createdBy"`
	Lines             []LineResponse     `json:"lines"`
	Replayed          bool               `json:"replayed,omitempty"`
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	lines := make([]LineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = LineResponse{
			LineID:     l.LineID,
			LineNumber: l.LineNumber,
			AccountID:  l.AccountID,
			Side:       l.Side,
			Amount:     l.Amount,
			Memo:       l.Memo,
		}
	}
	return EntryResponse{
		EntryID:           e.EntryID,
		EntryNumber:       e.EntryNumber,
		EntryDate:         e.EntryDate,
		Status:            e.Status,
		SourceType:        e.SourceType,
		SourceID:          e.SourceID,
		SourceEventID:     e.SourceEventID,
		Memo:              e.Memo,
		CurrencyCode:      e.CurrencyCode,
		ReversesEntryID:   e.ReversesEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
		Lines:             lines,
	}
}

// ToPostResultResponse converts a posting result, flagging replays.
func ToPostResultResponse(r *domain.PostResult) EntryResponse {
	resp := ToEntryResponse(&r.Entry)
	resp.Replayed = r.Replayed
	return resp
}

// LedgerLineResponse is a ledger row with its running balance.
type LedgerLineResponse struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    int64           `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	LineNumber     int             `json:"lineNumber"`
	Side           domain.Side     `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedgerResponse is an account's ledger over a date range.
type AccountLedgerResponse struct {
	Account        AccountResponse      `json:"account"`
	From           *time.Time           `json:"from,omitempty"`
	To             *time.Time           `json:"to,omitempty"`
	OpeningBalance decimal.Decimal      `json:"openingBalance"`
	ClosingBalance decimal.Decimal      `json:"closingBalance"`
	Lines          []LedgerLineResponse `json:"lines"`
}

// ToAccountLedgerResponse converts a domain.AccountLedger.
func ToAccountLedgerResponse(l *domain.AccountLedger) AccountLedgerResponse {
	lines := make([]LedgerLineResponse, len(l.Lines))
	for i, ln := range l.Lines {
		memo := ln.Memo
		if memo == "" {
			memo = ln.EntryMemo
		}
		lines[i] = LedgerLineResponse{
			EntryID:        ln.EntryID,
			EntryNumber:    ln.EntryNumber,
			EntryDate:      ln.EntryDate,
			LineNumber:     ln.LineNumber,
			Side:           ln.Side,
			Amount:         ln.Amount,
			Memo:           memo,
			RunningBalance: ln.RunningBalance,
		}
	}
	resp := AccountLedgerResponse{
		Account:        ToAccountResponse(&l.Account),
		OpeningBalance: l.OpeningBalance,
		ClosingBalance: l.ClosingBalance,
		Lines:          lines,
	}
	if !l.Range.From.IsZero() {
		from := l.Range.From
		resp.From = &from
	}
	if !l.Range.To.IsZero() {
		to := l.Range.To
		resp.To = &to
	}
	return resp
}

// LedgerParams are the query parameters of an account ledger request.
type LedgerParams struct {
	From string `form:"from"` // YYYY-MM-DD
	To   string `form:"to"`   // YYYY-MM-DD
}
