package dto

import (
	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/derivation"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BatchEventsResponse lists per-event outcomes in request order.
type BatchEventsResponse struct {
	Results []EventResultResponse `json:"results"`
	Failed  int                   `json:"failed"`
}

// DraftLineResponse is one line of a previewed posting.
type DraftLineResponse struct {
	AccountCode string          `json:"accountCode"`
	Side        domain.Side     `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo,omitempty"`
}

// PreviewResponse is the posting an event would produce.
type PreviewResponse struct {
	SourceType    string              `json:"sourceType"`
	SourceID      string              `json:"sourceID"`
	SourceEventID string              `json:"sourceEventID"`
	CurrencyCode  string              `json:"currencyCode"`
	Memo          string              `json:"memo"`
	Lines         []DraftLineResponse `json:"lines"`
}

// ToPreviewResponse converts a mapped draft.
func ToPreviewResponse(d *domain.DraftEntry) PreviewResponse {
	lines := make([]DraftLineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = DraftLineResponse{AccountCode: l.AccountCode, Side: l.Side, Amount: l.Amount, Memo: l.Memo}
	}
	return PreviewResponse{
		SourceType:    d.SourceType,
		SourceID:      d.SourceID,
		SourceEventID: d.SourceEventID,
		CurrencyCode:  d.CurrencyCode,
		Memo:          d.Memo,
		Lines:         lines,
	}
}

// AuditDocumentRequest carries exactly one billing document.
type AuditDocumentRequest struct {
	Invoice    *derivation.InvoiceDocument    `json:"invoice"`
	Payment    *derivation.PaymentDocument    `json:"payment"`
	CreditNote *derivation.CreditNoteDocument `json:"creditNote"`
	Expense    *derivation.ExpenseDocument    `json:"expense"`
}

// Document returns the single document set on the request.
func (r AuditDocumentRequest) Document() (derivation.Document, error) {
	var docs []derivation.Document
	if r.Invoice != nil {
		docs = append(docs, *r.Invoice)
	}
	if r.Payment != nil {
		docs = append(docs, *r.Payment)
	}
	if r.CreditNote != nil {
		docs = append(docs, *r.CreditNote)
	}
	if r.Expense != nil {
		docs = append(docs, *r.Expense)
	}
	if len(docs) != 1 {
		return nil, apperrors.New(apperrors.ErrValidation, "exactly one document is required, got %d", len(docs))
	}
	if docs[0].SourceID() == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "document id is required")
	}
	return docs[0], nil
}

// AuditDocumentResponse lists differences between the ledger and the rules.
type AuditDocumentResponse struct {
	SourceType    string                   `json:"sourceType"`
	SourceID      string                   `json:"sourceID"`
	Consistent    bool                     `json:"consistent"`
	Discrepancies []derivation.Discrepancy `json:"discrepancies"`
}

// BalanceReplayResponse lists the number of balances rebuilt.
type BalanceReplayResponse struct {
	Accounts int `json:"accounts"`
}
