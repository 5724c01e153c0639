package dto

import (
	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
	Balanced bool `json:"balanced"`
}

// ToTrialBalanceResponse converts a domain.TrialBalance.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		AsOf:     tb.AsOf.Format("2006-01-02"),
		Rows:     make([]TrialBalanceRowResponse, len(tb.Rows)),
		Balanced: tb.Balanced(),
	}
	for i, r := range tb.Rows {
		resp.Rows[i] = TrialBalanceRowResponse{
			AccountID:   r.AccountID,
			AccountCode: r.AccountCode,
			AccountName: r.AccountName,
			AccountType: string(r.AccountType),
			Debit:       r.DebitTotal,
			Credit:      r.CreditTotal,
		}
	}
	resp.Totals.Debit = tb.TotalDebits
	resp.Totals.Credit = tb.TotalCredits
	return resp
}

// BalanceCheckResponse reports stored balances that disagree with a replay.
type BalanceCheckResponse struct {
	Consistent bool                     `json:"consistent"`
	Mismatches []domain.BalanceMismatch `json:"mismatches"`
}

// EventResultResponse is the outcome of one processed event.
type EventResultResponse struct {
	EventID  string `json:"eventId"`
	EntryID  string `json:"entryId,omitempty"`
	Replayed bool   `json:"replayed"`
	Skipped  bool   `json:"skipped"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

// WithError records err on the response.
func (r EventResultResponse) WithError(err error) EventResultResponse {
	if err != nil {
		r.Error = err.Error()
		r.Code = string(apperrors.CodeOf(err))
	}
	return r
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Resource string `json:"resource,omitempty"`
}
