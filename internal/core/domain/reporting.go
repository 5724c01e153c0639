package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is the running balance of an account in its normal-balance orientation.
type AccountBalance struct {
	TenantID  string          `json:"tenantID"`
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
}

// TrialBalance is the per-account debit and credit totals as of a date.
type TrialBalance struct {
	TenantID     string            `json:"tenantID"`
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
}

// Balanced reports whether total debits equal total credits.
func (tb TrialBalance) Balanced() bool { return tb.TotalDebits.Equal(tb.TotalCredits) }

// PostedLine is a journal line joined with the header fields of its entry.
type PostedLine struct {
	JournalLine
	EntryNumber int64       `json:"entryNumber"`
	EntryDate   time.Time   `json:"entryDate"`
	EntryStatus EntryStatus `json:"entryStatus"`
	EntryMemo   string      `json:"entryMemo"`
}

// LedgerLine is a posted line with the account's balance after it.
type LedgerLine struct {
	PostedLine
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedger is the ordered posting history of one account over a date range.
type AccountLedger struct {
	Account        Account         `json:"account"`
	Range          DateRange       `json:"range"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Lines          []LedgerLine    `json:"lines"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// BalanceMismatch reports a stored balance that differs from a full replay.
type BalanceMismatch struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Stored      decimal.Decimal `json:"stored"`
	Replayed    decimal.Decimal `json:"replayed"`
}
