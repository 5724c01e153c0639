package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Side indicates whether a journal line is a Debit or a Credit.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// Valid reports whether s is DEBIT or CREDIT.
func (s Side) Valid() bool { return s == Debit || s == Credit }

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// ReversalSourceType tags entries created by reversing another entry.
const ReversalSourceType = "REVERSAL"

// ReversalEventID is the source event id of the reversal of entryID.
func ReversalEventID(entryID string) string { return "reversal:" + entryID }

// JournalEntry is a balanced set of lines posted as one unit.
type JournalEntry struct {
	EntryID           string        `json:"entryID"`
	TenantID          string        `json:"tenantID"`
	EntryNumber       int64         `json:"entryNumber"` // zero until posted
	EntryDate         time.Time     `json:"entryDate"`
	Status            EntryStatus   `json:"status"`
	SourceType        string        `json:"sourceType"`
	SourceID          string        `json:"sourceID"`
	SourceEventID     string        `json:"sourceEventID"`
	Memo              string        `json:"memo"`
	CurrencyCode      string        `json:"currencyCode"`
	ReversesEntryID   string        `json:"reversesEntryID,omitempty"`
	ReversedByEntryID string        `json:"reversedByEntryID,omitempty"`
	Lines             []JournalLine `json:"lines"`
	AuditFields
}

// JournalLine is one side of a journal entry against a single account.
// Amount is always strictly positive; Side carries the direction.
type JournalLine struct {
	LineID     string          `json:"lineID"`
	EntryID    string          `json:"entryID"`
	LineNumber int             `json:"lineNumber"`
	AccountID  string          `json:"accountID"`
	Side       Side            `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	Memo       string          `json:"memo,omitempty"`
}

// IsReversal reports whether the entry reverses another entry.
func (e JournalEntry) IsReversal() bool { return e.ReversesEntryID != "" }

// Totals sums debit and credit amounts across the entry's lines.
func (e JournalEntry) Totals() (debits, credits decimal.Decimal) {
	return SumSides(e.Lines)
}

// SumSides sums debit and credit amounts of lines.
func SumSides(lines []JournalLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.Side == Debit {
			debits = debits.Add(l.Amount)
		} else {
			credits = credits.Add(l.Amount)
		}
	}
	return debits, credits
}

var allowedTransitions = map[EntryStatus][]EntryStatus{
	Draft:  {Posted},
	Posted: {Reversed},
}

// CanTransitionTo reports whether the entry may move to next.
func (e JournalEntry) CanTransitionTo(next EntryStatus) bool {
	for _, s := range allowedTransitions[e.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the entry to next, enforcing DRAFT -> POSTED -> REVERSED.
func (e *JournalEntry) TransitionTo(next EntryStatus) error {
	if !e.CanTransitionTo(next) {
		switch {
		case next == Reversed && e.Status == Reversed:
			return apperrors.WithResource(apperrors.ErrAlreadyReversed, e.EntryID)
		case next == Reversed && e.Status == Draft:
			return apperrors.WithResource(apperrors.ErrEntryNotPosted, e.EntryID)
		}
		return apperrors.New(apperrors.ErrInvalidTransition, "%s -> %s", e.Status, next)
	}
	e.Status = next
	return nil
}

// DraftLine is an unposted line. The account is given either by id or by code.
type DraftLine struct {
	AccountID   string          `json:"accountID,omitempty"`
	AccountCode string          `json:"accountCode,omitempty"`
	Side        Side            `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo,omitempty"`
}

// AccountRef identifies the line's account for messages.
func (l DraftLine) AccountRef() string {
	if l.AccountID != "" {
		return l.AccountID
	}
	return "code=" + l.AccountCode
}

// Check validates the line on its own. n is its 1-based position for messages.
func (l DraftLine) Check(n int) error {
	if !l.Side.Valid() {
		return apperrors.New(apperrors.ErrInvalidLine, "line %d: side %q", n, l.Side)
	}
	if !l.Amount.IsPositive() {
		return apperrors.New(apperrors.ErrInvalidLine, "line %d: amount must be positive, got %s", n, l.Amount)
	}
	if l.AccountID == "" && l.AccountCode == "" {
		return apperrors.New(apperrors.ErrInvalidLine, "line %d: account is required", n)
	}
	return nil
}

// DraftEntry is a proposed journal entry prior to validation and posting.
type DraftEntry struct {
	SourceType    string      `json:"sourceType"`
	SourceID      string      `json:"sourceID"`
	SourceEventID string      `json:"sourceEventID"`
	EntryDate     time.Time   `json:"entryDate"`
	Memo          string      `json:"memo"`
	CurrencyCode  string      `json:"currencyCode"`
	CreatedBy     string      `json:"createdBy"`
	Lines         []DraftLine `json:"lines"`
}

// CheckLines validates each line on its own, including that no amount is
// finer than the entry currency's minor unit.
func (d DraftEntry) CheckLines() error {
	for i, l := range d.Lines {
		if err := l.Check(i + 1); err != nil {
			return err
		}
		if !IsCurrencyAmount(l.Amount, d.CurrencyCode) {
			return apperrors.New(apperrors.ErrInvalidLine, "line %d: amount %s has more than %d decimal places",
				i+1, l.Amount, CurrencyScale(d.CurrencyCode))
		}
	}
	return nil
}

// CheckShape validates what can be checked without account lookups: line count,
// well formed lines and exact balance.
func (d DraftEntry) CheckShape() error {
	if len(d.Lines) < 2 {
		return apperrors.New(apperrors.ErrInsufficientLines, "got %d", len(d.Lines))
	}
	if err := d.CheckLines(); err != nil {
		return err
	}
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range d.Lines {
		if l.Side == Debit {
			debits = debits.Add(l.Amount)
		} else {
			credits = credits.Add(l.Amount)
		}
	}
	if !debits.Equal(credits) {
		return apperrors.New(apperrors.ErrUnbalancedEntry, "debits %s, credits %s", debits, credits)
	}
	return nil
}

// PostResult is the outcome of posting. Replayed is set when the source event
// had already been posted and Entry is the earlier result.
type PostResult struct {
	Entry    JournalEntry `json:"entry"`
	Replayed bool         `json:"replayed"`
}

// ProcessedEvent records that a source event produced an entry.
type ProcessedEvent struct {
	TenantID      string    `json:"tenantID"`
	SourceEventID string    `json:"sourceEventID"`
	EntryID       string    `json:"entryID"`
	ProcessedAt   time.Time `json:"processedAt"`
}

func (p ProcessedEvent) String() string {
	return fmt.Sprintf("%s/%s -> %s", p.TenantID, p.SourceEventID, p.EntryID)
}
