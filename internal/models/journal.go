package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

// JournalEntry is a row of the journal_entries table.
// EntryNumber stays NULL while the entry is a draft.
type JournalEntry struct {
	EntryID           string      `db:"entry_id"`
	TenantID          string      `db:"tenant_id"`
	EntryNumber       *int64      `db:"entry_number"`
	EntryDate         time.Time   `db:"entry_date"`
	Status            EntryStatus `db:"status"`
	SourceType        string      `db:"source_type"`
	SourceID          string      `db:"source_id"`
	SourceEventID     string      `db:"source_event_id"`
	Memo              string      `db:"memo"`
	CurrencyCode      string      `db:"currency_code"`
	ReversesEntryID   *string     `db:"reverses_entry_id"`
	ReversedByEntryID *string     `db:"reversed_by_entry_id"`
	AuditFields
}

// JournalLine is a row of the journal_lines table. Amount is always positive.
type JournalLine struct {
	LineID     string          `db:"line_id"`
	EntryID    string          `db:"entry_id"`
	TenantID   string          `db:"tenant_id"`
	LineNumber int             `db:"line_number"`
	AccountID  string          `db:"account_id"`
	Side       string          `db:"side"`
	Amount     decimal.Decimal `db:"amount"`
	Memo       string          `db:"memo"`
}
