package mapping

import (
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry.
// Lines are mapped separately with ToModelJournalLine.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	m := models.JournalEntry{
		EntryID:           d.EntryID,
		TenantID:          d.TenantID,
		EntryDate:         d.EntryDate,
		Status:            models.EntryStatus(d.Status),
		SourceType:        d.SourceType,
		SourceID:          d.SourceID,
		SourceEventID:     d.SourceEventID,
		Memo:              d.Memo,
		CurrencyCode:      d.CurrencyCode,
		ReversesEntryID:   optional(d.ReversesEntryID),
		ReversedByEntryID: optional(d.ReversedByEntryID),
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
	if d.EntryNumber > 0 {
		n := d.EntryNumber
		m.EntryNumber = &n
	}
	return m
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry without lines.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	d := domain.JournalEntry{
		EntryID:           m.EntryID,
		TenantID:          m.TenantID,
		EntryDate:         m.EntryDate,
		Status:            domain.EntryStatus(m.Status),
		SourceType:        m.SourceType,
		SourceID:          m.SourceID,
		SourceEventID:     m.SourceEventID,
		Memo:              m.Memo,
		CurrencyCode:      m.CurrencyCode,
		ReversesEntryID:   valueOf(m.ReversesEntryID),
		ReversedByEntryID: valueOf(m.ReversedByEntryID),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
	if m.EntryNumber != nil {
		d.EntryNumber = *m.EntryNumber
	}
	return d
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(tenantID string, d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:     d.LineID,
		EntryID:    d.EntryID,
		TenantID:   tenantID,
		LineNumber: d.LineNumber,
		AccountID:  d.AccountID,
		Side:       string(d.Side),
		Amount:     d.Amount,
		Memo:       d.Memo,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:     m.LineID,
		EntryID:    m.EntryID,
		LineNumber: m.LineNumber,
		AccountID:  m.AccountID,
		Side:       domain.Side(m.Side),
		Amount:     m.Amount,
		Memo:       m.Memo,
	}
}
