package services

import (
	"context"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error)

	// GetAccountLedger lists the account's posted lines in a date range with running balances.
	GetAccountLedger(ctx context.Context, tenantID string, accountID string, dateRange domain.DateRange) (*domain.AccountLedger, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// PostEntry validates and posts a draft exactly once per source event.
	PostEntry(ctx context.Context, tenantID string, draft domain.DraftEntry) (*domain.PostResult, error)

	// SaveDraft stores an entry in DRAFT status without affecting balances.
	SaveDraft(ctx context.Context, tenantID string, draft domain.DraftEntry) (*domain.JournalEntry, error)

	// PostDraft validates and posts a stored DRAFT entry.
	PostDraft(ctx context.Context, tenantID string, entryID string, userID string) (*domain.PostResult, error)

	// ReverseEntry posts a mirror of a POSTED entry and marks the original REVERSED.
	ReverseEntry(ctx context.Context, tenantID string, entryID string, reason string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
