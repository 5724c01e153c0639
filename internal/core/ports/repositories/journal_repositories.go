package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
)

// LineFilter selects posted lines. Zero values leave a field unconstrained.
type LineFilter struct {
	AccountID string
	To        time.Time // inclusive upper bound on entry date
}

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines. Returns apperrors.ErrEntryNotFound when absent.
	FindEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error)

	// FindProcessedEvent returns apperrors.ErrNotFound when the event has not been processed.
	FindProcessedEvent(ctx context.Context, tenantID string, sourceEventID string) (*domain.ProcessedEvent, error)

	// FindEntriesBySource lists entries created for a source document, oldest first, with lines.
	FindEntriesBySource(ctx context.Context, tenantID string, sourceType string, sourceID string) ([]domain.JournalEntry, error)

	// ListPostedLines returns lines of POSTED and REVERSED entries ordered by
	// entry date, entry number and line number.
	ListPostedLines(ctx context.Context, tenantID string, filter LineFilter) ([]domain.PostedLine, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// ClaimEvent records a processed event unless the key already exists.
	// It reports false, with no error, when another writer holds the key.
	ClaimEvent(ctx context.Context, event domain.ProcessedEvent) (bool, error)

	// NextEntryNumber allocates the tenant's next sequential entry number.
	NextEntryNumber(ctx context.Context, tenantID string) (int64, error)

	// LockEntrySequence holds off the tenant's postings until the transaction ends.
	// Every posting allocates a number, so it waits on the same lock.
	LockEntrySequence(ctx context.Context, tenantID string) error

	// SaveEntry inserts an entry header and its lines.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// MarkPosted moves a DRAFT entry to POSTED with its assigned number.
	MarkPosted(ctx context.Context, tenantID string, entryID string, entryNumber int64, userID string, now time.Time) error

	// MarkReversed moves a POSTED entry to REVERSED and links the reversing entry.
	MarkReversed(ctx context.Context, tenantID string, entryID string, reversedByEntryID string, userID string, now time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
