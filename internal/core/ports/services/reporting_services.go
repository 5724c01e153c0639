package services

import (
	"context"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/core/derivation"
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// GetTrialBalance sums posted lines per account up to asOf.
	GetTrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalance, error)

	// ReplayBalances recomputes balances from every posted line and stores them.
	ReplayBalances(ctx context.Context, tenantID string) (map[string]domain.AccountBalance, error)

	// VerifyBalances compares stored balances with a replay. An empty result means they agree.
	VerifyBalances(ctx context.Context, tenantID string) ([]domain.BalanceMismatch, error)
}

// EventResult is the outcome of processing one event.
type EventResult struct {
	EventID  string `json:"eventId"`
	EntryID  string `json:"entryId,omitempty"`
	Replayed bool   `json:"replayed"`
	Skipped  bool   `json:"skipped"` // the event maps to no posting
	Err      error  `json:"-"`
}

// EventService turns upstream events into postings.
type EventService interface {
	// ProcessEvent maps and posts a single event.
	ProcessEvent(ctx context.Context, event eventadapter.Event) (*EventResult, error)

	// ProcessBatch processes events independently; a failed event is reported in its result.
	ProcessBatch(ctx context.Context, events []eventadapter.Event) []EventResult

	// PreviewEvent maps an event without posting it.
	PreviewEvent(ctx context.Context, event eventadapter.Event) (*domain.DraftEntry, error)

	// AuditDocument compares what the rules derive for doc with what is posted for it.
	AuditDocument(ctx context.Context, tenantID string, doc derivation.Document) ([]derivation.Discrepancy, error)
}
