package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/derivation"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/observability/metrics"
)

// Outcomes recorded per processed event.
const (
	outcomePosted   = "posted"
	outcomeReplayed = "replayed"
	outcomeSkipped  = "skipped"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// eventService feeds upstream events through the mapper into the journal.
type eventService struct {
	BaseService
	mapper      *eventadapter.Mapper
	lens        *derivation.Lens
	journal     portssvc.JournalWriterSvc
	accountRepo portsrepo.AccountReader
	journalRepo portsrepo.JournalReader
	metrics     *metrics.Ledger
}

// EventServiceOption is a functional option for configuring the event service
type EventServiceOption func(*eventService)

// WithEventMetrics records event outcomes on m.
func WithEventMetrics(m *metrics.Ledger) EventServiceOption {
	return func(s *eventService) { s.metrics = m }
}

// NewEventService creates an event service. The lens shares mapper so audits
// apply the rules events are posted with.
func NewEventService(
	mapper *eventadapter.Mapper,
	journal portssvc.JournalWriterSvc,
	accountRepo portsrepo.AccountReader,
	journalRepo portsrepo.JournalReader,
	options ...EventServiceOption,
) portssvc.EventService {
	svc := &eventService{
		BaseService: newBaseService(),
		mapper:      mapper,
		lens:        derivation.NewLens(mapper),
		journal:     journal,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.EventService = (*eventService)(nil)

// ProcessEvent maps the event and posts it. Events that map to no posting are
// reported as skipped rather than failed.
func (s *eventService) ProcessEvent(ctx context.Context, event eventadapter.Event) (*portssvc.EventResult, error) {
	logger := s.GetLogger(ctx).With(
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.Type)))

	draft, err := s.mapper.Map(event)
	if errors.Is(err, apperrors.ErrEventNotApplicable) {
		s.metrics.RecordEvent(ctx, string(event.Type), outcomeSkipped)
		logger.Debug("Event produces no posting", slog.String("reason", err.Error()))
		return &portssvc.EventResult{EventID: event.EventID, Skipped: true}, nil
	}
	if err != nil {
		s.metrics.RecordEvent(ctx, string(event.Type), outcomeRejected)
		s.metrics.RecordRejection(ctx, string(apperrors.CodeOf(err)))
		logger.Info("Event rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	result, err := s.journal.PostEntry(ctx, event.TenantID, draft)
	if err != nil {
		outcome := outcomeRejected
		if apperrors.KindOf(err) == apperrors.KindInternal {
			outcome = outcomeFailed
		}
		s.metrics.RecordEvent(ctx, string(event.Type), outcome)
		return nil, err
	}

	outcome := outcomePosted
	if result.Replayed {
		outcome = outcomeReplayed
	}
	s.metrics.RecordEvent(ctx, string(event.Type), outcome)
	logger.Info("Event processed",
		slog.String("entry_id", result.Entry.EntryID),
		slog.Bool("replayed", result.Replayed))
	return &portssvc.EventResult{
		EventID:  event.EventID,
		EntryID:  result.Entry.EntryID,
		Replayed: result.Replayed,
	}, nil
}

// ProcessBatch processes events in order. A failing event is reported in its
// result and does not stop the rest.
func (s *eventService) ProcessBatch(ctx context.Context, events []eventadapter.Event) []portssvc.EventResult {
	results := make([]portssvc.EventResult, 0, len(events))
	failed := 0
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			results = append(results, portssvc.EventResult{EventID: event.EventID, Err: err})
			failed++
			continue
		}
		res, err := s.ProcessEvent(ctx, event)
		if err != nil {
			results = append(results, portssvc.EventResult{EventID: event.EventID, Err: err})
			failed++
			continue
		}
		results = append(results, *res)
	}
	s.LogInfo(ctx, "Event batch processed",
		slog.Int("events", len(events)),
		slog.Int("failed", failed))
	return results
}

func (s *eventService) PreviewEvent(ctx context.Context, event eventadapter.Event) (*domain.DraftEntry, error) {
	draft, err := s.mapper.Map(event)
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// AuditDocument derives the posting doc should have produced and compares it
// with the POSTED entries recorded for the same document.
func (s *eventService) AuditDocument(ctx context.Context, tenantID string, doc derivation.Document) ([]derivation.Discrepancy, error) {
	derived, err := s.lens.Derive(doc)
	switch {
	case errors.Is(err, apperrors.ErrEventNotApplicable):
		derived = derivation.Derivation{SourceType: doc.SourceType(), SourceID: doc.SourceID()}
	case err != nil:
		return nil, err
	}

	entries, err := s.journalRepo.FindEntriesBySource(ctx, tenantID, doc.SourceType(), doc.SourceID())
	if err != nil {
		s.LogError(ctx, err, "Failed to load entries for document",
			slog.String("source_type", doc.SourceType()),
			slog.String("source_id", doc.SourceID()))
		return nil, fmt.Errorf("failed to load entries for document: %w", err)
	}

	var posted []domain.JournalLine
	for _, e := range entries {
		if e.Status == domain.Posted {
			posted = append(posted, e.Lines...)
		}
	}

	codes := map[string]string{}
	if len(posted) > 0 {
		accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, lineAccountIDs(posted))
		if err != nil {
			return nil, fmt.Errorf("failed to load accounts for audit: %w", err)
		}
		for id, a := range accounts {
			codes[id] = a.Code
		}
	}

	discrepancies := s.lens.Audit(derived, posted, codes)
	if discrepancies == nil {
		discrepancies = []derivation.Discrepancy{}
	}
	s.LogInfo(ctx, "Document audited",
		slog.String("source_type", doc.SourceType()),
		slog.String("source_id", doc.SourceID()),
		slog.Int("discrepancies", len(discrepancies)))
	return discrepancies, nil
}
