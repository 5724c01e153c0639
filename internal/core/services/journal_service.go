package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/observability/metrics"
	"github.com/SscSPs/tenant_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// errEventClaimed aborts a unit of work whose source event was claimed by a
// concurrent writer.
var errEventClaimed = errors.New("source event already claimed")

// journalService provides core journal entry operations.
type journalService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	journalRepo portsrepo.JournalReader
	txManager   portsrepo.TransactionManager
	metrics     *metrics.Ledger
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalMetrics records posting outcomes on m.
func WithJournalMetrics(m *metrics.Ledger) JournalServiceOption {
	return func(s *journalService) { s.metrics = m }
}

// WithJournalClock overrides the time source of the journal service.
func WithJournalClock(now func() time.Time) JournalServiceOption {
	return func(s *journalService) { s.setClock(now) }
}

// WithJournalIDGenerator overrides how entry and line ids are generated.
func WithJournalIDGenerator(gen func() string) JournalServiceOption {
	return func(s *journalService) { s.setIDGenerator(gen) }
}

// NewJournalService creates a new JournalService.
func NewJournalService(
	accountRepo portsrepo.AccountReader,
	journalRepo portsrepo.JournalReader,
	txManager portsrepo.TransactionManager,
	options ...JournalServiceOption,
) portssvc.JournalSvcFacade {
	svc := &journalService{
		BaseService: newBaseService(),
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		txManager:   txManager,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure JournalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// PostEntry posts draft exactly once per (tenant, source event). A repeated
// source event returns the entry posted the first time with Replayed set.
func (s *journalService) PostEntry(ctx context.Context, tenantID string, draft domain.DraftEntry) (*domain.PostResult, error) {
	if strings.TrimSpace(draft.SourceEventID) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "sourceEventID is required")
	}

	prior, err := s.findReplay(ctx, tenantID, draft.SourceEventID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		s.metrics.RecordReplay(ctx, draft.SourceType)
		s.LogDebug(ctx, "Source event already posted",
			slog.String("source_event_id", draft.SourceEventID),
			slog.String("entry_id", prior.Entry.EntryID))
		return prior, nil
	}

	if err := draft.CheckShape(); err != nil {
		s.reject(ctx, err, draft.SourceEventID)
		return nil, err
	}

	now := s.now()
	entry := newEntry(tenantID, s.newID(), draft, s.entryDate(draft.EntryDate), now)

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		accounts, err := resolveAccounts(ctx, tx.Accounts, tenantID, draft.Lines)
		if err != nil {
			return err
		}
		entry.Lines = s.buildLines(entry.EntryID, draft.Lines, accounts)

		if err := claimEvent(ctx, tx, entry, now); err != nil {
			return err
		}
		number, err := tx.Journals.NextEntryNumber(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to allocate entry number: %w", err)
		}
		entry.EntryNumber = number
		if err := entry.TransitionTo(domain.Posted); err != nil {
			return err
		}
		if err := tx.Journals.SaveEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to save journal entry: %w", err)
		}
		return applyDeltas(ctx, tx, tenantID, entry.Lines, normalsOf(accounts), now)
	})
	if errors.Is(err, errEventClaimed) {
		return s.concurrentWinner(ctx, tenantID, draft)
	}
	if err != nil {
		s.fail(ctx, err, "Failed to post journal entry", draft.SourceEventID)
		return nil, err
	}

	s.metrics.RecordEntryPosted(ctx, entry.SourceType)
	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.Int64("entry_number", entry.EntryNumber),
		slog.String("source_event_id", entry.SourceEventID))
	return &domain.PostResult{Entry: entry}, nil
}

// SaveDraft stores an entry for later posting. Lines must be well formed and
// reference postable accounts, but the entry need not balance yet.
func (s *journalService) SaveDraft(ctx context.Context, tenantID string, draft domain.DraftEntry) (*domain.JournalEntry, error) {
	if err := draft.CheckLines(); err != nil {
		return nil, err
	}

	now := s.now()
	entry := newEntry(tenantID, s.newID(), draft, s.entryDate(draft.EntryDate), now)
	if entry.SourceEventID == "" {
		entry.SourceEventID = "draft:" + entry.EntryID
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		accounts, err := resolveAccounts(ctx, tx.Accounts, tenantID, draft.Lines)
		if err != nil {
			return err
		}
		entry.Lines = s.buildLines(entry.EntryID, draft.Lines, accounts)
		_, err = tx.Journals.FindProcessedEvent(ctx, tenantID, entry.SourceEventID)
		switch {
		case err == nil:
			return apperrors.WithResource(apperrors.ErrDuplicateSourceEvent, entry.SourceEventID)
		case !errors.Is(err, apperrors.ErrNotFound):
			return fmt.Errorf("failed to look up processed event: %w", err)
		}
		if err := tx.Journals.SaveEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to save draft entry: %w", err)
		}
		return nil
	})
	if err != nil {
		s.fail(ctx, err, "Failed to save draft entry", entry.SourceEventID)
		return nil, err
	}

	s.LogInfo(ctx, "Draft entry saved", slog.String("entry_id", entry.EntryID))
	return &entry, nil
}

// PostDraft validates a stored draft as PostEntry would and moves it to POSTED.
// Posting an already posted draft returns it with Replayed set. A draft whose
// source event another entry has posted fails with DUPLICATE_SOURCE_EVENT.
func (s *journalService) PostDraft(ctx context.Context, tenantID string, entryID string, userID string) (*domain.PostResult, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	switch entry.Status {
	case domain.Posted:
		return &domain.PostResult{Entry: *entry, Replayed: true}, nil
	case domain.Reversed:
		return nil, apperrors.New(apperrors.ErrInvalidTransition, "%s -> %s", entry.Status, domain.Posted)
	}

	draft := draftOf(*entry)
	if err := draft.CheckShape(); err != nil {
		s.reject(ctx, err, entry.SourceEventID)
		return nil, err
	}

	now := s.now()
	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		accounts, err := resolveAccounts(ctx, tx.Accounts, tenantID, draft.Lines)
		if err != nil {
			return err
		}
		if err := claimEvent(ctx, tx, *entry, now); err != nil {
			return err
		}
		number, err := tx.Journals.NextEntryNumber(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to allocate entry number: %w", err)
		}
		if err := entry.TransitionTo(domain.Posted); err != nil {
			return err
		}
		if err := tx.Journals.MarkPosted(ctx, tenantID, entry.EntryID, number, userID, now); err != nil {
			return err
		}
		entry.EntryNumber = number
		entry.LastUpdatedAt = now
		entry.LastUpdatedBy = userID
		return applyDeltas(ctx, tx, tenantID, entry.Lines, normalsOf(accounts), now)
	})
	if errors.Is(err, errEventClaimed) {
		holder, herr := s.findReplay(ctx, tenantID, entry.SourceEventID)
		if herr != nil {
			return nil, herr
		}
		if holder != nil && holder.Entry.EntryID != entry.EntryID {
			err = apperrors.WithResource(apperrors.ErrDuplicateSourceEvent, entry.SourceEventID)
			s.fail(ctx, err, "Failed to post draft entry", entry.SourceEventID)
			return nil, err
		}
		return s.concurrentWinner(ctx, tenantID, draft)
	}
	if err != nil {
		s.fail(ctx, err, "Failed to post draft entry", entry.SourceEventID)
		return nil, err
	}

	s.metrics.RecordEntryPosted(ctx, entry.SourceType)
	s.LogInfo(ctx, "Draft entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.Int64("entry_number", entry.EntryNumber))
	return &domain.PostResult{Entry: *entry}, nil
}

// ReverseEntry posts the mirror image of a POSTED entry and marks the original
// REVERSED. Reversals themselves cannot be reversed.
func (s *journalService) ReverseEntry(ctx context.Context, tenantID string, entryID string, reason string, userID string) (*domain.JournalEntry, error) {
	now := s.now()
	var reversal domain.JournalEntry

	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		original, err := tx.Journals.FindEntryByID(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if original.IsReversal() {
			return apperrors.New(apperrors.ErrAlreadyReversed, "entry %s is itself a reversal", original.EntryID)
		}
		if err := original.TransitionTo(domain.Reversed); err != nil {
			return err
		}

		reversal = domain.JournalEntry{
			EntryID:         s.newID(),
			TenantID:        tenantID,
			EntryDate:       reversalDate(s.today(), original.EntryDate),
			Status:          domain.Posted,
			SourceType:      domain.ReversalSourceType,
			SourceID:        original.EntryID,
			SourceEventID:   domain.ReversalEventID(original.EntryID),
			Memo:            reversalMemo(original.EntryNumber, reason),
			CurrencyCode:    original.CurrencyCode,
			ReversesEntryID: original.EntryID,
			AuditFields:     newAudit(now, userID),
		}
		reversal.Lines = accounting.ReverseLines(original.Lines)
		for i := range reversal.Lines {
			reversal.Lines[i].LineID = s.newID()
			reversal.Lines[i].EntryID = reversal.EntryID
		}

		if err := claimEvent(ctx, tx, reversal, now); err != nil {
			if errors.Is(err, errEventClaimed) {
				return apperrors.WithResource(apperrors.ErrAlreadyReversed, original.EntryID)
			}
			return err
		}
		number, err := tx.Journals.NextEntryNumber(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to allocate entry number: %w", err)
		}
		reversal.EntryNumber = number

		if err := tx.Journals.SaveEntry(ctx, reversal); err != nil {
			return fmt.Errorf("failed to save reversing entry: %w", err)
		}
		if err := tx.Journals.MarkReversed(ctx, tenantID, original.EntryID, reversal.EntryID, userID, now); err != nil {
			return err
		}

		accounts, err := tx.Accounts.FindAccountsByIDs(ctx, tenantID, lineAccountIDs(reversal.Lines))
		if err != nil {
			return fmt.Errorf("failed to load accounts for reversal: %w", err)
		}
		normals := make(map[string]domain.Side, len(accounts))
		for id, a := range accounts {
			normals[id] = a.NormalBalance
		}
		return applyDeltas(ctx, tx, tenantID, reversal.Lines, normals, now)
	})
	if err != nil {
		s.fail(ctx, err, "Failed to reverse journal entry", domain.ReversalEventID(entryID))
		return nil, err
	}

	s.metrics.RecordEntryReversed(ctx)
	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversing_entry_id", reversal.EntryID))
	return &reversal, nil
}

func (s *journalService) GetEntry(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

// GetAccountLedger walks the account's posted lines in order. Lines dated
// before the range only contribute to the opening balance.
func (s *journalService) GetAccountLedger(ctx context.Context, tenantID string, accountID string, dateRange domain.DateRange) (*domain.AccountLedger, error) {
	if !dateRange.From.IsZero() && !dateRange.To.IsZero() && dateRange.From.After(dateRange.To) {
		return nil, apperrors.New(apperrors.ErrValidation, "from %s is after to %s",
			dateRange.From.Format(time.DateOnly), dateRange.To.Format(time.DateOnly))
	}

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	lines, err := s.journalRepo.ListPostedLines(ctx, tenantID, portsrepo.LineFilter{AccountID: accountID, To: dateRange.To})
	if err != nil {
		s.LogError(ctx, err, "Failed to list posted lines", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list posted lines: %w", err)
	}

	ledger := &domain.AccountLedger{
		Account:        *account,
		Range:          dateRange,
		OpeningBalance: decimal.Zero,
		Lines:          []domain.LedgerLine{},
	}
	running := decimal.Zero
	for _, l := range lines {
		running = running.Add(accounting.SignedAmount(l.Side, l.Amount, account.NormalBalance))
		if dateRange.Before(l.EntryDate) {
			ledger.OpeningBalance = running
			continue
		}
		if !dateRange.Contains(l.EntryDate) {
			continue
		}
		ledger.Lines = append(ledger.Lines, domain.LedgerLine{PostedLine: l, RunningBalance: running})
	}
	ledger.ClosingBalance = running
	return ledger, nil
}

// findReplay returns the earlier result for sourceEventID, or nil when the
// event has not been posted.
func (s *journalService) findReplay(ctx context.Context, tenantID, sourceEventID string) (*domain.PostResult, error) {
	processed, err := s.journalRepo.FindProcessedEvent(ctx, tenantID, sourceEventID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to look up processed event", slog.String("source_event_id", sourceEventID))
		return nil, fmt.Errorf("failed to look up processed event: %w", err)
	}
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, processed.EntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entry %s for event %s: %w", processed.EntryID, sourceEventID, err)
	}
	return &domain.PostResult{Entry: *entry, Replayed: true}, nil
}

// concurrentWinner loads the entry of the writer that claimed the event first.
func (s *journalService) concurrentWinner(ctx context.Context, tenantID string, draft domain.DraftEntry) (*domain.PostResult, error) {
	winner, err := s.findReplay(ctx, tenantID, draft.SourceEventID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, apperrors.Internal("claimed source event has no entry", errEventClaimed)
	}
	s.metrics.RecordReplay(ctx, draft.SourceType)
	s.LogInfo(ctx, "Lost posting race to concurrent writer",
		slog.String("source_event_id", draft.SourceEventID),
		slog.String("entry_id", winner.Entry.EntryID))
	return winner, nil
}

func (s *journalService) reject(ctx context.Context, err error, sourceEventID string) {
	s.metrics.RecordRejection(ctx, string(apperrors.CodeOf(err)))
	s.LogInfo(ctx, "Journal entry rejected",
		slog.String("source_event_id", sourceEventID),
		slog.String("reason", err.Error()))
}

// fail records err as a rejection when it is a client error and logs it as
// an error otherwise.
func (s *journalService) fail(ctx context.Context, err error, msg string, sourceEventID string) {
	if apperrors.KindOf(err) != apperrors.KindInternal {
		s.reject(ctx, err, sourceEventID)
		return
	}
	s.LogError(ctx, err, msg, slog.String("source_event_id", sourceEventID))
}

func (s *journalService) entryDate(requested time.Time) time.Time {
	if requested.IsZero() {
		return s.today()
	}
	return dateOf(requested)
}

func (s *journalService) buildLines(entryID string, draftLines []domain.DraftLine, accounts []domain.Account) []domain.JournalLine {
	lines := make([]domain.JournalLine, len(draftLines))
	for i, l := range draftLines {
		lines[i] = domain.JournalLine{
			LineID:     s.newID(),
			EntryID:    entryID,
			LineNumber: i + 1,
			AccountID:  accounts[i].AccountID,
			Side:       l.Side,
			Amount:     l.Amount,
			Memo:       l.Memo,
		}
	}
	return lines
}

func newEntry(tenantID, entryID string, draft domain.DraftEntry, entryDate, now time.Time) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:       entryID,
		TenantID:      tenantID,
		EntryDate:     entryDate,
		Status:        domain.Draft,
		SourceType:    draft.SourceType,
		SourceID:      draft.SourceID,
		SourceEventID: draft.SourceEventID,
		Memo:          draft.Memo,
		CurrencyCode:  strings.ToUpper(draft.CurrencyCode),
		AuditFields:   newAudit(now, draft.CreatedBy),
	}
}

// draftOf rebuilds the draft a stored entry was saved from.
func draftOf(entry domain.JournalEntry) domain.DraftEntry {
	lines := make([]domain.DraftLine, len(entry.Lines))
	for i, l := range entry.Lines {
		lines[i] = domain.DraftLine{AccountID: l.AccountID, Side: l.Side, Amount: l.Amount, Memo: l.Memo}
	}
	return domain.DraftEntry{
		SourceType:    entry.SourceType,
		SourceID:      entry.SourceID,
		SourceEventID: entry.SourceEventID,
		EntryDate:     entry.EntryDate,
		Memo:          entry.Memo,
		CurrencyCode:  entry.CurrencyCode,
		CreatedBy:     entry.CreatedBy,
		Lines:         lines,
	}
}

// resolveAccounts returns the account of each line, in line order. Unknown
// accounts, accounts of other tenants and inactive accounts are all rejected
// with the same error so foreign ids reveal nothing.
func resolveAccounts(ctx context.Context, repo portsrepo.AccountReader, tenantID string, lines []domain.DraftLine) ([]domain.Account, error) {
	var ids, codes []string
	for _, l := range lines {
		if l.AccountID != "" {
			ids = append(ids, l.AccountID)
		} else {
			codes = append(codes, l.AccountCode)
		}
	}

	byID := map[string]domain.Account{}
	byCode := map[string]domain.Account{}
	var err error
	if len(ids) > 0 {
		if byID, err = repo.FindAccountsByIDs(ctx, tenantID, ids); err != nil {
			return nil, fmt.Errorf("failed to load line accounts: %w", err)
		}
	}
	if len(codes) > 0 {
		if byCode, err = repo.FindAccountsByCodes(ctx, tenantID, codes); err != nil {
			return nil, fmt.Errorf("failed to load line accounts: %w", err)
		}
	}

	accounts := make([]domain.Account, len(lines))
	for i, l := range lines {
		var account domain.Account
		var ok bool
		if l.AccountID != "" {
			account, ok = byID[l.AccountID]
		} else {
			account, ok = byCode[l.AccountCode]
		}
		if !ok || !account.Postable(tenantID) {
			return nil, apperrors.New(apperrors.ErrAccountInactiveOrForeign, "line %d: %s", i+1, l.AccountRef())
		}
		accounts[i] = account
	}
	return accounts, nil
}

func claimEvent(ctx context.Context, tx portsrepo.TxRepositories, entry domain.JournalEntry, now time.Time) error {
	claimed, err := tx.Journals.ClaimEvent(ctx, domain.ProcessedEvent{
		TenantID:      entry.TenantID,
		SourceEventID: entry.SourceEventID,
		EntryID:       entry.EntryID,
		ProcessedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("failed to claim source event: %w", err)
	}
	if !claimed {
		return errEventClaimed
	}
	return nil
}

// applyDeltas updates stored balances. normals maps account id to normal balance.
func applyDeltas(ctx context.Context, tx portsrepo.TxRepositories, tenantID string, lines []domain.JournalLine, normals map[string]domain.Side, now time.Time) error {
	for _, l := range lines {
		if _, ok := normals[l.AccountID]; !ok {
			return apperrors.Internal("account missing for balance update", fmt.Errorf("account %s", l.AccountID))
		}
	}
	if err := tx.Balances.ApplyBalanceDeltas(ctx, tenantID, accounting.BalanceDeltas(lines, normals), now); err != nil {
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}
	return nil
}

func normalsOf(accounts []domain.Account) map[string]domain.Side {
	normals := make(map[string]domain.Side, len(accounts))
	for _, a := range accounts {
		normals[a.AccountID] = a.NormalBalance
	}
	return normals
}

func lineAccountIDs(lines []domain.JournalLine) []string {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			ids = append(ids, l.AccountID)
		}
	}
	return ids
}

// reversalDate books the reversal today, or on the original date when that is later.
func reversalDate(today, original time.Time) time.Time {
	if original.After(today) {
		return original
	}
	return today
}

func reversalMemo(entryNumber int64, reason string) string {
	memo := fmt.Sprintf("Reversal of entry #%d", entryNumber)
	if reason = strings.TrimSpace(reason); reason != "" {
		memo += ": " + reason
	}
	return memo
}
