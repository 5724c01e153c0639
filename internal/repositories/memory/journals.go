package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type journalRepository struct {
	run access
}

func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return e
}

func (r *journalRepository) FindEntryByID(_ context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	var out *domain.JournalEntry
	err := r.run(false, func(st *state) error {
		e, ok := st.entries[entryID]
		if !ok || e.TenantID != tenantID {
			return apperrors.WithResource(apperrors.ErrEntryNotFound, entryID)
		}
		c := copyEntry(e)
		out = &c
		return nil
	})
	return out, err
}

func (r *journalRepository) FindProcessedEvent(_ context.Context, tenantID string, sourceEventID string) (*domain.ProcessedEvent, error) {
	var out *domain.ProcessedEvent
	err := r.run(false, func(st *state) error {
		p, ok := st.processed[tenantKey{tenantID, sourceEventID}]
		if !ok {
			return apperrors.WithResource(apperrors.ErrNotFound, sourceEventID)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *journalRepository) FindEntriesBySource(_ context.Context, tenantID string, sourceType string, sourceID string) ([]domain.JournalEntry, error) {
	out := []domain.JournalEntry{}
	err := r.run(false, func(st *state) error {
		for _, id := range st.entryOrder {
			e := st.entries[id]
			if e.TenantID == tenantID && e.SourceType == sourceType && e.SourceID == sourceID {
				out = append(out, copyEntry(e))
			}
		}
		return nil
	})
	return out, err
}

func (r *journalRepository) ListPostedLines(_ context.Context, tenantID string, filter portsrepo.LineFilter) ([]domain.PostedLine, error) {
	out := []domain.PostedLine{}
	err := r.run(false, func(st *state) error {
		for _, id := range st.entryOrder {
			e := st.entries[id]
			if e.TenantID != tenantID || e.Status == domain.Draft {
				continue
			}
			if !filter.To.IsZero() && e.EntryDate.After(filter.To) {
				continue
			}
			for _, l := range e.Lines {
				if filter.AccountID != "" && l.AccountID != filter.AccountID {
					continue
				}
				out = append(out, domain.PostedLine{
					JournalLine: l,
					EntryNumber: e.EntryNumber,
					EntryDate:   e.EntryDate,
					EntryStatus: e.Status,
					EntryMemo:   e.Memo,
				})
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.EntryNumber != b.EntryNumber {
			return a.EntryNumber < b.EntryNumber
		}
		return a.LineNumber < b.LineNumber
	})
	return out, err
}

func (r *journalRepository) ClaimEvent(_ context.Context, event domain.ProcessedEvent) (bool, error) {
	claimed := false
	err := r.run(true, func(st *state) error {
		k := tenantKey{event.TenantID, event.SourceEventID}
		if _, exists := st.processed[k]; exists {
			return nil
		}
		st.processed[k] = event
		claimed = true
		return nil
	})
	return claimed, err
}

func (r *journalRepository) NextEntryNumber(_ context.Context, tenantID string) (int64, error) {
	var next int64
	err := r.run(true, func(st *state) error {
		st.sequences[tenantID]++
		next = st.sequences[tenantID]
		return nil
	})
	return next, err
}

// LockEntrySequence is a no-op: transactions already run one at a time.
func (r *journalRepository) LockEntrySequence(_ context.Context, _ string) error {
	return nil
}

func (r *journalRepository) SaveEntry(_ context.Context, entry domain.JournalEntry) error {
	return r.run(true, func(st *state) error {
		if _, ok := st.entries[entry.EntryID]; ok {
			return apperrors.ErrDuplicate
		}
		for _, l := range entry.Lines {
			if !l.Amount.IsPositive() {
				return apperrors.New(apperrors.ErrInvalidLine, "line %d: amount must be positive", l.LineNumber)
			}
		}
		st.entries[entry.EntryID] = copyEntry(entry)
		st.entryOrder = append(st.entryOrder, entry.EntryID)
		return nil
	})
}

func (r *journalRepository) MarkPosted(_ context.Context, tenantID string, entryID string, entryNumber int64, userID string, now time.Time) error {
	return r.run(true, func(st *state) error {
		e, ok := st.entries[entryID]
		if !ok || e.TenantID != tenantID {
			return apperrors.WithResource(apperrors.ErrEntryNotFound, entryID)
		}
		if e.Status != domain.Draft {
			return apperrors.New(apperrors.ErrInvalidTransition, "%s -> %s", e.Status, domain.Posted)
		}
		e.Status = domain.Posted
		e.EntryNumber = entryNumber
		e.LastUpdatedAt = now
		e.LastUpdatedBy = userID
		st.entries[entryID] = e
		return nil
	})
}

func (r *journalRepository) MarkReversed(_ context.Context, tenantID string, entryID string, reversedByEntryID string, userID string, now time.Time) error {
	return r.run(true, func(st *state) error {
		e, ok := st.entries[entryID]
		if !ok || e.TenantID != tenantID {
			return apperrors.WithResource(apperrors.ErrEntryNotFound, entryID)
		}
		if err := e.TransitionTo(domain.Reversed); err != nil {
			return err
		}
		e.ReversedByEntryID = reversedByEntryID
		e.LastUpdatedAt = now
		e.LastUpdatedBy = userID
		st.entries[entryID] = e
		return nil
	})
}

type reportingRepository struct {
	run access
}

func (r *reportingRepository) GetTrialBalanceData(_ context.Context, tenantID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	out := []domain.TrialBalanceRow{}
	err := r.run(false, func(st *state) error {
		debits := map[string]decimal.Decimal{}
		credits := map[string]decimal.Decimal{}
		for _, e := range st.entries {
			if e.TenantID != tenantID || e.Status == domain.Draft || e.EntryDate.After(asOf) {
				continue
			}
			for _, l := range e.Lines {
				d, c := zeroIfMissing(debits, l.AccountID), zeroIfMissing(credits, l.AccountID)
				if l.Side == domain.Debit {
					d = d.Add(l.Amount)
				} else {
					c = c.Add(l.Amount)
				}
				debits[l.AccountID], credits[l.AccountID] = d, c
			}
		}
		for id := range debits {
			a := st.accounts[id]
			out = append(out, domain.TrialBalanceRow{
				AccountID:   id,
				AccountCode: a.Code,
				AccountName: a.Name,
				AccountType: a.AccountType,
				DebitTotal:  debits[id],
				CreditTotal: credits[id],
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AccountCode < out[j].AccountCode })
	return out, err
}
