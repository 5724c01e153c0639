package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	txManager     portsrepo.TransactionManager
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock overrides the time source of the reporting service.
func WithReportingClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) { s.setClock(now) }
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repos portsrepo.RepositoryProvider, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		BaseService:   newBaseService(),
		reportingRepo: repos.ReportingRepo,
		txManager:     repos.TxManager,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// GetTrialBalance generates a trial balance as of a date. A zero asOf means today.
// Both an original and its reversal stay on the books, so their totals cancel
// per account while the grand totals remain equal.
func (s *reportingService) GetTrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalance, error) {
	if asOf.IsZero() {
		asOf = s.today()
	} else {
		asOf = dateOf(asOf)
	}

	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, tenantID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data",
			slog.String("tenant_id", tenantID),
			slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	tb := &domain.TrialBalance{
		TenantID:     tenantID,
		AsOf:         asOf,
		Rows:         rows,
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	if tb.Rows == nil {
		tb.Rows = []domain.TrialBalanceRow{}
	}
	for _, r := range rows {
		tb.TotalDebits = tb.TotalDebits.Add(r.DebitTotal)
		tb.TotalCredits = tb.TotalCredits.Add(r.CreditTotal)
	}

	if !tb.Balanced() {
		s.LogError(ctx, fmt.Errorf("debits %s, credits %s", tb.TotalDebits, tb.TotalCredits),
			"Trial balance does not balance", slog.String("tenant_id", tenantID))
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("tenant_id", tenantID),
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Int("row_count", len(rows)))
	return tb, nil
}

// ReplayBalances rebuilds the stored balances from every posted line. The
// replay and the overwrite share one unit of work that holds off the tenant's
// postings, so no concurrent delta is lost.
func (s *reportingService) ReplayBalances(ctx context.Context, tenantID string) (map[string]domain.AccountBalance, error) {
	now := s.now()
	var replayed map[string]decimal.Decimal
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := tx.Journals.LockEntrySequence(ctx, tenantID); err != nil {
			return err
		}
		var err error
		if replayed, _, err = replay(ctx, tx.Accounts, tx.Journals, tenantID); err != nil {
			return err
		}
		return tx.Balances.ReplaceBalances(ctx, tenantID, replayed, now)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to replay balances", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to replay balances: %w", err)
	}

	out := make(map[string]domain.AccountBalance, len(replayed))
	for id, b := range replayed {
		out[id] = domain.AccountBalance{TenantID: tenantID, AccountID: id, Balance: b, UpdatedAt: now}
	}
	s.LogInfo(ctx, "Balances replayed", slog.String("tenant_id", tenantID), slog.Int("accounts", len(out)))
	return out, nil
}

// VerifyBalances reports accounts whose stored balance differs from a replay.
// A missing stored row counts as zero. Both are read under the posting lock
// so an in-flight posting is never reported as drift.
func (s *reportingService) VerifyBalances(ctx context.Context, tenantID string) ([]domain.BalanceMismatch, error) {
	var (
		replayed map[string]decimal.Decimal
		accounts map[string]domain.Account
		stored   []domain.AccountBalance
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := tx.Journals.LockEntrySequence(ctx, tenantID); err != nil {
			return err
		}
		var err error
		if replayed, accounts, err = replay(ctx, tx.Accounts, tx.Journals, tenantID); err != nil {
			return err
		}
		if stored, err = tx.Balances.ListBalances(ctx, tenantID); err != nil {
			return fmt.Errorf("failed to list stored balances: %w", err)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to verify balances", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to verify balances: %w", err)
	}

	storedByID := make(map[string]decimal.Decimal, len(stored))
	for _, b := range stored {
		storedByID[b.AccountID] = b.Balance
	}

	ids := make(map[string]bool, len(replayed)+len(storedByID))
	for id := range replayed {
		ids[id] = true
	}
	for id := range storedByID {
		ids[id] = true
	}

	mismatches := []domain.BalanceMismatch{}
	for id := range ids {
		want := valueOrZero(replayed, id)
		got := valueOrZero(storedByID, id)
		if want.Equal(got) {
			continue
		}
		mismatches = append(mismatches, domain.BalanceMismatch{
			AccountID:   id,
			AccountCode: accounts[id].Code,
			Stored:      got,
			Replayed:    want,
		})
	}
	sort.Slice(mismatches, func(i, j int) bool {
		if mismatches[i].AccountCode != mismatches[j].AccountCode {
			return mismatches[i].AccountCode < mismatches[j].AccountCode
		}
		return mismatches[i].AccountID < mismatches[j].AccountID
	})

	if len(mismatches) > 0 {
		s.LogInfo(ctx, "Stored balances disagree with replay",
			slog.String("tenant_id", tenantID),
			slog.Int("mismatches", len(mismatches)))
	}
	return mismatches, nil
}

// replay folds every posted line into per-account balances.
func replay(ctx context.Context, accountRepo portsrepo.AccountReader, journalRepo portsrepo.JournalReader, tenantID string) (map[string]decimal.Decimal, map[string]domain.Account, error) {
	list, err := accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts := make(map[string]domain.Account, len(list))
	normals := make(map[string]domain.Side, len(list))
	for _, a := range list {
		accounts[a.AccountID] = a
		normals[a.AccountID] = a.NormalBalance
	}

	posted, err := journalRepo.ListPostedLines(ctx, tenantID, portsrepo.LineFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posted lines: %w", err)
	}
	lines := make([]domain.JournalLine, len(posted))
	for i, p := range posted {
		lines[i] = p.JournalLine
	}
	return accounting.BalanceDeltas(lines, normals), accounts, nil
}

func valueOrZero(m map[string]decimal.Decimal, key string) decimal.Decimal {
	if v, ok := m[key]; ok {
		return v
	}
	return decimal.Zero
}
