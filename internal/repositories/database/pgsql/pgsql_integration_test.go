package pgsql_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/core/services"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/tenant_ledger/migrations"
	"github.com/SscSPs/tenant_ledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const tenantA = "tenant-a"

type PostgresLedgerSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	repos     portsrepo.RepositoryProvider
	accounts  portssvc.AccountSvcFacade
	journal   portssvc.JournalSvcFacade
	reporting portssvc.ReportingService
	events    portssvc.EventService
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Postgres integration tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.ctx = context.Background()
	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(dsn, migrations.FS, slog.Default()))

	s.pool, err = database.NewPgxPool(s.ctx, dsn, true)
	s.Require().NoError(err)
}

func (s *PostgresLedgerSuite) TearDownSuite() {
	database.ClosePgxPool(s.pool)
	if s.container != nil {
		s.NoError(s.container.Terminate(s.ctx))
	}
}

func (s *PostgresLedgerSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE account_balances, processed_events, journal_lines, journal_entries, entry_sequences, accounts CASCADE;`)
	s.Require().NoError(err)

	s.repos = pgsql.NewRepositoryProvider(s.pool)
	s.accounts = services.NewAccountService(s.repos.AccountRepo)
	s.journal = services.NewJournalService(s.repos.AccountRepo, s.repos.JournalRepo, s.repos.TxManager)
	s.reporting = services.NewReportingService(s.repos)
	s.events = services.NewEventService(eventadapter.NewMapper(eventadapter.DefaultRules()),
		s.journal, s.repos.AccountRepo, s.repos.JournalRepo)

	_, err = s.accounts.SeedDefaultTemplate(s.ctx, tenantA, "system")
	s.Require().NoError(err)
}

func (s *PostgresLedgerSuite) balanceOf(code string) decimal.Decimal {
	account, err := s.accounts.GetAccountByCode(s.ctx, tenantA, code)
	s.Require().NoError(err)
	balances, err := s.repos.BalanceRepo.ListBalances(s.ctx, tenantA)
	s.Require().NoError(err)
	for _, b := range balances {
		if b.AccountID == account.AccountID {
			return b.Balance
		}
	}
	return decimal.Zero
}

func dtoAccount(code string) dto.CreateAccountRequest {
	return dto.CreateAccountRequest{Code: code, Name: "Petty cash", AccountType: domain.Asset}
}

func (s *PostgresLedgerSuite) invoice(eventID string) eventadapter.Event {
	e, err := eventadapter.NewEvent(eventID, tenantA, eventadapter.InvoiceIssued, time.Now(), eventadapter.InvoiceIssuedPayload{
		InvoiceID:  "INV-" + eventID,
		GrandTotal: decimal.RequireFromString("10750"),
		NetAmount:  decimal.RequireFromString("10000"),
		TaxAmount:  decimal.RequireFromString("750"),
		Currency:   "USD",
	})
	s.Require().NoError(err)
	return e
}

func (s *PostgresLedgerSuite) TestSeedIsIdempotentAndCodesAreUnique() {
	created, err := s.accounts.SeedDefaultTemplate(s.ctx, tenantA, "system")
	s.Require().NoError(err)
	s.Empty(created)

	_, err = s.accounts.CreateAccount(s.ctx, tenantA, dtoAccount(domain.CodeCash), "clerk")
	s.ErrorIs(err, apperrors.ErrCodeConflict)
}

func (s *PostgresLedgerSuite) TestConcurrentDuplicateDeliveryPostsOnce() {
	event := s.invoice("dup-1")

	var wg sync.WaitGroup
	results := make([]*portssvc.EventResult, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.events.ProcessEvent(s.ctx, event)
		}(i)
	}
	wg.Wait()

	entryIDs := map[string]bool{}
	for i := range results {
		s.Require().NoError(errs[i])
		entryIDs[results[i].EntryID] = true
	}
	s.Len(entryIDs, 1)
	s.True(decimal.RequireFromString("10750").Equal(s.balanceOf(domain.CodeAccountsReceivable)))

	var count int
	s.Require().NoError(s.pool.QueryRow(s.ctx, `SELECT count(*) FROM journal_entries WHERE tenant_id = $1`, tenantA).Scan(&count))
	s.Equal(1, count)
}

func (s *PostgresLedgerSuite) TestEntryNumbersAreGapless() {
	for i := 0; i < 5; i++ {
		_, err := s.events.ProcessEvent(s.ctx, s.invoice(fmt.Sprintf("seq-%d", i)))
		s.Require().NoError(err)
	}
	// A rejected posting must not consume a number.
	_, err := s.journal.PostEntry(s.ctx, tenantA, domain.DraftEntry{
		SourceType: "MANUAL", SourceEventID: "bad", CurrencyCode: "USD",
		Lines: []domain.DraftLine{
			{AccountCode: domain.CodeCash, Side: domain.Debit, Amount: decimal.NewFromInt(5)},
			{AccountCode: domain.CodeOwnersEquity, Side: domain.Credit, Amount: decimal.NewFromInt(4)},
		},
	})
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	_, err = s.events.ProcessEvent(s.ctx, s.invoice("seq-5"))
	s.Require().NoError(err)

	rows, err := s.pool.Query(s.ctx, `SELECT entry_number FROM journal_entries WHERE tenant_id = $1 ORDER BY entry_number`, tenantA)
	s.Require().NoError(err)
	defer rows.Close()
	want := int64(1)
	for rows.Next() {
		var n int64
		s.Require().NoError(rows.Scan(&n))
		s.Equal(want, n)
		want++
	}
	s.Equal(int64(7), want)
}

func (s *PostgresLedgerSuite) TestAmountsFinerThanTheCurrencyNeverReachStorage() {
	_, err := s.journal.PostEntry(s.ctx, tenantA, domain.DraftEntry{
		SourceType: "MANUAL", SourceEventID: "tiny", CurrencyCode: "USD",
		Lines: []domain.DraftLine{
			{AccountCode: domain.CodeCash, Side: domain.Debit, Amount: decimal.RequireFromString("0.0001")},
			{AccountCode: domain.CodeOwnersEquity, Side: domain.Credit, Amount: decimal.RequireFromString("0.00005")},
			{AccountCode: domain.CodeOwnersEquity, Side: domain.Credit, Amount: decimal.RequireFromString("0.00005")},
		},
	})
	s.ErrorIs(err, apperrors.ErrInvalidLine)

	var count int
	s.Require().NoError(s.pool.QueryRow(s.ctx, `SELECT count(*) FROM journal_lines WHERE tenant_id = $1`, tenantA).Scan(&count))
	s.Zero(count)
	tb, err := s.reporting.GetTrialBalance(s.ctx, tenantA, time.Time{})
	s.Require().NoError(err)
	s.True(tb.Balanced())
}

func (s *PostgresLedgerSuite) TestReversalAndConcurrentReReversal() {
	res, err := s.events.ProcessEvent(s.ctx, s.invoice("rev-1"))
	s.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.journal.ReverseEntry(s.ctx, tenantA, res.EntryID, "duplicate invoice", "clerk")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, apperrors.ErrAlreadyReversed)
	}
	s.Equal(1, succeeded)

	original, err := s.journal.GetEntry(s.ctx, tenantA, res.EntryID)
	s.Require().NoError(err)
	s.Equal(domain.Reversed, original.Status)
	s.True(s.balanceOf(domain.CodeAccountsReceivable).IsZero())

	tb, err := s.reporting.GetTrialBalance(s.ctx, tenantA, time.Time{})
	s.Require().NoError(err)
	s.True(tb.Balanced())
	mismatches, err := s.reporting.VerifyBalances(s.ctx, tenantA)
	s.Require().NoError(err)
	s.Empty(mismatches)
}

func (s *PostgresLedgerSuite) TestReplayConcurrentWithPostingsLosesNothing() {
	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.events.ProcessEvent(s.ctx, s.invoice(fmt.Sprintf("replay-%d", i)))
			errs <- err
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.reporting.ReplayBalances(s.ctx, tenantA)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	s.True(decimal.RequireFromString("215000").Equal(s.balanceOf(domain.CodeAccountsReceivable)))
	mismatches, err := s.reporting.VerifyBalances(s.ctx, tenantA)
	s.Require().NoError(err)
	s.Empty(mismatches)
}

func (s *PostgresLedgerSuite) TestDraftLifecycle() {
	draft, err := s.journal.SaveDraft(s.ctx, tenantA, domain.DraftEntry{
		SourceType: "MANUAL", CurrencyCode: "USD", CreatedBy: "clerk",
		Lines: []domain.DraftLine{
			{AccountCode: domain.CodeCash, Side: domain.Debit, Amount: decimal.NewFromInt(20)},
			{AccountCode: domain.CodeOwnersEquity, Side: domain.Credit, Amount: decimal.NewFromInt(20)},
		},
	})
	s.Require().NoError(err)
	s.Equal(domain.Draft, draft.Status)
	s.True(s.balanceOf(domain.CodeCash).IsZero())

	posted, err := s.journal.PostDraft(s.ctx, tenantA, draft.EntryID, "approver")
	s.Require().NoError(err)
	s.Equal(domain.Posted, posted.Entry.Status)
	s.Equal(int64(1), posted.Entry.EntryNumber)
	s.True(decimal.NewFromInt(20).Equal(s.balanceOf(domain.CodeCash)))

	again, err := s.journal.PostDraft(s.ctx, tenantA, draft.EntryID, "approver")
	s.Require().NoError(err)
	s.True(again.Replayed)

	ledger, err := s.journal.GetAccountLedger(s.ctx, tenantA, posted.Entry.Lines[0].AccountID, domain.DateRange{})
	s.Require().NoError(err)
	s.Require().Len(ledger.Lines, 1)
	s.True(decimal.NewFromInt(20).Equal(ledger.ClosingBalance))
}
