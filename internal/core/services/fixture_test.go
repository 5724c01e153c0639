package services_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/core/services"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/observability/metrics"
	"github.com/SscSPs/tenant_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ledgerFixture wires the services over a fresh in-memory store with a fixed
// clock and seeded charts for each tenant.
type ledgerFixture struct {
	t         *testing.T
	ctx       context.Context
	repos     portsrepo.RepositoryProvider
	accounts  portssvc.AccountSvcFacade
	journal   portssvc.JournalSvcFacade
	reporting portssvc.ReportingService
	events    portssvc.EventService
	now       time.Time
	charts    map[string]map[string]domain.Account // tenant -> code -> account
}

func newLedgerFixture(t *testing.T, tenants ...string) *ledgerFixture {
	t.Helper()
	return newLedgerFixtureWithRules(t, eventadapter.DefaultRules(), tenants...)
}

func newLedgerFixtureWithRules(t *testing.T, rules eventadapter.Rules, tenants ...string) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		t:      t,
		ctx:    context.Background(),
		repos:  memory.NewStore().Provider(),
		now:    time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		charts: map[string]map[string]domain.Account{},
	}
	clock := func() time.Time { return f.now }
	var seq atomic.Int64
	ids := func() string { return fmt.Sprintf("id-%06d", seq.Add(1)) }

	ledgerMetrics := metrics.NewNoop()
	f.accounts = services.NewAccountService(f.repos.AccountRepo,
		services.WithAccountClock(clock), services.WithAccountIDGenerator(ids))
	f.journal = services.NewJournalService(f.repos.AccountRepo, f.repos.JournalRepo, f.repos.TxManager,
		services.WithJournalClock(clock), services.WithJournalIDGenerator(ids), services.WithJournalMetrics(ledgerMetrics))
	f.reporting = services.NewReportingService(f.repos, services.WithReportingClock(clock))
	f.events = services.NewEventService(eventadapter.NewMapper(rules), f.journal, f.repos.AccountRepo, f.repos.JournalRepo,
		services.WithEventMetrics(ledgerMetrics))

	for _, tenant := range tenants {
		f.seed(tenant)
	}
	return f
}

func (f *ledgerFixture) seed(tenantID string) {
	f.t.Helper()
	_, err := f.accounts.SeedDefaultTemplate(f.ctx, tenantID, "system")
	require.NoError(f.t, err)
	list, err := f.repos.AccountRepo.ListAccounts(f.ctx, tenantID)
	require.NoError(f.t, err)
	chart := make(map[string]domain.Account, len(list))
	for _, a := range list {
		chart[a.Code] = a
	}
	f.charts[tenantID] = chart
}

func (f *ledgerFixture) account(tenantID, code string) domain.Account {
	f.t.Helper()
	a, ok := f.charts[tenantID][code]
	require.True(f.t, ok, "no account %s for %s", code, tenantID)
	return a
}

// balance returns the stored balance of an account, zero when it has none.
func (f *ledgerFixture) balance(tenantID, code string) decimal.Decimal {
	f.t.Helper()
	id := f.account(tenantID, code).AccountID
	balances, err := f.repos.BalanceRepo.ListBalances(f.ctx, tenantID)
	require.NoError(f.t, err)
	for _, b := range balances {
		if b.AccountID == id {
			return b.Balance
		}
	}
	return decimal.Zero
}

func (f *ledgerFixture) event(eventID, tenantID string, eventType eventadapter.EventType, payload any) eventadapter.Event {
	f.t.Helper()
	e, err := eventadapter.NewEvent(eventID, tenantID, eventType, f.now, payload)
	require.NoError(f.t, err)
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(code string, side domain.Side, amount string) domain.DraftLine {
	return domain.DraftLine{AccountCode: code, Side: side, Amount: dec(amount)}
}

func createReq(code, name string, accountType domain.AccountType) dto.CreateAccountRequest {
	return dto.CreateAccountRequest{Code: code, Name: name, AccountType: accountType}
}

func manualDraft(eventID string, lines ...domain.DraftLine) domain.DraftEntry {
	return domain.DraftEntry{
		SourceType:    "MANUAL",
		SourceID:      eventID,
		SourceEventID: eventID,
		CurrencyCode:  "USD",
		CreatedBy:     "clerk-1",
		Lines:         lines,
	}
}

// assertDecimal compares decimals by value so 10750 and 10750.00 are equal.
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}
