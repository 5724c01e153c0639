package services

import (
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/observability/metrics"
	"github.com/SscSPs/tenant_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, ledgerMetrics *metrics.Ledger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	rules := eventadapter.DefaultRules()
	rules.CreditNotesToContraRevenue = cfg.CreditNotesToContraRevenue

	container.Account = NewAccountService(repos.AccountRepo)
	container.Journal = NewJournalService(
		repos.AccountRepo,
		repos.JournalRepo,
		repos.TxManager,
		WithJournalMetrics(ledgerMetrics),
	)
	container.Reporting = NewReportingService(repos)
	container.Event = NewEventService(
		eventadapter.NewMapper(rules),
		container.Journal,
		repos.AccountRepo,
		repos.JournalRepo,
		WithEventMetrics(ledgerMetrics),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
	_ portssvc.ReportingService = (*reportingService)(nil)
	_ portssvc.EventService     = (*eventService)(nil)
)
