package pgsql

import (
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres repositories over dbPool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	repos := repositoriesOn(dbPool)
	return portsrepo.RepositoryProvider{
		AccountRepo:   repos.Accounts,
		JournalRepo:   repos.Journals,
		BalanceRepo:   repos.Balances,
		ReportingRepo: newReportingRepository(dbPool),
		TxManager:     &BaseRepository{Pool: dbPool},
	}
}

func repositoriesOn(db DBTX) portsrepo.TxRepositories {
	return portsrepo.TxRepositories{
		Accounts: newPgxAccountRepository(db),
		Journals: newPgxJournalRepository(db),
		Balances: newPgxBalanceRepository(db),
	}
}
