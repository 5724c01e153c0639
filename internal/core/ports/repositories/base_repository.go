package repositories

import "context"

// TxRepositories are repositories bound to one open transaction.
type TxRepositories struct {
	Accounts AccountRepositoryFacade
	Journals JournalRepositoryFacade
	Balances BalanceRepository
}

// TransactionManager runs a unit of work atomically.
// fn's changes are committed when it returns nil and rolled back otherwise.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}
