// Package memory implements the repository ports on in-process maps.
// It is suitable for single-instance deployments and testing.
package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type tenantKey struct {
	tenantID string
	id       string
}

// state is one consistent version of the store. Transactions work on a copy
// and swap it in on commit.
type state struct {
	accounts   map[string]domain.Account
	entries    map[string]domain.JournalEntry
	entryOrder []string
	processed  map[tenantKey]domain.ProcessedEvent
	sequences  map[string]int64
	balances   map[tenantKey]domain.AccountBalance
}

func newState() *state {
	return &state{
		accounts:  make(map[string]domain.Account),
		entries:   make(map[string]domain.JournalEntry),
		processed: make(map[tenantKey]domain.ProcessedEvent),
		sequences: make(map[string]int64),
		balances:  make(map[tenantKey]domain.AccountBalance),
	}
}

// clone copies the maps. Stored entries never have their line slices
// mutated in place, so sharing them between versions is safe.
func (st *state) clone() *state {
	c := &state{
		accounts:   make(map[string]domain.Account, len(st.accounts)),
		entries:    make(map[string]domain.JournalEntry, len(st.entries)),
		entryOrder: append([]string(nil), st.entryOrder...),
		processed:  make(map[tenantKey]domain.ProcessedEvent, len(st.processed)),
		sequences:  make(map[string]int64, len(st.sequences)),
		balances:   make(map[tenantKey]domain.AccountBalance, len(st.balances)),
	}
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.entries {
		c.entries[k] = v
	}
	for k, v := range st.processed {
		c.processed[k] = v
	}
	for k, v := range st.sequences {
		c.sequences[k] = v
	}
	for k, v := range st.balances {
		c.balances[k] = v
	}
	return c
}

// access runs fn against a state. Outside a transaction it takes the store
// lock; inside one the transaction already holds it.
type access func(write bool, fn func(st *state) error) error

// Store is the in-memory database. It implements TransactionManager; units of
// work are serialized by a single lock.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) locked(write bool, fn func(st *state) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

// WithinTx runs fn on a private copy of the state and publishes it only when
// fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.st.clone()
	direct := func(_ bool, f func(st *state) error) error { return f(working) }
	if err := fn(ctx, repositoriesOn(direct)); err != nil {
		return err
	}
	s.st = working
	return nil
}

// Provider returns the repositories and transaction manager backed by s.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	repos := repositoriesOn(s.locked)
	return portsrepo.RepositoryProvider{
		AccountRepo:   repos.Accounts,
		JournalRepo:   repos.Journals,
		BalanceRepo:   repos.Balances,
		ReportingRepo: &reportingRepository{run: s.locked},
		TxManager:     s,
	}
}

func repositoriesOn(run access) portsrepo.TxRepositories {
	return portsrepo.TxRepositories{
		Accounts: &accountRepository{run: run},
		Journals: &journalRepository{run: run},
		Balances: &balanceRepository{run: run},
	}
}

var (
	_ portsrepo.TransactionManager      = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)
	_ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)
	_ portsrepo.BalanceRepository       = (*balanceRepository)(nil)
	_ portsrepo.ReportingRepository     = (*reportingRepository)(nil)
)

func zeroIfMissing(m map[string]decimal.Decimal, key string) decimal.Decimal {
	if v, ok := m[key]; ok {
		return v
	}
	return decimal.Zero
}
