package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data.
// Every lookup is scoped to a tenant; accounts of other tenants are never returned.
type AccountReader interface {
	// FindAccountByID returns apperrors.ErrAccountNotFound when absent.
	FindAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error)

	// FindAccountByCode returns apperrors.ErrAccountNotFound when absent.
	FindAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error)

	// FindAccountsByIDs returns the accounts found, keyed by id. Missing ids are omitted.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountsByCodes returns the accounts found, keyed by code. Missing codes are omitted.
	FindAccountsByCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error)

	// ListAccounts returns all accounts of a tenant ordered by code.
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A duplicate code yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates name and active flag of an existing account.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// BalanceRepository maintains the derived per-account running balances.
type BalanceRepository interface {
	// ApplyBalanceDeltas adds each delta to the account's stored balance, creating rows as needed.
	ApplyBalanceDeltas(ctx context.Context, tenantID string, deltas map[string]decimal.Decimal, now time.Time) error

	// ListBalances returns every stored balance of a tenant.
	ListBalances(ctx context.Context, tenantID string) ([]domain.AccountBalance, error)

	// ReplaceBalances overwrites the tenant's stored balances with balances.
	ReplaceBalances(ctx context.Context, tenantID string, balances map[string]decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
