package services

import (
	"context"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its tenant-unique code.
	GetAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error)

	// GetAccountTree returns the tenant's accounts depth-first, siblings ordered by code.
	GetAccountTree(ctx context.Context, tenantID string) ([]domain.AccountNode, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// SeedDefaultTemplate creates the default system accounts that are missing and returns them.
	SeedDefaultTemplate(ctx context.Context, tenantID string, userID string) ([]domain.Account, error)

	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// RenameAccount changes the name of a non-system account.
	RenameAccount(ctx context.Context, tenantID string, accountID string, name string, userID string) (*domain.Account, error)

	// DeactivateAccount marks a non-system account as inactive.
	DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
