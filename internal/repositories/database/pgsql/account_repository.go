package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/tenant_ledger/internal/models"
	"github.com/SscSPs/tenant_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `account_id, tenant_id, code, name, account_type, subtype, parent_account_id,
	is_system, normal_balance, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	db DBTX
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(db DBTX) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{db: db}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.TenantID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.Subtype,
		&m.ParentAccountID,
		&m.IsSystem,
		&m.NormalBalance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// SaveAccount inserts a new account. A taken id or (tenant, code) yields apperrors.ErrDuplicate.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.TenantID,
		m.Code,
		m.Name,
		m.AccountType,
		m.Subtype,
		m.ParentAccountID,
		m.IsSystem,
		m.NormalBalance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "failed to save account "+m.Code)
	}
	return nil
}

// UpdateAccount persists the mutable fields of an account: name and active flag.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND account_id = $2;
	`
	tag, err := r.db.Exec(ctx, query,
		account.TenantID,
		account.AccountID,
		account.Name,
		account.IsActive,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.WithResource(apperrors.ErrAccountNotFound, account.AccountID)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2;`
	a, err := scanAccount(r.db.QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.WithResource(apperrors.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &a, nil
}

// FindAccountByCode retrieves an account by its tenant-unique code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2;`
	a, err := scanAccount(r.db.QueryRow(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.WithResource(apperrors.ErrAccountNotFound, code)
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return &a, nil
}

// FindAccountsByIDs retrieves the tenant's accounts among accountIDs, keyed by id.
// Unknown and foreign ids are absent from the result.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	list, err := r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND account_id = ANY($2);`,
		tenantID, accountIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Account, len(list))
	for _, a := range list {
		out[a.AccountID] = a
	}
	return out, nil
}

// FindAccountsByCodes retrieves the tenant's accounts among codes, keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}
	list, err := r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND code = ANY($2);`,
		tenantID, codes)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Account, len(list))
	for _, a := range list {
		out[a.Code] = a
	}
	return out, nil
}

// ListAccounts returns every account of the tenant ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	return r.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 ORDER BY code;`,
		tenantID)
}
