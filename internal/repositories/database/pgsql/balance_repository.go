package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxBalanceRepository struct {
	db DBTX
}

func newPgxBalanceRepository(db DBTX) portsrepo.BalanceRepository {
	return &PgxBalanceRepository{db: db}
}

var _ portsrepo.BalanceRepository = (*PgxBalanceRepository)(nil)

// sortedIDs orders the accounts so concurrent postings lock balance rows in
// the same order.
func sortedIDs(m map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ApplyBalanceDeltas upserts each account's balance by its delta.
func (r *PgxBalanceRepository) ApplyBalanceDeltas(ctx context.Context, tenantID string, deltas map[string]decimal.Decimal, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	query := `
		INSERT INTO account_balances (tenant_id, account_id, balance, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, account_id)
		DO UPDATE SET balance = account_balances.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at;
	`
	batch := &pgx.Batch{}
	for _, id := range sortedIDs(deltas) {
		batch.Queue(query, tenantID, id, deltas[id], now)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}
	return nil
}

// ListBalances returns the tenant's stored balances ordered by account id.
func (r *PgxBalanceRepository) ListBalances(ctx context.Context, tenantID string) ([]domain.AccountBalance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tenant_id, account_id, balance, updated_at
		FROM account_balances
		WHERE tenant_id = $1
		ORDER BY account_id;
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	balances, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccountBalance, error) {
		var b domain.AccountBalance
		err := row.Scan(&b.TenantID, &b.AccountID, &b.Balance, &b.UpdatedAt)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan balances: %w", err)
	}
	if balances == nil {
		balances = []domain.AccountBalance{}
	}
	return balances, nil
}

// ReplaceBalances deletes the tenant's balances and writes the given ones.
func (r *PgxBalanceRepository) ReplaceBalances(ctx context.Context, tenantID string, balances map[string]decimal.Decimal, now time.Time) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM account_balances WHERE tenant_id = $1;`, tenantID); err != nil {
		return fmt.Errorf("failed to clear balances: %w", err)
	}
	if len(balances) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, id := range sortedIDs(balances) {
		batch.Queue(`INSERT INTO account_balances (tenant_id, account_id, balance, updated_at) VALUES ($1, $2, $3, $4);`,
			tenantID, id, balances[id], now)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write balances: %w", err)
	}
	return nil
}
