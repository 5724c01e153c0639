package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	db DBTX
}

func newReportingRepository(db DBTX) portsrepo.ReportingRepository {
	return &reportingRepository{db: db}
}

// GetTrialBalanceData sums the lines of POSTED and REVERSED entries dated on
// or before asOf, per account. Reversals are ordinary entries, so an original
// and its reversal both count.
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, tenantID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name,
			a.account_type,
			COALESCE(SUM(CASE WHEN l.side = 'DEBIT' THEN l.amount END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN l.side = 'CREDIT' THEN l.amount END), 0) AS total_credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.tenant_id = $1
			AND e.entry_date <= $2::date
			AND e.status <> 'DRAFT'
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`

	rows, err := r.db.Query(ctx, query, tenantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string
		if err := rows.Scan(
			&row.AccountID,
			&row.AccountCode,
			&row.AccountName,
			&accountType,
			&row.DebitTotal,
			&row.CreditTotal,
		); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}
		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}
	return result, nil
}
