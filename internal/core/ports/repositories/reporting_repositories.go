package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetTrialBalanceData returns per-account debit and credit totals of POSTED and
	// REVERSED entries dated on or before asOf, ordered by account code.
	// Accounts without lines are omitted.
	GetTrialBalanceData(ctx context.Context, tenantID string, asOf time.Time) ([]domain.TrialBalanceRow, error)
}
