package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

// Account is a row of the accounts table.
// ParentAccountID is nil for root accounts.
type Account struct {
	AccountID       string      `db:"account_id"`
	TenantID        string      `db:"tenant_id"`
	Code            string      `db:"code"`
	Name            string      `db:"name"`
	AccountType     AccountType `db:"account_type"`
	Subtype         string      `db:"subtype"`
	ParentAccountID *string     `db:"parent_account_id"`
	IsSystem        bool        `db:"is_system"`
	NormalBalance   string      `db:"normal_balance"`
	IsActive        bool        `db:"is_active"`
	AuditFields
}
