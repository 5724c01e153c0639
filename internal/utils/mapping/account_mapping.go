package mapping

import (
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		TenantID:        d.TenantID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     models.AccountType(d.AccountType),
		Subtype:         d.Subtype,
		ParentAccountID: optional(d.ParentAccountID),
		IsSystem:        d.IsSystem,
		NormalBalance:   string(d.NormalBalance),
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		TenantID:        m.TenantID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		Subtype:         m.Subtype,
		ParentAccountID: valueOf(m.ParentAccountID),
		IsSystem:        m.IsSystem,
		NormalBalance:   domain.Side(m.NormalBalance),
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
