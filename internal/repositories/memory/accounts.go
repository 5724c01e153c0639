package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

type accountRepository struct {
	run access
}

func (r *accountRepository) FindAccountByID(_ context.Context, tenantID string, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := r.run(false, func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok || a.TenantID != tenantID {
			return apperrors.WithResource(apperrors.ErrAccountNotFound, accountID)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *accountRepository) FindAccountByCode(_ context.Context, tenantID string, code string) (*domain.Account, error) {
	var out *domain.Account
	err := r.run(false, func(st *state) error {
		for _, a := range st.accounts {
			if a.TenantID == tenantID && a.Code == code {
				found := a
				out = &found
				return nil
			}
		}
		return apperrors.WithResource(apperrors.ErrAccountNotFound, code)
	})
	return out, err
}

func (r *accountRepository) FindAccountsByIDs(_ context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	err := r.run(false, func(st *state) error {
		for _, id := range accountIDs {
			if a, ok := st.accounts[id]; ok && a.TenantID == tenantID {
				out[id] = a
			}
		}
		return nil
	})
	return out, err
}

func (r *accountRepository) FindAccountsByCodes(_ context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	wanted := make(map[string]bool, len(codes))
	for _, c := range codes {
		wanted[c] = true
	}
	out := make(map[string]domain.Account, len(codes))
	err := r.run(false, func(st *state) error {
		for _, a := range st.accounts {
			if a.TenantID == tenantID && wanted[a.Code] {
				out[a.Code] = a
			}
		}
		return nil
	})
	return out, err
}

func (r *accountRepository) ListAccounts(_ context.Context, tenantID string) ([]domain.Account, error) {
	out := []domain.Account{}
	err := r.run(false, func(st *state) error {
		for _, a := range st.accounts {
			if a.TenantID == tenantID {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (r *accountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	return r.run(true, func(st *state) error {
		if _, ok := st.accounts[account.AccountID]; ok {
			return apperrors.ErrDuplicate
		}
		for _, a := range st.accounts {
			if a.TenantID == account.TenantID && a.Code == account.Code {
				return apperrors.ErrDuplicate
			}
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (r *accountRepository) UpdateAccount(_ context.Context, account domain.Account) error {
	return r.run(true, func(st *state) error {
		existing, ok := st.accounts[account.AccountID]
		if !ok || existing.TenantID != account.TenantID {
			return apperrors.WithResource(apperrors.ErrAccountNotFound, account.AccountID)
		}
		existing.Name = account.Name
		existing.IsActive = account.IsActive
		existing.LastUpdatedAt = account.LastUpdatedAt
		existing.LastUpdatedBy = account.LastUpdatedBy
		st.accounts[account.AccountID] = existing
		return nil
	})
}

type balanceRepository struct {
	run access
}

func (r *balanceRepository) ApplyBalanceDeltas(_ context.Context, tenantID string, deltas map[string]decimal.Decimal, now time.Time) error {
	return r.run(true, func(st *state) error {
		for accountID, delta := range deltas {
			k := tenantKey{tenantID, accountID}
			b, ok := st.balances[k]
			if !ok {
				b = domain.AccountBalance{TenantID: tenantID, AccountID: accountID, Balance: decimal.Zero}
			}
			b.Balance = b.Balance.Add(delta)
			b.UpdatedAt = now
			st.balances[k] = b
		}
		return nil
	})
}

func (r *balanceRepository) ListBalances(_ context.Context, tenantID string) ([]domain.AccountBalance, error) {
	out := []domain.AccountBalance{}
	err := r.run(false, func(st *state) error {
		for k, b := range st.balances {
			if k.tenantID == tenantID {
				out = append(out, b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, err
}

func (r *balanceRepository) ReplaceBalances(_ context.Context, tenantID string, balances map[string]decimal.Decimal, now time.Time) error {
	return r.run(true, func(st *state) error {
		for k := range st.balances {
			if k.tenantID == tenantID {
				delete(st.balances, k)
			}
		}
		for accountID, balance := range balances {
			st.balances[tenantKey{tenantID, accountID}] = domain.AccountBalance{
				TenantID:  tenantID,
				AccountID: accountID,
				Balance:   balance,
				UpdatedAt: now,
			}
		}
		return nil
	})
}
