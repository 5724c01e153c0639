package dto

import (
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,max=32"`
	Name            string             `json:"name" binding:"required,max=200"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subtype         string             `json:"subtype"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
}

// RenameAccountRequest carries a new account name.
type RenameAccountRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	Subtype         string             `json:"subtype"`
	ParentAccountID string             `json:"parentAccountID"` // Note: Empty string if null in DB
	IsSystem        bool               `json:"isSystem"`
	NormalBalance   domain.Side        `json:"normalBalance"`
	IsActive        bool               `json:"isActive"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// AccountNodeResponse is an account with its depth in the tree.
type AccountNodeResponse struct {
	AccountResponse
	Depth int `json:"depth"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		Subtype:         acc.Subtype,
		ParentAccountID: acc.ParentAccountID,
		IsSystem:        acc.IsSystem,
		NormalBalance:   acc.NormalBalance,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ToAccountTreeResponse converts tree nodes to their response form.
func ToAccountTreeResponse(nodes []domain.AccountNode) []AccountNodeResponse {
	res := make([]AccountNodeResponse, len(nodes))
	for i, n := range nodes {
		res[i] = AccountNodeResponse{AccountResponse: ToAccountResponse(&n.Account), Depth: n.Depth}
	}
	return res
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountNodeResponse `json:"accounts"`
}

// SeedResponse lists accounts created by seeding the default chart.
type SeedResponse struct {
	Created []AccountResponse `json:"created"`
}
