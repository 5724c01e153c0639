package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/dto"
)

// accountService maintains each tenant's chart of accounts.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// ServiceOption is a functional option for configuring the account service
type ServiceOption func(*accountService)

// WithAccountClock overrides the time source of the account service.
func WithAccountClock(now func() time.Time) ServiceOption {
	return func(s *accountService) { s.setClock(now) }
}

// WithAccountIDGenerator overrides how account ids are generated.
func WithAccountIDGenerator(gen func() string) ServiceOption {
	return func(s *accountService) { s.setIDGenerator(gen) }
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		BaseService: newBaseService(),
		accountRepo: repo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// SeedDefaultTemplate creates the system accounts of the default chart that the
// tenant does not have yet. Re-running it creates nothing.
func (s *accountService) SeedDefaultTemplate(ctx context.Context, tenantID string, userID string) ([]domain.Account, error) {
	existing, err := s.accountRepo.FindAccountsByCodes(ctx, tenantID, DefaultTemplateCodes())
	if err != nil {
		s.LogError(ctx, err, "Failed to look up template accounts", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to look up template accounts: %w", err)
	}

	now := s.now()
	created := make([]domain.Account, 0, len(defaultTemplate))
	for _, t := range defaultTemplate {
		if _, ok := existing[t.Code]; ok {
			continue
		}
		account := domain.Account{
			AccountID:     s.newID(),
			TenantID:      tenantID,
			Code:          t.Code,
			Name:          t.Name,
			AccountType:   t.Type,
			Subtype:       t.Subtype,
			IsSystem:      true,
			NormalBalance: t.Type.NormalBalance(),
			IsActive:      true,
			AuditFields:   newAudit(now, userID),
		}
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			// A concurrent seed got there first.
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			s.LogError(ctx, err, "Failed to seed account", slog.String("tenant_id", tenantID), slog.String("code", t.Code))
			return nil, fmt.Errorf("failed to seed account %s: %w", t.Code, err)
		}
		created = append(created, account)
	}

	s.LogInfo(ctx, "Default chart of accounts seeded",
		slog.String("tenant_id", tenantID),
		slog.Int("created", len(created)))
	return created, nil
}

// CreateAccount adds a non-system account to the tenant's chart.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	accountType := domain.AccountType(strings.ToUpper(string(req.AccountType)))
	if code == "" || name == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "account code and name are required")
	}
	if !accountType.Valid() {
		return nil, apperrors.New(apperrors.ErrValidation, "unknown account type %q", req.AccountType)
	}

	if _, err := s.accountRepo.FindAccountByCode(ctx, tenantID, code); err == nil {
		return nil, apperrors.WithResource(apperrors.ErrCodeConflict, code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code", slog.String("tenant_id", tenantID), slog.String("code", code))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, tenantID, *req.ParentAccountID)
		if err != nil {
			return nil, err
		}
		if parent.AccountType != accountType {
			return nil, apperrors.New(apperrors.ErrValidation,
				"parent account %s is %s, child is %s", parent.Code, parent.AccountType, accountType)
		}
		parentID = parent.AccountID
	}

	now := s.now()
	account := domain.Account{
		AccountID:       s.newID(),
		TenantID:        tenantID,
		Code:            code,
		Name:            name,
		AccountType:     accountType,
		Subtype:         req.Subtype,
		ParentAccountID: parentID,
		NormalBalance:   accountType.NormalBalance(),
		IsActive:        true,
		AuditFields:     newAudit(now, userID),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.WithResource(apperrors.ErrCodeConflict, code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("tenant_id", tenantID), slog.String("code", code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", code))
	return &account, nil
}

func (s *accountService) RenameAccount(ctx context.Context, tenantID string, accountID string, name string, userID string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "account name is required")
	}
	account, err := s.modifiableAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	account.Name = name
	account.LastUpdatedAt = s.now()
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to rename account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to rename account: %w", err)
	}
	return account, nil
}

// DeactivateAccount blocks further postings to the account. Existing lines stay.
func (s *accountService) DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error {
	account, err := s.modifiableAccount(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil
	}

	account.IsActive = false
	account.LastUpdatedAt = s.now()
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

func (s *accountService) modifiableAccount(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsSystem {
		return nil, apperrors.WithResource(apperrors.ErrSystemAccountProtected, account.Code)
	}
	return account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, tenantID, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountTree orders accounts depth-first from the roots, siblings by code.
// An account whose parent is missing is treated as a root.
func (s *accountService) GetAccountTree(ctx context.Context, tenantID string) ([]domain.AccountNode, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return buildAccountTree(accounts), nil
}

func buildAccountTree(accounts []domain.Account) []domain.AccountNode {
	byID := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		byID[a.AccountID] = true
	}

	children := make(map[string][]domain.Account)
	var roots []domain.Account
	for _, a := range accounts {
		if a.ParentAccountID == "" || !byID[a.ParentAccountID] {
			roots = append(roots, a)
			continue
		}
		children[a.ParentAccountID] = append(children[a.ParentAccountID], a)
	}

	byCode := func(list []domain.Account) {
		sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	}
	byCode(roots)
	for id := range children {
		byCode(children[id])
	}

	nodes := make([]domain.AccountNode, 0, len(accounts))
	var walk func(a domain.Account, depth int)
	walk = func(a domain.Account, depth int) {
		nodes = append(nodes, domain.AccountNode{Account: a, Depth: depth})
		for _, c := range children[a.AccountID] {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return nodes
}

func newAudit(now time.Time, userID string) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}
