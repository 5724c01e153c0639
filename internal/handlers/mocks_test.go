package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/derivation"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/core/eventadapter"
	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountTree(ctx context.Context, tenantID string) ([]domain.AccountNode, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountNode), args.Error(1)
}
func (m *MockAccountService) SeedDefaultTemplate(ctx context.Context, tenantID string, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) RenameAccount(ctx context.Context, tenantID string, accountID string, name string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID, name, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error {
	args := m.Called(ctx, tenantID, accountID, userID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) GetEntry(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) GetAccountLedger(ctx context.Context, tenantID string, accountID string, dateRange domain.DateRange) (*domain.AccountLedger, error) {
	args := m.Called(ctx, tenantID, accountID, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountLedger), args.Error(1)
}
func (m *MockJournalService) PostEntry(ctx context.Context, tenantID string, draft domain.DraftEntry) (*domain.PostResult, error) {
	args := m.Called(ctx, tenantID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostResult), args.Error(1)
}
func (m *MockJournalService) SaveDraft(ctx context.Context, tenantID string, draft domain.DraftEntry) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) PostDraft(ctx context.Context, tenantID string, entryID string, userID string) (*domain.PostResult, error) {
	args := m.Called(ctx, tenantID, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostResult), args.Error(1)
}
func (m *MockJournalService) ReverseEntry(ctx context.Context, tenantID string, entryID string, reason string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) GetTrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, tenantID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockReportingService) ReplayBalances(ctx context.Context, tenantID string) (map[string]domain.AccountBalance, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountBalance), args.Error(1)
}
func (m *MockReportingService) VerifyBalances(ctx context.Context, tenantID string) ([]domain.BalanceMismatch, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceMismatch), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// --- Mock EventService ---
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) ProcessEvent(ctx context.Context, event eventadapter.Event) (*portssvc.EventResult, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.EventResult), args.Error(1)
}
func (m *MockEventService) ProcessBatch(ctx context.Context, events []eventadapter.Event) []portssvc.EventResult {
	args := m.Called(ctx, events)
	return args.Get(0).([]portssvc.EventResult)
}
func (m *MockEventService) PreviewEvent(ctx context.Context, event eventadapter.Event) (*domain.DraftEntry, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DraftEntry), args.Error(1)
}
func (m *MockEventService) AuditDocument(ctx context.Context, tenantID string, doc derivation.Document) ([]derivation.Discrepancy, error) {
	args := m.Called(ctx, tenantID, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]derivation.Discrepancy), args.Error(1)
}

var _ portssvc.EventService = (*MockEventService)(nil)
