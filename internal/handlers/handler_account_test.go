package handlers_test

import (
	"net/http"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/stretchr/testify/mock"
)

func testAccount(id, code string, accountType domain.AccountType) domain.Account {
	return domain.Account{
		AccountID:     id,
		TenantID:      testTenant,
		Code:          code,
		Name:          "Account " + code,
		AccountType:   accountType,
		NormalBalance: accountType.NormalBalance(),
		IsActive:      true,
	}
}

func (s *HandlerTestSuite) TestSeedDefaultTemplate_CreatesAccounts() {
	created := []domain.Account{testAccount("acc-1", domain.CodeCash, domain.Asset)}
	s.mockAccountService.On("SeedDefaultTemplate", mock.Anything, testTenant, "clerk-1").Return(created, nil).Once()

	w := s.do(http.MethodPost, basePath+"/coa/seed", nil, "clerk-1")

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.SeedResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Created, 1)
	s.Equal(domain.CodeCash, resp.Created[0].Code)
}

func (s *HandlerTestSuite) TestSeedDefaultTemplate_RerunIsOK() {
	s.mockAccountService.On("SeedDefaultTemplate", mock.Anything, testTenant, middleware.SystemActor).Return([]domain.Account{}, nil).Once()

	w := s.do(http.MethodPost, basePath+"/coa/seed", nil, "")

	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{Code: "1050", Name: "Petty cash", AccountType: domain.Asset}
	account := testAccount("acc-9", "1050", domain.Asset)
	s.mockAccountService.On("CreateAccount", mock.Anything, testTenant, req, "clerk-1").Return(&account, nil).Once()

	w := s.do(http.MethodPost, basePath+"/accounts", req, "clerk-1")

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	s.decode(w, &resp)
	s.Equal("acc-9", resp.AccountID)
	s.Equal(domain.Debit, resp.NormalBalance)
}

func (s *HandlerTestSuite) TestCreateAccount_CodeConflict() {
	req := dto.CreateAccountRequest{Code: domain.CodeCash, Name: "Cash again", AccountType: domain.Asset}
	s.mockAccountService.On("CreateAccount", mock.Anything, testTenant, req, middleware.SystemActor).
		Return(nil, apperrors.WithResource(apperrors.ErrCodeConflict, domain.CodeCash)).Once()

	w := s.do(http.MethodPost, basePath+"/accounts", req, "")

	s.Equal(http.StatusConflict, w.Code)
	resp := s.errorBody(w)
	s.Equal(string(apperrors.CodeConflict), resp.Code)
	s.Equal(domain.CodeCash, resp.Resource)
}

func (s *HandlerTestSuite) TestCreateAccount_InvalidBody() {
	w := s.do(http.MethodPost, basePath+"/accounts", map[string]string{"name": "No code", "accountType": "ASSET"}, "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.mockAccountService.AssertNotCalled(s.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestCreateAccount_UnknownType() {
	w := s.do(http.MethodPost, basePath+"/accounts", map[string]string{"code": "9000", "name": "Odd", "accountType": "INCOME"}, "")

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestListAccounts_ReturnsTree() {
	root := testAccount("acc-1", "6000", domain.Expense)
	child := testAccount("acc-2", "6100", domain.Expense)
	child.ParentAccountID = root.AccountID
	s.mockAccountService.On("GetAccountTree", mock.Anything, testTenant).Return([]domain.AccountNode{
		{Account: root, Depth: 0},
		{Account: child, Depth: 1},
	}, nil).Once()

	w := s.do(http.MethodGet, basePath+"/accounts", nil, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ListAccountsResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Accounts, 2)
	s.Equal(0, resp.Accounts[0].Depth)
	s.Equal(1, resp.Accounts[1].Depth)
	s.Equal("acc-1", resp.Accounts[1].ParentAccountID)
}

func (s *HandlerTestSuite) TestGetAccount_NotFound() {
	s.mockAccountService.On("GetAccountByID", mock.Anything, testTenant, "missing").Return(nil, apperrors.ErrAccountNotFound).Once()

	w := s.do(http.MethodGet, basePath+"/accounts/missing", nil, "")

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(string(apperrors.CodeAccountNotFound), s.errorBody(w).Code)
}

func (s *HandlerTestSuite) TestRenameAccount_SystemAccountProtected() {
	s.mockAccountService.On("RenameAccount", mock.Anything, testTenant, "acc-1", "Till", "clerk-1").
		Return(nil, apperrors.ErrSystemAccountProtected).Once()

	w := s.do(http.MethodPatch, basePath+"/accounts/acc-1", dto.RenameAccountRequest{Name: "Till"}, "clerk-1")

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(string(apperrors.CodeSystemAccountProtected), s.errorBody(w).Code)
}

func (s *HandlerTestSuite) TestRenameAccount_Success() {
	renamed := testAccount("acc-9", "1050", domain.Asset)
	renamed.Name = "Till float"
	s.mockAccountService.On("RenameAccount", mock.Anything, testTenant, "acc-9", "Till float", middleware.SystemActor).Return(&renamed, nil).Once()

	w := s.do(http.MethodPatch, basePath+"/accounts/acc-9", dto.RenameAccountRequest{Name: "Till float"}, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	s.decode(w, &resp)
	s.Equal("Till float", resp.Name)
}

func (s *HandlerTestSuite) TestDeactivateAccount() {
	s.mockAccountService.On("DeactivateAccount", mock.Anything, testTenant, "acc-9", "clerk-1").Return(nil).Once()

	w := s.do(http.MethodPost, basePath+"/accounts/acc-9/deactivate", nil, "clerk-1")

	s.Equal(http.StatusNoContent, w.Code)
}
