package handlers_test

import (
	"errors"
	"net/http"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (s *HandlerTestSuite) TestTrialBalance_AsOf() {
	asOf := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	s.mockReportingService.On("GetTrialBalance", mock.Anything, testTenant, asOf).Return(&domain.TrialBalance{
		TenantID: testTenant,
		AsOf:     asOf,
		Rows: []domain.TrialBalanceRow{
			{AccountID: "acc-ar", AccountCode: domain.CodeAccountsReceivable, AccountType: domain.Asset, DebitTotal: decimal.NewFromInt(10750), CreditTotal: decimal.Zero},
			{AccountID: "acc-rev", AccountCode: domain.CodeSalesRevenue, AccountType: domain.Revenue, DebitTotal: decimal.Zero, CreditTotal: decimal.NewFromInt(10750)},
		},
		TotalDebits:  decimal.NewFromInt(10750),
		TotalCredits: decimal.NewFromInt(10750),
	}, nil).Once()

	w := s.do(http.MethodGet, basePath+"/reports/trial-balance?asOf=2025-03-31", nil, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.TrialBalanceResponse
	s.decode(w, &resp)
	s.Equal("2025-03-31", resp.AsOf)
	s.True(resp.Balanced)
	s.Len(resp.Rows, 2)
	s.True(resp.Totals.Debit.Equal(decimal.NewFromInt(10750)))
}

func (s *HandlerTestSuite) TestTrialBalance_DefaultsToToday() {
	s.mockReportingService.On("GetTrialBalance", mock.Anything, testTenant, time.Time{}).
		Return(&domain.TrialBalance{TenantID: testTenant, AsOf: time.Now()}, nil).Once()

	w := s.do(http.MethodGet, basePath+"/reports/trial-balance", nil, "")

	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestTrialBalance_InvalidDate() {
	w := s.do(http.MethodGet, basePath+"/reports/trial-balance?asOf=yesterday", nil, "")

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestTrialBalance_InternalErrorHidesDetail() {
	s.mockReportingService.On("GetTrialBalance", mock.Anything, testTenant, time.Time{}).
		Return(nil, errors.New("connection refused")).Once()

	w := s.do(http.MethodGet, basePath+"/reports/trial-balance", nil, "")

	s.Equal(http.StatusInternalServerError, w.Code)
	resp := s.errorBody(w)
	s.NotContains(resp.Error, "connection refused")
	s.Empty(resp.Code)
}

func (s *HandlerTestSuite) TestBalanceCheck() {
	s.mockReportingService.On("VerifyBalances", mock.Anything, testTenant).Return([]domain.BalanceMismatch{{
		AccountID:   "acc-cash",
		AccountCode: domain.CodeCash,
		Stored:      decimal.NewFromInt(755),
		Replayed:    decimal.NewFromInt(750),
	}}, nil).Once()

	w := s.do(http.MethodGet, basePath+"/reports/balance-check", nil, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceCheckResponse
	s.decode(w, &resp)
	s.False(resp.Consistent)
	s.Require().Len(resp.Mismatches, 1)
	s.True(resp.Mismatches[0].Stored.Equal(decimal.NewFromInt(755)))
}

func (s *HandlerTestSuite) TestBalanceCheck_Consistent() {
	s.mockReportingService.On("VerifyBalances", mock.Anything, testTenant).Return([]domain.BalanceMismatch(nil), nil).Once()

	w := s.do(http.MethodGet, basePath+"/reports/balance-check", nil, "")

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"consistent": true, "mismatches": []}`, w.Body.String())
}

func (s *HandlerTestSuite) TestBalanceReplay() {
	s.mockReportingService.On("ReplayBalances", mock.Anything, testTenant).Return(map[string]domain.AccountBalance{
		"acc-cash": {TenantID: testTenant, AccountID: "acc-cash", Balance: decimal.NewFromInt(750)},
	}, nil).Once()

	w := s.do(http.MethodPost, basePath+"/reports/balance-replay", nil, "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceReplayResponse
	s.decode(w, &resp)
	s.Equal(1, resp.Accounts)
}
