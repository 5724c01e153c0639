package domain_test

import (
	"testing"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalEntry_TransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.EntryStatus
		to      domain.EntryStatus
		wantErr error
	}{
		{name: "draft to posted", from: domain.Draft, to: domain.Posted},
		{name: "posted to reversed", from: domain.Posted, to: domain.Reversed},
		{name: "draft cannot be reversed", from: domain.Draft, to: domain.Reversed, wantErr: apperrors.ErrEntryNotPosted},
		{name: "reversed is terminal", from: domain.Reversed, to: domain.Reversed, wantErr: apperrors.ErrAlreadyReversed},
		{name: "posted cannot return to draft", from: domain.Posted, to: domain.Draft, wantErr: apperrors.ErrInvalidTransition},
		{name: "reversed cannot be reposted", from: domain.Reversed, to: domain.Posted, wantErr: apperrors.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := domain.JournalEntry{EntryID: "e1", Status: tt.from}
			err := entry.TransitionTo(tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, entry.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, entry.Status)
		})
	}
}

func TestDraftEntry_CheckShape(t *testing.T) {
	line := func(code string, side domain.Side, amount string) domain.DraftLine {
		return domain.DraftLine{AccountCode: code, Side: side, Amount: decimal.RequireFromString(amount)}
	}

	tests := []struct {
		name     string
		currency string
		lines    []domain.DraftLine
		wantErr  error
	}{
		{
			name: "balanced three lines",
			lines: []domain.DraftLine{
				line("1100", domain.Debit, "10750"),
				line("4000", domain.Credit, "10000"),
				line("2100", domain.Credit, "750"),
			},
		},
		{
			name:    "single line",
			lines:   []domain.DraftLine{line("1100", domain.Debit, "10")},
			wantErr: apperrors.ErrInsufficientLines,
		},
		{
			name: "off by one minor unit",
			lines: []domain.DraftLine{
				line("1100", domain.Debit, "100.00"),
				line("4000", domain.Credit, "99.99"),
			},
			wantErr: apperrors.ErrUnbalancedEntry,
		},
		{
			name: "digits below the minor unit are rejected",
			lines: []domain.DraftLine{
				line("1100", domain.Debit, "0.3"),
				line("4000", domain.Credit, "0.1"),
				line("4000", domain.Credit, "0.2000000001"),
			},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name:     "balanced below the minor unit is still rejected",
			currency: "USD",
			lines: []domain.DraftLine{
				line("1100", domain.Debit, "0.0001"),
				line("4000", domain.Credit, "0.00005"),
				line("4000", domain.Credit, "0.00005"),
			},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name:     "three decimals in a three decimal currency",
			currency: "KWD",
			lines: []domain.DraftLine{
				line("1100", domain.Debit, "1.005"),
				line("4000", domain.Credit, "1.005"),
			},
		},
		{
			name:     "fractions in a currency without minor units",
			currency: "JPY",
			lines: []domain.DraftLine{
				line("1100", domain.Debit, "10.5"),
				line("4000", domain.Credit, "10.5"),
			},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name: "zero amount",
			lines: []domain.DraftLine{
				line("1100", domain.Debit, "0"),
				line("4000", domain.Credit, "0"),
			},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name: "negative amount",
			lines: []domain.DraftLine{
				line("1100", domain.Debit, "-5"),
				line("4000", domain.Credit, "-5"),
			},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name: "missing account",
			lines: []domain.DraftLine{
				{Side: domain.Debit, Amount: decimal.NewFromInt(5)},
				line("4000", domain.Credit, "5"),
			},
			wantErr: apperrors.ErrInvalidLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.DraftEntry{CurrencyCode: tt.currency, Lines: tt.lines}.CheckShape()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccountType_NormalBalance(t *testing.T) {
	assert.Equal(t, domain.Debit, domain.Asset.NormalBalance())
	assert.Equal(t, domain.Debit, domain.Expense.NormalBalance())
	assert.Equal(t, domain.Credit, domain.Liability.NormalBalance())
	assert.Equal(t, domain.Credit, domain.Equity.NormalBalance())
	assert.Equal(t, domain.Credit, domain.Revenue.NormalBalance())
	assert.False(t, domain.AccountType("INCOME").Valid())
}

func TestCurrencyRounding(t *testing.T) {
	assert.Equal(t, int32(2), domain.CurrencyScale("USD"))
	assert.Equal(t, int32(0), domain.CurrencyScale("JPY"))
	assert.Equal(t, int32(3), domain.CurrencyScale("KWD"))
	assert.Equal(t, int32(2), domain.CurrencyScale("not-a-code"))

	assert.Equal(t, "10.13", domain.RoundToCurrency(decimal.RequireFromString("10.125"), "USD").StringFixed(2))
	assert.Equal(t, "10.12", domain.RoundToCurrency(decimal.RequireFromString("10.1249"), "usd").StringFixed(2))
	assert.Equal(t, "101", domain.RoundToCurrency(decimal.RequireFromString("100.5"), "JPY").String())
	assert.True(t, domain.IsCurrencyAmount(decimal.RequireFromString("1.50"), "EUR"))
	assert.False(t, domain.IsCurrencyAmount(decimal.RequireFromString("1.505"), "EUR"))
}

func TestDateRange_Contains(t *testing.T) {
	from := mustDate(t, "2025-01-01")
	to := mustDate(t, "2025-01-31")
	r := domain.DateRange{From: from, To: to}

	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(to))
	assert.False(t, r.Contains(mustDate(t, "2024-12-31")))
	assert.True(t, r.Before(mustDate(t, "2024-12-31")))
	assert.False(t, r.Contains(mustDate(t, "2025-02-01")))
	assert.True(t, domain.DateRange{}.Contains(mustDate(t, "1999-01-01")))
}
