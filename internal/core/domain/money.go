package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const fallbackScale = 2

// CurrencyScale returns the number of minor-unit digits of an ISO 4217 currency.
// Unknown codes use two digits.
func CurrencyScale(code string) int32 {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return fallbackScale
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// RoundToCurrency rounds amount half-up to the currency's smallest unit.
func RoundToCurrency(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(CurrencyScale(code))
}

// IsCurrencyAmount reports whether amount has no digits below the currency's smallest unit.
func IsCurrencyAmount(amount decimal.Decimal, code string) bool {
	return RoundToCurrency(amount, code).Equal(amount)
}
