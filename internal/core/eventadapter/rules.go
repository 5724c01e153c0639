package eventadapter

import (
	"strings"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
)

// PaymentMethod is how money moved for a payment or expense.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCard         PaymentMethod = "CARD"
	MethodCheque       PaymentMethod = "CHEQUE"
	MethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
)

// Expense categories with a dedicated account in the default chart.
const (
	CategoryCostOfGoods    = "COST_OF_GOODS"
	CategoryRent           = "RENT"
	CategoryUtilities      = "UTILITIES"
	CategorySalaries       = "SALARIES"
	CategoryTransport      = "TRANSPORT"
	CategoryOfficeSupplies = "OFFICE_SUPPLIES"
	CategoryMarketing      = "MARKETING"
	CategoryBankCharges    = "BANK_CHARGES"
)

// Rules is the fixed lookup table from event fields to account codes.
type Rules struct {
	ReceivableAccount    string
	RevenueAccount       string
	VATPayableAccount    string
	ContraRevenueAccount string

	// CreditNotesToContraRevenue debits ContraRevenueAccount instead of RevenueAccount
	// when a credit note is applied.
	CreditNotesToContraRevenue bool

	PaymentAccounts        map[PaymentMethod]string
	ExpenseAccounts        map[string]string
	FallbackExpenseAccount string
}

// DefaultRules maps events onto the default chart of accounts.
func DefaultRules() Rules {
	return Rules{
		ReceivableAccount:    domain.CodeAccountsReceivable,
		RevenueAccount:       domain.CodeSalesRevenue,
		VATPayableAccount:    domain.CodeVATPayable,
		ContraRevenueAccount: domain.CodeSalesReturns,
		PaymentAccounts: map[PaymentMethod]string{
			MethodCash:         domain.CodeCash,
			MethodBankTransfer: domain.CodeBank,
			MethodCard:         domain.CodeBank,
			MethodCheque:       domain.CodeBank,
			MethodMobileMoney:  domain.CodeMobileMoney,
		},
		ExpenseAccounts: map[string]string{
			CategoryCostOfGoods:    domain.CodeCostOfGoodsSold,
			CategoryRent:           domain.CodeRentExpense,
			CategoryUtilities:      domain.CodeUtilitiesExpense,
			CategorySalaries:       domain.CodeSalariesExpense,
			CategoryTransport:      domain.CodeTransportExpense,
			CategoryOfficeSupplies: domain.CodeOfficeSupplies,
			CategoryMarketing:      domain.CodeMarketingExpense,
			CategoryBankCharges:    domain.CodeBankCharges,
		},
		FallbackExpenseAccount: domain.CodeGeneralExpense,
	}
}

// PaymentAccount returns the account code that receives or pays out money for method.
func (r Rules) PaymentAccount(method PaymentMethod) (string, error) {
	code, ok := r.PaymentAccounts[PaymentMethod(strings.ToUpper(string(method)))]
	if !ok {
		return "", apperrors.New(apperrors.ErrUnmappedAccount, "payment method %q", method)
	}
	return code, nil
}

// ExpenseAccount returns the account code for an expense category, falling back
// to the general expense account for unknown categories.
func (r Rules) ExpenseAccount(category string) string {
	if code, ok := r.ExpenseAccounts[strings.ToUpper(strings.TrimSpace(category))]; ok {
		return code
	}
	return r.FallbackExpenseAccount
}

// CreditNoteDebitAccount is the account debited when a credit note is applied.
func (r Rules) CreditNoteDebitAccount() string {
	if r.CreditNotesToContraRevenue {
		return r.ContraRevenueAccount
	}
	return r.RevenueAccount
}

// AccountCodes lists every account code the rules can emit, without duplicates.
func (r Rules) AccountCodes() []string {
	seen := map[string]bool{}
	var codes []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	add(r.ReceivableAccount)
	add(r.RevenueAccount)
	add(r.VATPayableAccount)
	add(r.ContraRevenueAccount)
	for _, m := range []PaymentMethod{MethodCash, MethodBankTransfer, MethodCard, MethodCheque, MethodMobileMoney} {
		add(r.PaymentAccounts[m])
	}
	for _, c := range []string{CategoryCostOfGoods, CategoryRent, CategoryUtilities, CategorySalaries,
		CategoryTransport, CategoryOfficeSupplies, CategoryMarketing, CategoryBankCharges} {
		add(r.ExpenseAccounts[c])
	}
	add(r.FallbackExpenseAccount)
	return codes
}
