package services

import "github.com/SscSPs/tenant_ledger/internal/core/domain"

// templateAccount is one system account of the default chart.
type templateAccount struct {
	Code    string
	Name    string
	Type    domain.AccountType
	Subtype string
}

// defaultTemplate is the starter chart seeded for every tenant. Event mapping
// rules post to these codes, so entries here are system accounts.
var defaultTemplate = []templateAccount{
	{domain.CodeCash, "Cash on Hand", domain.Asset, domain.SubtypeCash},
	{domain.CodeBank, "Bank", domain.Asset, domain.SubtypeBank},
	{domain.CodeMobileMoney, "Mobile Money", domain.Asset, domain.SubtypeMobileMoney},
	{domain.CodeAccountsReceivable, "Accounts Receivable", domain.Asset, domain.SubtypeReceivable},
	{domain.CodeVATReceivable, "VAT Receivable", domain.Asset, domain.SubtypeTaxReceivable},
	{domain.CodeAccountsPayable, "Accounts Payable", domain.Liability, domain.SubtypePayable},
	{domain.CodeVATPayable, "VAT Payable", domain.Liability, domain.SubtypeTaxPayable},
	{domain.CodeOwnersEquity, "Owner's Equity", domain.Equity, domain.SubtypeCapital},
	{domain.CodeSalesRevenue, "Sales Revenue", domain.Revenue, domain.SubtypeSales},
	{domain.CodeSalesReturns, "Sales Returns and Allowances", domain.Revenue, domain.SubtypeContraRevenue},
	{domain.CodeCostOfGoodsSold, "Cost of Goods Sold", domain.Expense, domain.SubtypeOperating},
	{domain.CodeRentExpense, "Rent Expense", domain.Expense, domain.SubtypeOperating},
	{domain.CodeUtilitiesExpense, "Utilities Expense", domain.Expense, domain.SubtypeOperating},
	{domain.CodeSalariesExpense, "Salaries and Wages", domain.Expense, domain.SubtypeOperating},
	{domain.CodeTransportExpense, "Transport Expense", domain.Expense, domain.SubtypeOperating},
	{domain.CodeOfficeSupplies, "Office Supplies", domain.Expense, domain.SubtypeOperating},
	{domain.CodeMarketingExpense, "Marketing Expense", domain.Expense, domain.SubtypeOperating},
	{domain.CodeBankCharges, "Bank Charges", domain.Expense, domain.SubtypeOperating},
	{domain.CodeGeneralExpense, "General Expense", domain.Expense, domain.SubtypeOperating},
}

// DefaultTemplateCodes lists the account codes of the default chart.
func DefaultTemplateCodes() []string {
	codes := make([]string, len(defaultTemplate))
	for i, t := range defaultTemplate {
		codes[i] = t.Code
	}
	return codes
}
