package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalBalance is DEBIT for ASSET and EXPENSE accounts, CREDIT otherwise.
func (t AccountType) NormalBalance() Side {
	if t == Asset || t == Expense {
		return Debit
	}
	return Credit
}

// Account is a tenant-scoped entry in the chart of accounts.
type Account struct {
	AccountID       string      `json:"accountID"`
	TenantID        string      `json:"tenantID"`
	Code            string      `json:"code"` // unique per tenant
	Name            string      `json:"name"`
	AccountType     AccountType `json:"accountType"`
	Subtype         string      `json:"subtype"`
	ParentAccountID string      `json:"parentAccountID"` // empty for roots
	IsSystem        bool        `json:"isSystem"`
	NormalBalance   Side        `json:"normalBalance"`
	IsActive        bool        `json:"isActive"`
	AuditFields
}

// Postable reports whether lines may be posted to the account on behalf of tenantID.
func (a Account) Postable(tenantID string) bool {
	return a.IsActive && a.TenantID == tenantID
}

// AccountNode is an account positioned in the tenant's account tree.
type AccountNode struct {
	Account
	Depth int `json:"depth"`
}

// Account subtypes used by the default chart.
const (
	SubtypeCash          = "CASH"
	SubtypeBank          = "BANK"
	SubtypeMobileMoney   = "MOBILE_MONEY"
	SubtypeReceivable    = "RECEIVABLE"
	SubtypeTaxReceivable = "TAX_RECEIVABLE"
	SubtypePayable       = "PAYABLE"
	SubtypeTaxPayable    = "TAX_PAYABLE"
	SubtypeCapital       = "CAPITAL"
	SubtypeSales         = "SALES"
	SubtypeContraRevenue = "CONTRA_REVENUE"
	SubtypeOperating     = "OPERATING"
)

// Well-known account codes of the default chart. Event mapping rules refer to
// accounts by these codes.
const (
	CodeCash               = "1000"
	CodeBank               = "1010"
	CodeMobileMoney        = "1020"
	CodeAccountsReceivable = "1100"
	CodeVATReceivable      = "1200"
	CodeAccountsPayable    = "2000"
	CodeVATPayable         = "2100"
	CodeOwnersEquity       = "3000"
	CodeSalesRevenue       = "4000"
	CodeSalesReturns       = "4900"
	CodeCostOfGoodsSold    = "5000"
	CodeRentExpense        = "6000"
	CodeUtilitiesExpense   = "6010"
	CodeSalariesExpense    = "6020"
	CodeTransportExpense   = "6030"
	CodeOfficeSupplies     = "6040"
	CodeMarketingExpense   = "6050"
	CodeBankCharges        = "6060"
	CodeGeneralExpense     = "6900"
)
