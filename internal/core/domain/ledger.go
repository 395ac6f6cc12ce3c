package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory is the fundamental accounting category of a ledger account.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "asset"
	CategoryLiability AccountCategory = "liability"
	CategoryEquity    AccountCategory = "equity"
	CategoryRevenue   AccountCategory = "revenue"
	CategoryExpense   AccountCategory = "expense"
)

// Account is a chart-of-accounts node. The chart is administered out of scope;
// the core reads it for posting and balance aggregation only.
type Account struct {
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	Category    AccountCategory `json:"category"`
	ParentCode  string          `json:"parentCode,omitempty"`
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"`
	AuditFields
}

// LedgerEntry is one immutable side of a double-entry posting. Exactly one of
// DebitAmount and CreditAmount is non-zero.
type LedgerEntry struct {
	EntryID      string          `json:"entryID"`
	DealNumber   string          `json:"dealNumber"`
	AccountCode  string          `json:"accountCode"`
	EntryDate    time.Time       `json:"entryDate"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PostingRule maps an account category and product type to the default account
// that postings of that class resolve to. It replaces account-code prefix
// matching for default account selection.
type PostingRule struct {
	Category    AccountCategory `json:"category"`
	ProductType ProductType     `json:"productType"`
	AccountCode string          `json:"accountCode"`
}

// AccountBalanceLine is one account's aggregated balance within a statement.
type AccountBalanceLine struct {
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`
}

// ProfitAndLoss is the revenue/expense statement for a period.
type ProfitAndLoss struct {
	StartDate     time.Time            `json:"startDate"`
	EndDate       time.Time            `json:"endDate"`
	Revenue       []AccountBalanceLine `json:"revenue"`
	Expenses      []AccountBalanceLine `json:"expenses"`
	TotalRevenue  decimal.Decimal      `json:"totalRevenue"`
	TotalExpenses decimal.Decimal      `json:"totalExpenses"`
	NetProfit     decimal.Decimal      `json:"netProfit"`
}

// BalanceSheet is the asset/liability/equity statement as of a date.
type BalanceSheet struct {
	AsOfDate                  time.Time            `json:"asOfDate"`
	Assets                    []AccountBalanceLine `json:"assets"`
	Liabilities               []AccountBalanceLine `json:"liabilities"`
	Equity                    []AccountBalanceLine `json:"equity"`
	TotalAssets               decimal.Decimal      `json:"totalAssets"`
	TotalLiabilities          decimal.Decimal      `json:"totalLiabilities"`
	RetainedEarnings          decimal.Decimal      `json:"retainedEarnings"`
	TotalEquity               decimal.Decimal      `json:"totalEquity"`
	TotalLiabilitiesAndEquity decimal.Decimal      `json:"totalLiabilitiesAndEquity"`
}

// LedgerFilters narrows general ledger queries.
type LedgerFilters struct {
	StartDate   *time.Time
	EndDate     *time.Time
	AccountCode string
	DealNumber  string
	Limit       int
	Offset      int
}
