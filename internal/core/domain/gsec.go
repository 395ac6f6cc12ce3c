package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade directions for a GSec deal.
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// GsecDeal is a government-securities deal. Prices are truncated (never
// rounded) to four decimal places before persistence.
type GsecDeal struct {
	DealNumber       string          `json:"dealNumber"`
	TradeType        string          `json:"tradeType"`
	ISIN             string          `json:"isin"`
	FaceValue        decimal.Decimal `json:"faceValue"`
	CleanPrice       decimal.Decimal `json:"cleanPrice"`
	AccruedInterest  decimal.Decimal `json:"accruedInterest"`
	DirtyPrice       decimal.Decimal `json:"dirtyPrice"`
	SettlementAmount decimal.Decimal `json:"settlementAmount"`
	Yield            decimal.Decimal `json:"yield"`
	Brokerage        decimal.Decimal `json:"brokerage"`
	PerDayAccrual    decimal.Decimal `json:"perDayAccrual"`
	Currency         string          `json:"currency"`
	CounterpartyID   string          `json:"counterpartyID"`
	CounterpartyType string          `json:"counterpartyType"`
	ValueDate        time.Time       `json:"valueDate"`
	IssueDate        time.Time       `json:"issueDate"`
	MaturityDate     time.Time       `json:"maturityDate"`
	LastCouponDate   time.Time       `json:"lastCouponDate"`
	NextCouponDate   time.Time       `json:"nextCouponDate"`
	SettlementMode   string          `json:"settlementMode"`
	SettlementBank   string          `json:"settlementBank"`
	Portfolio        string          `json:"portfolio"`
	Strategy         string          `json:"strategy"`
	Broker           string          `json:"broker"`

	Workflow
	AuditFields
}

// MoneyMarketDealType distinguishes the direction of a money-market deal.
type MoneyMarketDealType string

const (
	DealTypeLending   MoneyMarketDealType = "lending"
	DealTypeBorrowing MoneyMarketDealType = "borrowing"
)

// MoneyMarketDeal is a placement or borrowing numbered per date and product.
type MoneyMarketDeal struct {
	DealNumber      string              `json:"dealNumber"` // {YYYYMMDD}{product}{seq4}
	DealType        MoneyMarketDealType `json:"dealType"`
	ProductCode     string              `json:"productCode"`
	CounterpartyID  string              `json:"counterpartyID"`
	Currency        string              `json:"currency"`
	PrincipalAmount decimal.Decimal     `json:"principalAmount"`
	InterestRate    decimal.Decimal     `json:"interestRate"`
	Tenor           int                 `json:"tenor"`
	InterestAmount  decimal.Decimal     `json:"interestAmount"`
	MaturityValue   decimal.Decimal     `json:"maturityValue"`
	PerDayInterest  decimal.Decimal     `json:"perDayInterest"`
	TradeDate       time.Time           `json:"tradeDate"`
	ValueDate       time.Time           `json:"valueDate"`
	MaturityDate    time.Time           `json:"maturityDate"`
	SettlementMode  string              `json:"settlementMode"`
	SettlementBank  string              `json:"settlementBank"`
	Remarks         string              `json:"remarks"`
	Status          DealStatus          `json:"status"`
	AuditFields
}
