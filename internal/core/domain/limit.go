package domain

import "github.com/shopspring/decimal"

// ProductType classifies a deal for exposure-limit purposes.
type ProductType string

const (
	ProductTransaction    ProductType = "transaction"
	ProductMoneyMarket    ProductType = "money_market"
	ProductFX             ProductType = "fx"
	ProductDerivative     ProductType = "derivative"
	ProductRepo           ProductType = "repo"
	ProductReverseRepo    ProductType = "reverse_repo"
	ProductGsec           ProductType = "gsec"
	ProductSellAndBuyBack ProductType = "sell_and_buy_back"
	ProductBuyAndSellBack ProductType = "buy_and_sell_back"
)

// CounterpartyLimit is the configured exposure ceiling row for one
// (counterparty, counterparty type, currency) key. A zero ceiling means
// "no ceiling for that dimension".
type CounterpartyLimit struct {
	CounterpartyID   string                          `json:"counterpartyID"`
	CounterpartyType string                          `json:"counterpartyType"`
	Currency         string                          `json:"currency"`
	OverallLimit     decimal.Decimal                 `json:"overallLimit"`
	ProductLimits    map[ProductType]decimal.Decimal `json:"productLimits"`
	AuditFields
}

// ProductLimit returns the ceiling configured for the given product, or zero
// when none is configured.
func (l *CounterpartyLimit) ProductLimit(product ProductType) decimal.Decimal {
	if l.ProductLimits == nil {
		return decimal.Zero
	}
	return l.ProductLimits[product]
}

// LimitDecision is the outcome of an exposure check.
type LimitDecision struct {
	Allowed                bool            `json:"allowed"`
	Reason                 string          `json:"reason,omitempty"`
	CurrentProductExposure decimal.Decimal `json:"currentProductExposure"`
	CurrentOverallExposure decimal.Decimal `json:"currentOverallExposure"`
	ProductLimit           decimal.Decimal `json:"productLimit"`
	OverallLimit           decimal.Decimal `json:"overallLimit"`
	ProductExcess          decimal.Decimal `json:"productExcess"`
	OverallExcess          decimal.Decimal `json:"overallExcess"`
}
