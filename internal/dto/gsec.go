package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// CreateGsecRequest is the payload for creating a government-securities deal.
// Clean price and accrued interest are truncated to 4 decimal places by the
// service; the dirty price is always derived, never accepted from the caller.
type CreateGsecRequest struct {
	TradeType        string          `json:"tradeType"`
	ISIN             string          `json:"isin" binding:"required"`
	FaceValue        decimal.Decimal `json:"faceValue" binding:"required"`
	CleanPrice       decimal.Decimal `json:"cleanPrice"`
	AccruedInterest  decimal.Decimal `json:"accruedInterest"`
	SettlementAmount decimal.Decimal `json:"settlementAmount"`
	Yield            decimal.Decimal `json:"yield"`
	Brokerage        decimal.Decimal `json:"brokerage"`
	PerDayAccrual    decimal.Decimal `json:"perDayAccrual"`
	Currency         string          `json:"currency"`
	CounterpartyID   string          `json:"counterpartyID" binding:"required"`
	CounterpartyType string          `json:"counterpartyType"`
	ValueDate        time.Time       `json:"valueDate" time_format:"2006-01-02"`
	IssueDate        time.Time       `json:"issueDate" time_format:"2006-01-02"`
	MaturityDate     time.Time       `json:"maturityDate" time_format:"2006-01-02"`
	SettlementMode   string          `json:"settlementMode"`
	SettlementBank   string          `json:"settlementBank"`
	Portfolio        string          `json:"portfolio"`
	Strategy         string          `json:"strategy"`
	Broker           string          `json:"broker"`
}

// CreateMoneyMarketRequest is the payload for creating a money-market deal.
type CreateMoneyMarketRequest struct {
	DealType        domain.MoneyMarketDealType `json:"dealType" binding:"required"`
	ProductCode     string                     `json:"productCode" binding:"required"`
	CounterpartyID  string                     `json:"counterpartyID" binding:"required"`
	Currency        string                     `json:"currency"`
	PrincipalAmount decimal.Decimal            `json:"principalAmount" binding:"required"`
	InterestRate    decimal.Decimal            `json:"interestRate"`
	Tenor           int                        `json:"tenor"`
	InterestAmount  decimal.Decimal            `json:"interestAmount"`
	MaturityValue   decimal.Decimal            `json:"maturityValue"`
	PerDayInterest  decimal.Decimal            `json:"perDayInterest"`
	TradeDate       time.Time                  `json:"tradeDate" time_format:"2006-01-02" binding:"required"`
	ValueDate       time.Time                  `json:"valueDate" time_format:"2006-01-02"`
	MaturityDate    time.Time                  `json:"maturityDate" time_format:"2006-01-02"`
	SettlementMode  string                     `json:"settlementMode"`
	SettlementBank  string                     `json:"settlementBank"`
	Remarks         string                     `json:"remarks"`
}

// GsecResponse is the external representation of a GSec deal.
type GsecResponse struct {
	DealNumber           string               `json:"dealNumber"`
	ISIN                 string               `json:"isin"`
	FaceValue            decimal.Decimal      `json:"faceValue"`
	CleanPrice           decimal.Decimal      `json:"cleanPrice"`
	AccruedInterest      decimal.Decimal      `json:"accruedInterest"`
	DirtyPrice           decimal.Decimal      `json:"dirtyPrice"`
	SettlementAmount     decimal.Decimal      `json:"settlementAmount"`
	Currency             string               `json:"currency"`
	CounterpartyID       string               `json:"counterpartyID"`
	ValueDate            time.Time            `json:"valueDate"`
	MaturityDate         time.Time            `json:"maturityDate"`
	Status               domain.DealStatus    `json:"status"`
	CurrentApprovalLevel domain.ApprovalLevel `json:"currentApprovalLevel"`
	SubmittedBy          string               `json:"submittedBy"`
	CreatedAt            time.Time            `json:"createdAt"`
}

// ToGsecResponse maps a domain GSec deal to its response DTO.
func ToGsecResponse(g *domain.GsecDeal) GsecResponse {
	return GsecResponse{
		DealNumber:           g.DealNumber,
		ISIN:                 g.ISIN,
		FaceValue:            g.FaceValue,
		CleanPrice:           g.CleanPrice,
		AccruedInterest:      g.AccruedInterest,
		DirtyPrice:           g.DirtyPrice,
		SettlementAmount:     g.SettlementAmount,
		Currency:             g.Currency,
		CounterpartyID:       g.CounterpartyID,
		ValueDate:            g.ValueDate,
		MaturityDate:         g.MaturityDate,
		Status:               g.Status,
		CurrentApprovalLevel: g.CurrentApprovalLevel,
		SubmittedBy:          g.SubmittedBy,
		CreatedAt:            g.CreatedAt,
	}
}
