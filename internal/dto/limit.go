package dto

import (
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// LimitStatusQuery identifies the exposure dimension being queried.
type LimitStatusQuery struct {
	CounterpartyID   string             `form:"counterpartyId" binding:"required"`
	CounterpartyType string             `form:"counterpartyType" binding:"required"`
	ProductType      domain.ProductType `form:"productType" binding:"required"`
	Currency         string             `form:"currency" binding:"required"`
}

// LimitStatusResponse reports current exposure against configured ceilings.
type LimitStatusResponse struct {
	CounterpartyID         string             `json:"counterpartyId"`
	CounterpartyType       string             `json:"counterpartyType"`
	ProductType            domain.ProductType `json:"productType"`
	Currency               string             `json:"currency"`
	ProductLimit           decimal.Decimal    `json:"productLimit"`
	OverallLimit           decimal.Decimal    `json:"overallLimit"`
	CurrentProductExposure decimal.Decimal    `json:"currentProductExposure"`
	CurrentOverallExposure decimal.Decimal    `json:"currentOverallExposure"`
}
