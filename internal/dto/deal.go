package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// CreateDealRequest is the payload for creating a generic deal.
type CreateDealRequest struct {
	SourceAccountID   string             `json:"sourceAccountID" binding:"required"`
	Category          string             `json:"category"`
	Amount            decimal.Decimal    `json:"amount" binding:"required"`
	Currency          string             `json:"currency"`
	CounterpartyID    string             `json:"counterpartyID"`
	CounterpartyType  string             `json:"counterpartyType"`
	TransactionTypeID string             `json:"transactionTypeID"`
	ProductType       domain.ProductType `json:"productType"`
	TradeDate         time.Time          `json:"tradeDate" time_format:"2006-01-02"`
	ValueDate         time.Time          `json:"valueDate" time_format:"2006-01-02"`
	Description       string             `json:"description"`
	SettlementMode    string             `json:"settlementMode"`
	Portfolio         string             `json:"portfolio"`
	Strategy          string             `json:"strategy"`
}

// UpdateDealFieldsRequest carries business-field edits. Workflow fields are
// deliberately absent; edits that try to move the workflow go through the
// status or escalation endpoints.
type UpdateDealFieldsRequest struct {
	SourceAccountID *string          `json:"sourceAccountID"`
	Category        *string          `json:"category"`
	Amount          *decimal.Decimal `json:"amount"`
	Currency        *string          `json:"currency"`
	CounterpartyID  *string          `json:"counterpartyID"`
	TradeDate       *time.Time       `json:"tradeDate" time_format:"2006-01-02"`
	ValueDate       *time.Time       `json:"valueDate" time_format:"2006-01-02"`
	Description     *string          `json:"description"`
	SettlementMode  *string          `json:"settlementMode"`
	Portfolio       *string          `json:"portfolio"`
	Strategy        *string          `json:"strategy"`
}

// UpdateDealStatusRequest carries an approve/reject decision.
type UpdateDealStatusRequest struct {
	Status  domain.DealStatus `json:"status" binding:"required"`
	Comment string            `json:"comment"`
}

// EscalateDealRequest moves only the workflow position of a deal.
type EscalateDealRequest struct {
	ApprovalStatus       domain.DealStatus    `json:"approvalStatus"`
	CurrentApprovalLevel domain.ApprovalLevel `json:"currentApprovalLevel"`
}

// DealResponse is the external representation of a deal.
type DealResponse struct {
	DealNumber           string                `json:"dealNumber"`
	SourceAccountID      string                `json:"sourceAccountID"`
	Category             string                `json:"category"`
	Amount               decimal.Decimal       `json:"amount"`
	Currency             string                `json:"currency"`
	CounterpartyID       string                `json:"counterpartyID"`
	ProductType          domain.ProductType    `json:"productType"`
	TradeDate            time.Time             `json:"tradeDate"`
	ValueDate            time.Time             `json:"valueDate"`
	Description          string                `json:"description"`
	Status               domain.DealStatus     `json:"status"`
	ApprovalStatus       domain.DealStatus     `json:"approvalStatus"`
	CurrentApprovalLevel domain.ApprovalLevel  `json:"currentApprovalLevel"`
	ApprovalChain        []domain.ApprovalStep `json:"approvalChain,omitempty"`
	SubmittedBy          string                `json:"submittedBy"`
	Comment              string                `json:"comment,omitempty"`
	CreatedAt            time.Time             `json:"createdAt"`
}

// ToDealResponse maps a domain deal to its response DTO.
func ToDealResponse(d *domain.Deal) DealResponse {
	return DealResponse{
		DealNumber:           d.DealNumber,
		SourceAccountID:      d.SourceAccountID,
		Category:             d.Category,
		Amount:               d.Amount,
		Currency:             d.Currency,
		CounterpartyID:       d.CounterpartyID,
		ProductType:          d.ProductType,
		TradeDate:            d.TradeDate,
		ValueDate:            d.ValueDate,
		Description:          d.Description,
		Status:               d.Status,
		ApprovalStatus:       d.ApprovalStatus,
		CurrentApprovalLevel: d.CurrentApprovalLevel,
		ApprovalChain:        d.ApprovalChain,
		SubmittedBy:          d.SubmittedBy,
		Comment:              d.Comment,
		CreatedAt:            d.CreatedAt,
	}
}

// ToDealResponses maps a slice of domain deals.
func ToDealResponses(deals []domain.Deal) []DealResponse {
	out := make([]DealResponse, len(deals))
	for i := range deals {
		out[i] = ToDealResponse(&deals[i])
	}
	return out
}
