package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIsinRequest is the payload for registering a security master. The
// coupon schedule is generated once from these fields at creation time.
type CreateIsinRequest struct {
	ISIN         string          `json:"isin" binding:"required"`
	Issuer       string          `json:"issuer"`
	IssueDate    time.Time       `json:"issueDate" time_format:"2006-01-02" binding:"required"`
	MaturityDate time.Time       `json:"maturityDate" time_format:"2006-01-02" binding:"required"`
	CouponRate   decimal.Decimal `json:"couponRate" binding:"required"`
	Series       string          `json:"series"`
	DayBasis     string          `json:"dayBasis"`
	Currency     string          `json:"currency"`
}

// CouponDatesResponse is the previous/next coupon date pair for a value date.
type CouponDatesResponse struct {
	ISIN     string    `json:"isin"`
	Previous time.Time `json:"previous"`
	Next     time.Time `json:"next"`
}
