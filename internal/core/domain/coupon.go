package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IsinMaster is the static definition of a government security.
type IsinMaster struct {
	ISIN         string          `json:"isin"`
	Issuer       string          `json:"issuer"`
	IssueDate    time.Time       `json:"issueDate"`
	MaturityDate time.Time       `json:"maturityDate"`
	CouponRate   decimal.Decimal `json:"couponRate"` // percent per annum
	Series       string          `json:"series"`
	DayBasis     string          `json:"dayBasis"`
	Currency     string          `json:"currency"`
	AuditFields
}

// CouponEntry is one row of an ISIN's coupon schedule. Principal is non-zero
// only on the terminal (maturity) entry. The schedule is generated once at
// ISIN creation and never mutated afterward.
type CouponEntry struct {
	ISIN         string          `json:"isin"`
	CouponNumber int             `json:"couponNumber"`
	CouponDate   time.Time       `json:"couponDate"`
	CouponAmount decimal.Decimal `json:"couponAmount"`
	Principal    decimal.Decimal `json:"principal"`
}

// CouponDates is the previous/next coupon date pair around a value date.
type CouponDates struct {
	Previous time.Time `json:"previous"`
	Next     time.Time `json:"next"`
}
