// Package fincalc holds the pure financial arithmetic used by the deal
// lifecycle: truncation-based price normalization, accrued interest, and
// coupon schedule generation. No I/O, no clocks.
package fincalc

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

var two = decimal.NewFromInt(2)
var hundred = decimal.NewFromInt(100)

// ErrEmptySchedule is returned when coupon date lookup is attempted against an
// empty schedule.
var ErrEmptySchedule = errors.New("coupon schedule is empty")

// Truncate4 truncates a value to 4 decimal places without rounding.
// Truncation is toward zero, so the magnitude of the input never increases
// regardless of sign.
func Truncate4(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(4)
}

// DirtyPrice derives the dirty price from a clean price and accrued interest,
// truncating both inputs to 4 decimal places first.
func DirtyPrice(cleanPrice, accruedInterest decimal.Decimal) decimal.Decimal {
	return Truncate4(cleanPrice).Add(Truncate4(accruedInterest))
}

// SemiannualCoupon is the per-period coupon amount for a face value at the
// given annual rate percentage: (rate/2) * face/100.
func SemiannualCoupon(couponRatePct, faceValue decimal.Decimal) decimal.Decimal {
	return couponRatePct.Div(two).Mul(faceValue).Div(hundred)
}

// AccruedInterest computes coupon-period pro-rata interest, truncated to
// 4 decimal places. daysInPeriod must be positive.
func AccruedInterest(faceValue, couponRatePct decimal.Decimal, daysAccrued, daysInPeriod int) decimal.Decimal {
	if daysInPeriod <= 0 {
		return decimal.Zero
	}
	coupon := SemiannualCoupon(couponRatePct, faceValue)
	accrued := coupon.Mul(decimal.NewFromInt(int64(daysAccrued))).Div(decimal.NewFromInt(int64(daysInPeriod)))
	return Truncate4(accrued)
}

// GenerateCouponSchedule builds the semiannual coupon schedule for a security.
// Starting at issueDate it steps forward six calendar months at a time; every
// stepped date strictly before maturityDate becomes a coupon entry with zero
// principal, and a terminal entry dated exactly at maturityDate carries the
// same coupon amount plus the full face value as principal.
func GenerateCouponSchedule(isin string, issueDate, maturityDate time.Time, couponRatePct, faceValue decimal.Decimal) []domain.CouponEntry {
	coupon := SemiannualCoupon(couponRatePct, faceValue)

	var entries []domain.CouponEntry
	n := 1
	for d := issueDate.AddDate(0, 6, 0); d.Before(maturityDate); d = d.AddDate(0, 6, 0) {
		entries = append(entries, domain.CouponEntry{
			ISIN:         isin,
			CouponNumber: n,
			CouponDate:   d,
			CouponAmount: coupon,
			Principal:    decimal.Zero,
		})
		n++
	}
	entries = append(entries, domain.CouponEntry{
		ISIN:         isin,
		CouponNumber: n,
		CouponDate:   maturityDate,
		CouponAmount: coupon,
		Principal:    faceValue,
	})
	return entries
}

// PrevNextCouponDates scans an ascending schedule for the latest coupon date
// on or before valueDate and the earliest one after it. When valueDate falls
// before the first entry the first two entries are returned; when it falls on
// or after the last entry the last two are. Single-entry schedules degenerate
// to the same date on both sides.
func PrevNextCouponDates(schedule []domain.CouponEntry, valueDate time.Time) (domain.CouponDates, error) {
	if len(schedule) == 0 {
		return domain.CouponDates{}, ErrEmptySchedule
	}

	first := schedule[0].CouponDate
	last := schedule[len(schedule)-1].CouponDate

	if valueDate.Before(first) {
		next := first
		if len(schedule) > 1 {
			next = schedule[1].CouponDate
		}
		return domain.CouponDates{Previous: first, Next: next}, nil
	}
	if !valueDate.Before(last) {
		prev := last
		if len(schedule) > 1 {
			prev = schedule[len(schedule)-2].CouponDate
		}
		return domain.CouponDates{Previous: prev, Next: last}, nil
	}

	dates := domain.CouponDates{Previous: first, Next: last}
	for _, e := range schedule {
		if !e.CouponDate.After(valueDate) {
			dates.Previous = e.CouponDate
			continue
		}
		dates.Next = e.CouponDate
		break
	}
	return dates, nil
}
