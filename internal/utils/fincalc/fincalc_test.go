package fincalc_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
	"github.com/treasuryops/tbo_backend/internal/utils/fincalc"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTruncate4(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"truncates not rounds", "1.23456789", "1.2345"},
		{"high digit not rounded up", "99.99999", "99.9999"},
		{"already 4dp unchanged", "5.1234", "5.1234"},
		{"fewer digits unchanged", "10.5", "10.5"},
		{"integer unchanged", "42", "42"},
		{"negative truncates toward zero", "-1.23456", "-1.2345"},
		{"zero", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fincalc.Truncate4(d(tt.in))
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestTruncate4NeverIncreasesMagnitude(t *testing.T) {
	for _, in := range []string{"0.00009", "123.45678", "0.99995", "1000000.12349"} {
		v := d(in)
		got := fincalc.Truncate4(v)
		assert.True(t, got.LessThanOrEqual(v), "truncation increased %s to %s", v, got)
		assert.True(t, got.GreaterThanOrEqual(decimal.Zero))
	}
}

func TestDirtyPrice(t *testing.T) {
	// Both inputs are truncated before summing, so the dirty price of
	// untruncated inputs equals the sum of their truncations.
	clean := d("98.7654321")
	accrued := d("1.2345678")
	got := fincalc.DirtyPrice(clean, accrued)
	assert.True(t, d("99.9999").Equal(got), "got %s", got)

	got = fincalc.DirtyPrice(d("100"), d("0"))
	assert.True(t, d("100").Equal(got))
}

func TestGenerateCouponSchedule(t *testing.T) {
	// 2-year 10% semiannual bond: three interim coupons of 5.00 plus a
	// terminal coupon-and-redemption entry at maturity.
	entries := fincalc.GenerateCouponSchedule("LKG0001",
		day("2025-01-15"), day("2027-01-15"), d("10"), d("100"))

	require.Len(t, entries, 4)

	wantDates := []string{"2025-07-15", "2026-01-15", "2026-07-15", "2027-01-15"}
	for i, e := range entries {
		assert.Equal(t, i+1, e.CouponNumber)
		assert.Equal(t, day(wantDates[i]), e.CouponDate)
		assert.True(t, d("5").Equal(e.CouponAmount), "entry %d coupon %s", i, e.CouponAmount)
	}
	for _, e := range entries[:3] {
		assert.True(t, e.Principal.IsZero())
	}
	assert.True(t, d("100").Equal(entries[3].Principal))
}

func TestGenerateCouponScheduleShortDated(t *testing.T) {
	// Maturity inside the first period: only the terminal entry.
	entries := fincalc.GenerateCouponSchedule("LKG0002",
		day("2025-01-15"), day("2025-05-15"), d("8"), d("100"))
	require.Len(t, entries, 1)
	assert.Equal(t, day("2025-05-15"), entries[0].CouponDate)
	assert.True(t, d("100").Equal(entries[0].Principal))
}

func TestGenerateCouponScheduleStepOnMaturity(t *testing.T) {
	// An exact 6-month tenor steps straight onto maturity; the loop must not
	// emit an interim entry for that date.
	entries := fincalc.GenerateCouponSchedule("LKG0003",
		day("2025-01-15"), day("2025-07-15"), d("12"), d("100"))
	require.Len(t, entries, 1)
	assert.Equal(t, day("2025-07-15"), entries[0].CouponDate)
}

func TestPrevNextCouponDates(t *testing.T) {
	schedule := fincalc.GenerateCouponSchedule("LKG0001",
		day("2025-01-15"), day("2027-01-15"), d("10"), d("100"))

	tests := []struct {
		name      string
		valueDate string
		wantPrev  string
		wantNext  string
	}{
		{"mid period", "2025-10-01", "2025-07-15", "2026-01-15"},
		{"on a coupon date", "2026-01-15", "2026-01-15", "2026-07-15"},
		{"before first entry falls back to first two", "2025-02-01", "2025-07-15", "2026-01-15"},
		{"after last entry falls back to last two", "2027-06-30", "2026-07-15", "2027-01-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fincalc.PrevNextCouponDates(schedule, day(tt.valueDate))
			require.NoError(t, err)
			assert.Equal(t, day(tt.wantPrev), got.Previous)
			assert.Equal(t, day(tt.wantNext), got.Next)
		})
	}
}

func TestPrevNextCouponDatesEmpty(t *testing.T) {
	_, err := fincalc.PrevNextCouponDates(nil, day("2025-01-01"))
	assert.ErrorIs(t, err, fincalc.ErrEmptySchedule)
}

func TestPrevNextCouponDatesSingleEntry(t *testing.T) {
	schedule := []domain.CouponEntry{{CouponDate: day("2025-07-15")}}

	got, err := fincalc.PrevNextCouponDates(schedule, day("2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, day("2025-07-15"), got.Previous)
	assert.Equal(t, day("2025-07-15"), got.Next)
}

func TestAccruedInterest(t *testing.T) {
	// 90 of 182 days into a 10% semiannual period on face 100:
	// 5 * 90/182 = 2.47252747... truncated to 2.4725.
	got := fincalc.AccruedInterest(d("100"), d("10"), 90, 182)
	assert.True(t, d("2.4725").Equal(got), "got %s", got)

	assert.True(t, fincalc.AccruedInterest(d("100"), d("10"), 10, 0).IsZero())
}
