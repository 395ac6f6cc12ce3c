package repositories

import (
	"context"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// CouponRepositoryFacade defines persistence for ISIN masters and their coupon
// schedules. Schedules are written once at ISIN creation and never mutated.
type CouponRepositoryFacade interface {
	// SaveIsinWithSchedule persists an ISIN master and its full coupon
	// schedule atomically.
	SaveIsinWithSchedule(ctx context.Context, master domain.IsinMaster, schedule []domain.CouponEntry) error

	// FindIsin retrieves an ISIN master.
	FindIsin(ctx context.Context, isin string) (*domain.IsinMaster, error)

	// FindScheduleByISIN retrieves the coupon schedule ordered by coupon date.
	FindScheduleByISIN(ctx context.Context, isin string) ([]domain.CouponEntry, error)
}
