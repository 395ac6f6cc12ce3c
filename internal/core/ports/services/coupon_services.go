package services

import (
	"context"
	"time"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
	"github.com/treasuryops/tbo_backend/internal/dto"
)

// CouponSvcFacade manages ISIN masters and their generated coupon schedules.
type CouponSvcFacade interface {
	// CreateIsin registers a security master and generates its semiannual
	// coupon schedule once.
	CreateIsin(ctx context.Context, p domain.Principal, req dto.CreateIsinRequest) (*domain.IsinMaster, error)

	// GetIsin retrieves a security master.
	GetIsin(ctx context.Context, isin string) (*domain.IsinMaster, error)

	// GetCouponDates returns the previous/next coupon dates around a value date.
	GetCouponDates(ctx context.Context, isin string, valueDate time.Time) (*domain.CouponDates, error)

	// GetSchedule retrieves the full coupon schedule for an ISIN.
	GetSchedule(ctx context.Context, isin string) ([]domain.CouponEntry, error)
}
