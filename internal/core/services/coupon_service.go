package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/dto"
	"github.com/treasuryops/tbo_backend/internal/middleware"
	"github.com/treasuryops/tbo_backend/internal/utils/fincalc"
)

// scheduleFaceValue is the per-100 notional the coupon schedule is generated
// against. Deal-level amounts scale off this base.
var scheduleFaceValue = decimal.NewFromInt(100)

// couponService manages security masters and their coupon schedules. A
// schedule is generated exactly once, when the ISIN is registered.
type couponService struct {
	couponRepo portsrepo.CouponRepositoryFacade
}

// NewCouponService creates a new coupon service.
func NewCouponService(couponRepo portsrepo.CouponRepositoryFacade) portssvc.CouponSvcFacade {
	return &couponService{couponRepo: couponRepo}
}

var _ portssvc.CouponSvcFacade = (*couponService)(nil)

// CreateIsin registers a security master and generates its semiannual coupon
// schedule.
func (s *couponService) CreateIsin(ctx context.Context, p domain.Principal, req dto.CreateIsinRequest) (*domain.IsinMaster, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.ISIN == "" {
		return nil, fmt.Errorf("%w: ISIN is required", apperrors.ErrValidation)
	}
	if !req.MaturityDate.After(req.IssueDate) {
		return nil, fmt.Errorf("%w: maturity date must be after issue date", apperrors.ErrValidation)
	}
	if req.CouponRate.IsNegative() {
		return nil, fmt.Errorf("%w: coupon rate must not be negative", apperrors.ErrValidation)
	}

	existing, err := s.couponRepo.FindIsin(ctx, req.ISIN)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to check ISIN uniqueness: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ISIN %s is already registered", apperrors.ErrDuplicate, req.ISIN)
	}

	now := time.Now().UTC()
	master := domain.IsinMaster{
		ISIN:         req.ISIN,
		Issuer:       req.Issuer,
		IssueDate:    req.IssueDate,
		MaturityDate: req.MaturityDate,
		CouponRate:   req.CouponRate,
		Series:       req.Series,
		DayBasis:     req.DayBasis,
		Currency:     req.Currency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     p.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: p.UserID,
		},
	}

	schedule := fincalc.GenerateCouponSchedule(req.ISIN, req.IssueDate, req.MaturityDate, req.CouponRate, scheduleFaceValue)
	if err := s.couponRepo.SaveIsinWithSchedule(ctx, master, schedule); err != nil {
		return nil, fmt.Errorf("failed to save ISIN with schedule: %w", err)
	}

	logger.Info("ISIN registered", slog.String("isin", req.ISIN), slog.Int("coupons", len(schedule)))
	return &master, nil
}

// GetIsin retrieves a security master.
func (s *couponService) GetIsin(ctx context.Context, isin string) (*domain.IsinMaster, error) {
	return s.couponRepo.FindIsin(ctx, isin)
}

// GetSchedule retrieves the full coupon schedule for an ISIN.
func (s *couponService) GetSchedule(ctx context.Context, isin string) ([]domain.CouponEntry, error) {
	return s.couponRepo.FindScheduleByISIN(ctx, isin)
}

// GetCouponDates returns the previous/next coupon dates around a value date.
func (s *couponService) GetCouponDates(ctx context.Context, isin string, valueDate time.Time) (*domain.CouponDates, error) {
	schedule, err := s.couponRepo.FindScheduleByISIN(ctx, isin)
	if err != nil {
		return nil, err
	}
	if len(schedule) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no coupon schedule for ISIN %s", isin))
	}

	dates, err := fincalc.PrevNextCouponDates(schedule, valueDate)
	if err != nil {
		return nil, err
	}
	return &dates, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
