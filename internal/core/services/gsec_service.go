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
	"github.com/treasuryops/tbo_backend/internal/utils/authz"
	"github.com/treasuryops/tbo_backend/internal/utils/fincalc"
)

var hundred = decimal.NewFromInt(100)

// gsecService manages the government-securities deal lifecycle. Prices are
// truncated to four decimal places before anything is derived from them, and
// the dirty price is always computed, never accepted from the caller.
type gsecService struct {
	gsecRepo     portsrepo.GsecRepositoryWithTx
	numberingSvc portssvc.NumberingSvcFacade
	limitSvc     portssvc.LimitSvcFacade
	ledgerSvc    portssvc.LedgerSvcFacade
	couponSvc    portssvc.CouponSvcFacade
}

// NewGsecService creates a new GSec deal service.
func NewGsecService(gsecRepo portsrepo.GsecRepositoryWithTx, numberingSvc portssvc.NumberingSvcFacade, limitSvc portssvc.LimitSvcFacade, ledgerSvc portssvc.LedgerSvcFacade, couponSvc portssvc.CouponSvcFacade) portssvc.GsecSvc {
	return &gsecService{
		gsecRepo:     gsecRepo,
		numberingSvc: numberingSvc,
		limitSvc:     limitSvc,
		ledgerSvc:    ledgerSvc,
		couponSvc:    couponSvc,
	}
}

var _ portssvc.GsecSvc = (*gsecService)(nil)

// CreateGsecDeal prices, numbers, limit-checks and persists a GSec deal.
func (s *gsecService) CreateGsecDeal(ctx context.Context, p domain.Principal, req dto.CreateGsecRequest) (*domain.GsecDeal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !authz.Can(p, authz.ActionCreateDeal) {
		return nil, fmt.Errorf("%w: role %s may not create deals", apperrors.ErrForbidden, p.Role)
	}
	if req.ISIN == "" {
		return nil, fmt.Errorf("%w: ISIN is required", apperrors.ErrValidation)
	}
	if !req.FaceValue.IsPositive() {
		return nil, fmt.Errorf("%w: face value must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	valueDate := req.ValueDate
	if valueDate.IsZero() {
		valueDate = now
	}

	var lastCoupon, nextCoupon time.Time
	if dates, err := s.couponSvc.GetCouponDates(ctx, req.ISIN, valueDate); err == nil {
		lastCoupon = dates.Previous
		nextCoupon = dates.Next
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	cleanPrice := fincalc.Truncate4(req.CleanPrice)
	accrued := fincalc.Truncate4(req.AccruedInterest)
	if accrued.IsZero() && nextCoupon.After(lastCoupon) && !valueDate.Before(lastCoupon) {
		// Caller left accrued interest blank; pro-rate the registered coupon
		// over the current period, in per-100 price terms like the clean price.
		if master, err := s.couponSvc.GetIsin(ctx, req.ISIN); err == nil {
			daysAccrued := int(valueDate.Sub(lastCoupon).Hours() / 24)
			daysInPeriod := int(nextCoupon.Sub(lastCoupon).Hours() / 24)
			accrued = fincalc.AccruedInterest(hundred, master.CouponRate, daysAccrued, daysInPeriod)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}
	dirtyPrice := fincalc.DirtyPrice(cleanPrice, accrued)

	settlementAmount := fincalc.Truncate4(req.SettlementAmount)
	if settlementAmount.IsZero() {
		settlementAmount = fincalc.Truncate4(req.FaceValue.Mul(dirtyPrice).Div(hundred).Add(req.Brokerage))
	}

	deal := domain.GsecDeal{
		TradeType:        req.TradeType,
		ISIN:             req.ISIN,
		FaceValue:        req.FaceValue,
		CleanPrice:       cleanPrice,
		AccruedInterest:  accrued,
		DirtyPrice:       dirtyPrice,
		SettlementAmount: settlementAmount,
		Yield:            req.Yield,
		Brokerage:        req.Brokerage,
		PerDayAccrual:    req.PerDayAccrual,
		Currency:         req.Currency,
		CounterpartyID:   req.CounterpartyID,
		CounterpartyType: req.CounterpartyType,
		ValueDate:        valueDate,
		IssueDate:        req.IssueDate,
		MaturityDate:     req.MaturityDate,
		LastCouponDate:   lastCoupon,
		NextCouponDate:   nextCoupon,
		SettlementMode:   req.SettlementMode,
		SettlementBank:   req.SettlementBank,
		Portfolio:        req.Portfolio,
		Strategy:         req.Strategy,
		Broker:           req.Broker,
		Workflow:         domain.NewWorkflow(p.UserID),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     p.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: p.UserID,
		},
	}

	tx, err := s.gsecRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.gsecRepo.Rollback(ctx, tx)

	deal.DealNumber, err = s.numberingSvc.NextDealNumberInTx(ctx, tx, valueDate)
	if err != nil {
		return nil, err
	}

	decision, err := s.limitSvc.CheckLimitInTx(ctx, tx, req.CounterpartyID, req.CounterpartyType, domain.ProductGsec, req.Currency, req.FaceValue)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &apperrors.LimitExceededError{
			Reason:                 decision.Reason,
			ProductType:            string(domain.ProductGsec),
			Currency:               req.Currency,
			CurrentProductExposure: decision.CurrentProductExposure,
			CurrentOverallExposure: decision.CurrentOverallExposure,
			ProductLimit:           decision.ProductLimit,
			OverallLimit:           decision.OverallLimit,
			ProductExcess:          decision.ProductExcess,
			OverallExcess:          decision.OverallExcess,
		}
	}

	if err := s.gsecRepo.InsertGsecInTx(ctx, tx, deal); err != nil {
		return nil, fmt.Errorf("failed to insert GSec deal: %w", err)
	}
	// Deals without a settlement instruction settle outside the ledger.
	if deal.SettlementBank != "" {
		if err := s.ledgerSvc.PostGsecSettlementInTx(ctx, tx, deal); err != nil {
			return nil, err
		}
	}
	if err := s.gsecRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit GSec deal creation: %w", err)
	}

	logger.Info("GSec deal created", slog.String("deal_number", deal.DealNumber), slog.String("isin", deal.ISIN))
	return &deal, nil
}

// GetGsecByNumber retrieves a GSec deal by its deal number.
func (s *gsecService) GetGsecByNumber(ctx context.Context, dealNumber string) (*domain.GsecDeal, error) {
	return s.gsecRepo.FindGsecByNumber(ctx, dealNumber)
}

// ListRecentGsec retrieves the most recently created GSec deals.
func (s *gsecService) ListRecentGsec(ctx context.Context, limit int) ([]domain.GsecDeal, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.gsecRepo.ListRecentGsec(ctx, limit)
}

// UpdateGsecStatus applies an approve/reject decision to a GSec deal.
func (s *gsecService) UpdateGsecStatus(ctx context.Context, p domain.Principal, dealNumber string, req dto.UpdateDealStatusRequest) (*domain.GsecDeal, error) {
	if !authz.Can(p, authz.ActionUpdateStatus) {
		return nil, fmt.Errorf("%w: role %s may not change deal status", apperrors.ErrForbidden, p.Role)
	}

	deal, err := s.gsecRepo.FindGsecByNumber(ctx, dealNumber)
	if err != nil {
		return nil, err
	}
	if err := deal.ApplyDecision(req.Status, req.Comment, p, time.Now().UTC()); err != nil {
		return nil, err
	}
	deal.LastUpdatedAt = time.Now().UTC()
	deal.LastUpdatedBy = p.UserID

	if err := s.gsecRepo.UpdateGsecWorkflow(ctx, *deal); err != nil {
		return nil, fmt.Errorf("failed to update GSec workflow: %w", err)
	}
	return deal, nil
}

// moneyMarketService manages money-market placements and borrowings.
type moneyMarketService struct {
	mmRepo       portsrepo.MoneyMarketRepositoryWithTx
	numberingSvc portssvc.NumberingSvcFacade
	limitSvc     portssvc.LimitSvcFacade
	ledgerSvc    portssvc.LedgerSvcFacade
}

// NewMoneyMarketService creates a new money-market deal service.
func NewMoneyMarketService(mmRepo portsrepo.MoneyMarketRepositoryWithTx, numberingSvc portssvc.NumberingSvcFacade, limitSvc portssvc.LimitSvcFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.MoneyMarketSvc {
	return &moneyMarketService{mmRepo: mmRepo, numberingSvc: numberingSvc, limitSvc: limitSvc, ledgerSvc: ledgerSvc}
}

var _ portssvc.MoneyMarketSvc = (*moneyMarketService)(nil)

// CreateMoneyMarketDeal numbers and persists a money-market deal. Interest
// figures are derived from principal, rate and tenor when not supplied.
func (s *moneyMarketService) CreateMoneyMarketDeal(ctx context.Context, p domain.Principal, req dto.CreateMoneyMarketRequest) (*domain.MoneyMarketDeal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !authz.Can(p, authz.ActionCreateDeal) {
		return nil, fmt.Errorf("%w: role %s may not create deals", apperrors.ErrForbidden, p.Role)
	}
	if req.DealType != domain.DealTypeLending && req.DealType != domain.DealTypeBorrowing {
		return nil, fmt.Errorf("%w: deal type must be lending or borrowing", apperrors.ErrValidation)
	}
	if !req.PrincipalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: principal amount must be positive", apperrors.ErrValidation)
	}
	if req.Tenor < 0 {
		return nil, fmt.Errorf("%w: tenor must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	valueDate := req.ValueDate
	if valueDate.IsZero() {
		valueDate = req.TradeDate
	}
	maturityDate := req.MaturityDate
	if maturityDate.IsZero() && req.Tenor > 0 {
		maturityDate = valueDate.AddDate(0, 0, req.Tenor)
	}

	interest := req.InterestAmount
	if interest.IsZero() && req.Tenor > 0 {
		// Simple interest on an actual/365 basis.
		interest = fincalc.Truncate4(req.PrincipalAmount.
			Mul(req.InterestRate).
			Mul(decimal.NewFromInt(int64(req.Tenor))).
			Div(decimal.NewFromInt(36500)))
	}
	maturityValue := req.MaturityValue
	if maturityValue.IsZero() {
		maturityValue = req.PrincipalAmount.Add(interest)
	}
	perDay := req.PerDayInterest
	if perDay.IsZero() && req.Tenor > 0 {
		perDay = fincalc.Truncate4(interest.Div(decimal.NewFromInt(int64(req.Tenor))))
	}

	deal := domain.MoneyMarketDeal{
		DealType:        req.DealType,
		ProductCode:     req.ProductCode,
		CounterpartyID:  req.CounterpartyID,
		Currency:        req.Currency,
		PrincipalAmount: req.PrincipalAmount,
		InterestRate:    req.InterestRate,
		Tenor:           req.Tenor,
		InterestAmount:  interest,
		MaturityValue:   maturityValue,
		PerDayInterest:  perDay,
		TradeDate:       req.TradeDate,
		ValueDate:       valueDate,
		MaturityDate:    maturityDate,
		SettlementMode:  req.SettlementMode,
		SettlementBank:  req.SettlementBank,
		Remarks:         req.Remarks,
		Status:          domain.StatusPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     p.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: p.UserID,
		},
	}

	tx, err := s.mmRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.mmRepo.Rollback(ctx, tx)

	deal.DealNumber, err = s.numberingSvc.NextMoneyMarketNumberInTx(ctx, tx, req.TradeDate, req.ProductCode)
	if err != nil {
		return nil, err
	}

	decision, err := s.limitSvc.CheckLimitInTx(ctx, tx, req.CounterpartyID, "", domain.ProductMoneyMarket, req.Currency, req.PrincipalAmount)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &apperrors.LimitExceededError{
			Reason:                 decision.Reason,
			ProductType:            string(domain.ProductMoneyMarket),
			Currency:               req.Currency,
			CurrentProductExposure: decision.CurrentProductExposure,
			CurrentOverallExposure: decision.CurrentOverallExposure,
			ProductLimit:           decision.ProductLimit,
			OverallLimit:           decision.OverallLimit,
			ProductExcess:          decision.ProductExcess,
			OverallExcess:          decision.OverallExcess,
		}
	}

	if err := s.mmRepo.InsertMoneyMarketInTx(ctx, tx, deal); err != nil {
		return nil, fmt.Errorf("failed to insert money market deal: %w", err)
	}
	// Deals without a settlement instruction settle outside the ledger.
	if deal.SettlementBank != "" {
		if err := s.ledgerSvc.PostMoneyMarketSettlementInTx(ctx, tx, deal); err != nil {
			return nil, err
		}
	}
	if err := s.mmRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit money market deal creation: %w", err)
	}

	logger.Info("Money market deal created", slog.String("deal_number", deal.DealNumber), slog.String("deal_type", string(deal.DealType)))
	return &deal, nil
}

// GetMoneyMarketByNumber retrieves a money-market deal by its deal number.
func (s *moneyMarketService) GetMoneyMarketByNumber(ctx context.Context, dealNumber string) (*domain.MoneyMarketDeal, error) {
	return s.mmRepo.FindMoneyMarketByNumber(ctx, dealNumber)
}
