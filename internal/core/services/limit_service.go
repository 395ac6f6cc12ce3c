package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/middleware"
)

// limitService evaluates counterparty exposure against configured ceilings.
type limitService struct {
	limitRepo portsrepo.LimitRepositoryWithTx
}

// NewLimitService creates a new limit service.
func NewLimitService(limitRepo portsrepo.LimitRepositoryWithTx) portssvc.LimitSvcFacade {
	return &limitService{limitRepo: limitRepo}
}

var _ portssvc.LimitSvcFacade = (*limitService)(nil)

// CheckLimitInTx evaluates a proposed additional exposure inside the caller's
// transaction. A counterparty with no configured limit row passes unchecked;
// limit configuration is an opt-in control, not a default denial.
func (s *limitService) CheckLimitInTx(ctx context.Context, tx pgx.Tx, counterpartyID, counterpartyType string, product domain.ProductType, currency string, amount decimal.Decimal) (*domain.LimitDecision, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit, err := s.limitRepo.FindLimitForUpdateInTx(ctx, tx, counterpartyID, counterpartyType, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to load counterparty limit: %w", err)
	}
	if limit == nil {
		logger.Debug("No limit configured for counterparty, allowing deal",
			slog.String("counterparty_id", counterpartyID),
			slog.String("currency", currency))
		return &domain.LimitDecision{Allowed: true}, nil
	}

	productExposure, overallExposure, err := s.currentExposures(ctx, tx, counterpartyID, product, currency)
	if err != nil {
		return nil, err
	}

	decision := evaluateLimit(limit, product, productExposure, overallExposure, amount)
	if !decision.Allowed {
		logger.Warn("Counterparty limit breached",
			slog.String("counterparty_id", counterpartyID),
			slog.String("product_type", string(product)),
			slog.String("reason", decision.Reason))
	}
	return decision, nil
}

// GetLimitStatus reports current exposure against ceilings without proposing
// new exposure. It runs in a short transaction of its own.
func (s *limitService) GetLimitStatus(ctx context.Context, counterpartyID, counterpartyType string, product domain.ProductType, currency string) (*domain.LimitDecision, error) {
	tx, err := s.limitRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.limitRepo.Rollback(ctx, tx)

	decision, err := s.CheckLimitInTx(ctx, tx, counterpartyID, counterpartyType, product, currency, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if err := s.limitRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return decision, nil
}

func (s *limitService) currentExposures(ctx context.Context, tx pgx.Tx, counterpartyID string, product domain.ProductType, currency string) (decimal.Decimal, decimal.Decimal, error) {
	var productExposure decimal.Decimal
	var err error

	// GSec exposure is measured in face value and lives in its own table.
	if product == domain.ProductGsec {
		productExposure, err = s.limitRepo.SumGsecExposureInTx(ctx, tx, counterpartyID, currency)
	} else {
		productExposure, err = s.limitRepo.SumProductExposureInTx(ctx, tx, counterpartyID, product, currency)
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum product exposure: %w", err)
	}

	overallExposure, err := s.limitRepo.SumOverallExposureInTx(ctx, tx, counterpartyID, currency)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum overall exposure: %w", err)
	}
	return productExposure, overallExposure, nil
}

// evaluateLimit is the pure exposure arithmetic: a ceiling of zero means no
// ceiling for that dimension, and both dimensions are reported even when only
// one is breached.
func evaluateLimit(limit *domain.CounterpartyLimit, product domain.ProductType, productExposure, overallExposure, amount decimal.Decimal) *domain.LimitDecision {
	productLimit := limit.ProductLimit(product)
	proposedProduct := productExposure.Add(amount)
	proposedOverall := overallExposure.Add(amount)

	decision := &domain.LimitDecision{
		Allowed:                true,
		CurrentProductExposure: productExposure,
		CurrentOverallExposure: overallExposure,
		ProductLimit:           productLimit,
		OverallLimit:           limit.OverallLimit,
	}

	if productLimit.IsPositive() && proposedProduct.GreaterThan(productLimit) {
		decision.Allowed = false
		decision.ProductExcess = proposedProduct.Sub(productLimit)
		decision.Reason = fmt.Sprintf("product limit for %s exceeded by %s", product, decision.ProductExcess)
	}
	if limit.OverallLimit.IsPositive() && proposedOverall.GreaterThan(limit.OverallLimit) {
		decision.Allowed = false
		decision.OverallExcess = proposedOverall.Sub(limit.OverallLimit)
		if decision.Reason != "" {
			decision.Reason += "; "
		}
		decision.Reason += fmt.Sprintf("overall limit exceeded by %s", decision.OverallExcess)
	}
	return decision
}
