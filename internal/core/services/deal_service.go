package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/dto"
	"github.com/treasuryops/tbo_backend/internal/middleware"
	"github.com/treasuryops/tbo_backend/internal/utils/authz"
)

// dealService orchestrates the generic deal lifecycle: numbering, exposure
// checks, persistence and ledger mirroring run in one transaction so a deal
// can never exist half-posted.
type dealService struct {
	dealRepo     portsrepo.DealRepositoryWithTx
	numberingSvc portssvc.NumberingSvcFacade
	limitSvc     portssvc.LimitSvcFacade
	ledgerSvc    portssvc.LedgerSvcFacade
}

// NewDealService creates a new deal service.
func NewDealService(dealRepo portsrepo.DealRepositoryWithTx, numberingSvc portssvc.NumberingSvcFacade, limitSvc portssvc.LimitSvcFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.DealSvcFacade {
	return &dealService{
		dealRepo:     dealRepo,
		numberingSvc: numberingSvc,
		limitSvc:     limitSvc,
		ledgerSvc:    ledgerSvc,
	}
}

var _ portssvc.DealSvcFacade = (*dealService)(nil)

// GetDealByNumber retrieves a specific deal by its deal number.
func (s *dealService) GetDealByNumber(ctx context.Context, dealNumber string) (*domain.Deal, error) {
	deal, err := s.dealRepo.FindDealByNumber(ctx, dealNumber)
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// ListRecentDeals retrieves the most recently created deals.
func (s *dealService) ListRecentDeals(ctx context.Context, limit int) ([]domain.Deal, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.dealRepo.ListRecentDeals(ctx, limit)
}

// CreateDeal numbers, limit-checks, persists and ledger-posts a new deal.
func (s *dealService) CreateDeal(ctx context.Context, p domain.Principal, req dto.CreateDealRequest) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !authz.Can(p, authz.ActionCreateDeal) {
		return nil, fmt.Errorf("%w: role %s may not create deals", apperrors.ErrForbidden, p.Role)
	}
	// Negative amounts are expense deals; only a missing amount is invalid.
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: deal amount is required", apperrors.ErrValidation)
	}
	if req.SourceAccountID == "" {
		return nil, fmt.Errorf("%w: source account is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	tradeDate := req.TradeDate
	if tradeDate.IsZero() {
		tradeDate = now
	}
	valueDate := req.ValueDate
	if valueDate.IsZero() {
		valueDate = tradeDate
	}
	productType := req.ProductType
	if productType == "" {
		productType = domain.ProductTransaction
	}

	tx, err := s.dealRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.dealRepo.Rollback(ctx, tx)

	if err := s.checkLimitInTx(ctx, tx, req.CounterpartyID, req.CounterpartyType, productType, req.Currency, req.Amount); err != nil {
		return nil, err
	}

	dealNumber, err := s.numberingSvc.NextDealNumberInTx(ctx, tx, tradeDate)
	if err != nil {
		return nil, err
	}

	deal := domain.Deal{
		DealNumber:        dealNumber,
		SourceAccountID:   req.SourceAccountID,
		Category:          req.Category,
		Amount:            req.Amount,
		Currency:          req.Currency,
		CounterpartyID:    req.CounterpartyID,
		CounterpartyType:  req.CounterpartyType,
		TransactionTypeID: req.TransactionTypeID,
		ProductType:       productType,
		TradeDate:         tradeDate,
		ValueDate:         valueDate,
		Description:       req.Description,
		SettlementMode:    req.SettlementMode,
		Portfolio:         req.Portfolio,
		Strategy:          req.Strategy,
		Workflow:          domain.NewWorkflow(p.UserID),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     p.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: p.UserID,
		},
	}

	if err := s.dealRepo.InsertDealInTx(ctx, tx, deal); err != nil {
		return nil, fmt.Errorf("failed to insert deal: %w", err)
	}
	if err := s.ledgerSvc.PostDealInTx(ctx, tx, deal, valueDate); err != nil {
		return nil, err
	}

	if err := s.dealRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit deal creation: %w", err)
	}

	logger.Info("Deal created", slog.String("deal_number", deal.DealNumber), slog.String("product_type", string(productType)))
	return &deal, nil
}

// checkLimitInTx converts a denied decision into a LimitExceededError carrying
// both exposure dimensions.
func (s *dealService) checkLimitInTx(ctx context.Context, tx pgx.Tx, counterpartyID, counterpartyType string, product domain.ProductType, currency string, amount decimal.Decimal) error {
	if counterpartyID == "" {
		return nil
	}
	decision, err := s.limitSvc.CheckLimitInTx(ctx, tx, counterpartyID, counterpartyType, product, currency, amount)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &apperrors.LimitExceededError{
			Reason:                 decision.Reason,
			ProductType:            string(product),
			Currency:               currency,
			CurrentProductExposure: decision.CurrentProductExposure,
			CurrentOverallExposure: decision.CurrentOverallExposure,
			ProductLimit:           decision.ProductLimit,
			OverallLimit:           decision.OverallLimit,
			ProductExcess:          decision.ProductExcess,
			OverallExcess:          decision.OverallExcess,
		}
	}
	return nil
}

// UpdateDealFields edits the business fields of a deal. A non-authorizer edit
// sends the deal back under review; authorizers may only change the
// description. Rejected deals can only be reworked by their creator, and a
// deal accepted at the final level is immutable.
func (s *dealService) UpdateDealFields(ctx context.Context, p domain.Principal, dealNumber string, req dto.UpdateDealFieldsRequest) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByNumber(ctx, dealNumber)
	if err != nil {
		return nil, err
	}
	if deal.IsTerminal() {
		return nil, fmt.Errorf("%w: deal %s is finalized and immutable", apperrors.ErrConflict, dealNumber)
	}
	if deal.Status == domain.StatusRejected && deal.SubmittedBy != p.UserID {
		return nil, fmt.Errorf("%w: only the submitter may rework a rejected deal", apperrors.ErrForbidden)
	}
	prevAmount := deal.Amount
	prevStatus := deal.Status

	if p.IsAuthorizer() {
		if touchesBusinessFields(req) {
			return nil, fmt.Errorf("%w: authorizers may not edit deal business fields", apperrors.ErrForbidden)
		}
		if req.Description != nil {
			deal.Description = *req.Description
		}
	} else {
		if !authz.Can(p, authz.ActionEditDealFields) {
			return nil, fmt.Errorf("%w: role %s may not edit deals", apperrors.ErrForbidden, p.Role)
		}
		applyDealEdits(deal, req)
		deal.Resubmit()
	}

	now := time.Now().UTC()
	deal.LastUpdatedAt = now
	deal.LastUpdatedBy = p.UserID

	tx, err := s.dealRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.dealRepo.Rollback(ctx, tx)

	// An amount or funding change invalidates the existing postings, so the
	// exposure check reruns and the ledger pair is rebuilt. The stored row
	// still carries the pre-edit amount inside this transaction, so only the
	// change in exposure is proposed; a rejected deal sits outside the
	// exposure sums and re-enters them whole on rework.
	if req.Amount != nil || req.SourceAccountID != nil {
		proposedExposure := deal.Amount
		if prevStatus != domain.StatusRejected {
			proposedExposure = proposedExposure.Sub(prevAmount)
		}
		if err := s.checkLimitInTx(ctx, tx, deal.CounterpartyID, deal.CounterpartyType, deal.ProductType, deal.Currency, proposedExposure); err != nil {
			return nil, err
		}
		if err := s.ledgerSvc.ReverseDealInTx(ctx, tx, dealNumber); err != nil {
			return nil, err
		}
		if err := s.ledgerSvc.PostDealInTx(ctx, tx, *deal, deal.ValueDate); err != nil {
			return nil, err
		}
	}

	if err := s.dealRepo.UpdateDealInTx(ctx, tx, *deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}
	if err := s.dealRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit deal update: %w", err)
	}

	logger.Info("Deal updated", slog.String("deal_number", dealNumber))
	return deal, nil
}

func touchesBusinessFields(req dto.UpdateDealFieldsRequest) bool {
	return req.SourceAccountID != nil || req.Category != nil || req.Amount != nil ||
		req.Currency != nil || req.CounterpartyID != nil || req.TradeDate != nil ||
		req.ValueDate != nil || req.SettlementMode != nil || req.Portfolio != nil ||
		req.Strategy != nil
}

func applyDealEdits(deal *domain.Deal, req dto.UpdateDealFieldsRequest) {
	if req.SourceAccountID != nil {
		deal.SourceAccountID = *req.SourceAccountID
	}
	if req.Category != nil {
		deal.Category = *req.Category
	}
	if req.Amount != nil {
		deal.Amount = *req.Amount
	}
	if req.Currency != nil {
		deal.Currency = *req.Currency
	}
	if req.CounterpartyID != nil {
		deal.CounterpartyID = *req.CounterpartyID
	}
	if req.TradeDate != nil {
		deal.TradeDate = *req.TradeDate
	}
	if req.ValueDate != nil {
		deal.ValueDate = *req.ValueDate
	}
	if req.Description != nil {
		deal.Description = *req.Description
	}
	if req.SettlementMode != nil {
		deal.SettlementMode = *req.SettlementMode
	}
	if req.Portfolio != nil {
		deal.Portfolio = *req.Portfolio
	}
	if req.Strategy != nil {
		deal.Strategy = *req.Strategy
	}
}

// UpdateDealStatus applies an approve/reject decision to the workflow.
func (s *dealService) UpdateDealStatus(ctx context.Context, p domain.Principal, dealNumber string, req dto.UpdateDealStatusRequest) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !authz.Can(p, authz.ActionUpdateStatus) {
		return nil, fmt.Errorf("%w: role %s may not change deal status", apperrors.ErrForbidden, p.Role)
	}

	deal, err := s.dealRepo.FindDealByNumber(ctx, dealNumber)
	if err != nil {
		return nil, err
	}

	if err := deal.ApplyDecision(req.Status, req.Comment, p, time.Now().UTC()); err != nil {
		return nil, err
	}
	deal.LastUpdatedAt = time.Now().UTC()
	deal.LastUpdatedBy = p.UserID

	if err := s.dealRepo.UpdateDealWorkflow(ctx, *deal); err != nil {
		return nil, fmt.Errorf("failed to update deal workflow: %w", err)
	}

	logger.Info("Deal status updated",
		slog.String("deal_number", dealNumber),
		slog.String("status", string(deal.Status)),
		slog.String("approval_level", string(deal.CurrentApprovalLevel)))
	return deal, nil
}

// EscalateDeal moves only the workflow position of a deal.
func (s *dealService) EscalateDeal(ctx context.Context, p domain.Principal, dealNumber string, req dto.EscalateDealRequest) (*domain.Deal, error) {
	if !authz.Can(p, authz.ActionEscalate) {
		return nil, fmt.Errorf("%w: role %s may not escalate deals", apperrors.ErrForbidden, p.Role)
	}

	deal, err := s.dealRepo.FindDealByNumber(ctx, dealNumber)
	if err != nil {
		return nil, err
	}
	if err := deal.Escalate(req.ApprovalStatus, req.CurrentApprovalLevel, p); err != nil {
		return nil, err
	}
	deal.LastUpdatedAt = time.Now().UTC()
	deal.LastUpdatedBy = p.UserID

	if err := s.dealRepo.UpdateDealWorkflow(ctx, *deal); err != nil {
		return nil, fmt.Errorf("failed to update deal workflow: %w", err)
	}
	return deal, nil
}

// DeleteDeal removes a non-terminal deal, backing out its ledger postings and
// balance effects in the same transaction.
func (s *dealService) DeleteDeal(ctx context.Context, p domain.Principal, dealNumber string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !authz.Can(p, authz.ActionDeleteDeal) {
		return fmt.Errorf("%w: role %s may not delete deals", apperrors.ErrForbidden, p.Role)
	}

	deal, err := s.dealRepo.FindDealByNumber(ctx, dealNumber)
	if err != nil {
		return err
	}
	if deal.IsTerminal() {
		return fmt.Errorf("%w: deal %s is finalized and cannot be deleted", apperrors.ErrConflict, dealNumber)
	}

	tx, err := s.dealRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.dealRepo.Rollback(ctx, tx)

	if err := s.ledgerSvc.ReverseDealInTx(ctx, tx, dealNumber); err != nil {
		return err
	}
	if err := s.dealRepo.DeleteDealInTx(ctx, tx, dealNumber); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	if err := s.dealRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit deal deletion: %w", err)
	}

	logger.Info("Deal deleted", slog.String("deal_number", dealNumber))
	return nil
}
