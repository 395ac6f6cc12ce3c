package services

import (
	"context"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
	"github.com/treasuryops/tbo_backend/internal/dto"
)

// DealReaderSvc defines read operations for generic deals.
type DealReaderSvc interface {
	// GetDealByNumber retrieves a specific deal by its deal number.
	GetDealByNumber(ctx context.Context, dealNumber string) (*domain.Deal, error)

	// ListRecentDeals retrieves the most recently created deals.
	ListRecentDeals(ctx context.Context, limit int) ([]domain.Deal, error)
}

// DealWriterSvc defines lifecycle operations for generic deals.
type DealWriterSvc interface {
	// CreateDeal numbers, limit-checks, persists and ledger-posts a new deal in
	// one transaction.
	CreateDeal(ctx context.Context, p domain.Principal, req dto.CreateDealRequest) (*domain.Deal, error)

	// UpdateDealFields edits business fields. Edits by non-authorizers send the
	// deal back under review; authorizers may only annotate, not reshape.
	UpdateDealFields(ctx context.Context, p domain.Principal, dealNumber string, req dto.UpdateDealFieldsRequest) (*domain.Deal, error)

	// UpdateDealStatus applies an approve/reject decision to the workflow.
	UpdateDealStatus(ctx context.Context, p domain.Principal, dealNumber string, req dto.UpdateDealStatusRequest) (*domain.Deal, error)

	// EscalateDeal moves only the workflow position of a deal.
	EscalateDeal(ctx context.Context, p domain.Principal, dealNumber string, req dto.EscalateDealRequest) (*domain.Deal, error)

	// DeleteDeal removes a non-terminal deal, reversing its balance effect and
	// deleting its ledger entries in the same transaction.
	DeleteDeal(ctx context.Context, p domain.Principal, dealNumber string) error
}

// DealSvcFacade combines all generic-deal service interfaces.
type DealSvcFacade interface {
	DealReaderSvc
	DealWriterSvc
}

// GsecSvc defines lifecycle operations for government-securities deals.
type GsecSvc interface {
	// CreateGsecDeal prices, numbers, limit-checks and persists a GSec deal.
	CreateGsecDeal(ctx context.Context, p domain.Principal, req dto.CreateGsecRequest) (*domain.GsecDeal, error)

	// GetGsecByNumber retrieves a GSec deal by its deal number.
	GetGsecByNumber(ctx context.Context, dealNumber string) (*domain.GsecDeal, error)

	// ListRecentGsec retrieves the most recently created GSec deals.
	ListRecentGsec(ctx context.Context, limit int) ([]domain.GsecDeal, error)

	// UpdateGsecStatus applies an approve/reject decision to a GSec deal.
	UpdateGsecStatus(ctx context.Context, p domain.Principal, dealNumber string, req dto.UpdateDealStatusRequest) (*domain.GsecDeal, error)
}

// MoneyMarketSvc defines lifecycle operations for money-market deals.
type MoneyMarketSvc interface {
	// CreateMoneyMarketDeal numbers and persists a money-market deal using the
	// per-date, per-product sequential numbering scheme.
	CreateMoneyMarketDeal(ctx context.Context, p domain.Principal, req dto.CreateMoneyMarketRequest) (*domain.MoneyMarketDeal, error)

	// GetMoneyMarketByNumber retrieves a money-market deal by its deal number.
	GetMoneyMarketByNumber(ctx context.Context, dealNumber string) (*domain.MoneyMarketDeal, error)
}
