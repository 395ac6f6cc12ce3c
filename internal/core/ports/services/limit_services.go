package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// LimitSvcFacade defines the counterparty exposure checks.
type LimitSvcFacade interface {
	// CheckLimitInTx evaluates a proposed additional exposure against the
	// counterparty's configured ceilings inside the caller's transaction. No
	// configured limit row means the deal is allowed.
	CheckLimitInTx(ctx context.Context, tx pgx.Tx, counterpartyID, counterpartyType string, product domain.ProductType, currency string, amount decimal.Decimal) (*domain.LimitDecision, error)

	// GetLimitStatus reports current exposure against ceilings for a key,
	// without proposing new exposure.
	GetLimitStatus(ctx context.Context, counterpartyID, counterpartyType string, product domain.ProductType, currency string) (*domain.LimitDecision, error)
}
