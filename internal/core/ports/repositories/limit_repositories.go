package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// LimitRepositoryFacade defines the reads the limit engine performs. All of
// them run inside the caller's transaction so the check-then-insert sequence
// sees a consistent snapshot; FindLimitForUpdateInTx additionally locks the
// limit row to close the race between concurrent deals against the same
// counterparty.
type LimitRepositoryFacade interface {
	// FindLimitForUpdateInTx retrieves and locks the limit row for the key, or
	// returns nil when no limit is configured.
	FindLimitForUpdateInTx(ctx context.Context, tx pgx.Tx, counterpartyID, counterpartyType, currency string) (*domain.CounterpartyLimit, error)

	// SumGsecExposureInTx sums face values of GSec deals for the counterparty
	// and currency.
	SumGsecExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID, currency string) (decimal.Decimal, error)

	// SumProductExposureInTx sums amounts of generic transactions whose
	// transaction type maps to the given product type.
	SumProductExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID string, product domain.ProductType, currency string) (decimal.Decimal, error)

	// SumOverallExposureInTx sums exposure across all products for the
	// counterparty and currency.
	SumOverallExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID, currency string) (decimal.Decimal, error)
}

// LimitRepositoryWithTx extends LimitRepositoryFacade with transaction
// capabilities.
type LimitRepositoryWithTx interface {
	LimitRepositoryFacade
	TransactionManager
}
