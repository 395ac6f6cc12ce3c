package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// DealReader defines read operations for generic deals.
type DealReader interface {
	// FindDealByNumber retrieves a deal by its deal number.
	FindDealByNumber(ctx context.Context, dealNumber string) (*domain.Deal, error)

	// ListRecentDeals retrieves the most recently created deals.
	ListRecentDeals(ctx context.Context, limit int) ([]domain.Deal, error)
}

// DealWriter defines write operations for generic deals. Mutations that are
// part of a larger unit of work run against the caller's transaction.
type DealWriter interface {
	// InsertDealInTx persists a new deal row. The unique constraint on
	// deal_number rejects duplicate numbers at commit time.
	InsertDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal) error

	// UpdateDealInTx updates the mutable business and workflow fields of a deal.
	UpdateDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal) error

	// UpdateDealWorkflow updates only the workflow fields of a deal.
	UpdateDealWorkflow(ctx context.Context, deal domain.Deal) error

	// DeleteDealInTx removes the deal row.
	DeleteDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error
}

// DealNumberingSupport defines the in-transaction reads the numbering service
// needs to issue collision-safe deal numbers.
type DealNumberingSupport interface {
	// DealNumberExistsInTx reports whether a deal number is already taken.
	DealNumberExistsInTx(ctx context.Context, tx pgx.Tx, dealNumber string) (bool, error)

	// MaxMoneyMarketSequenceInTx returns the highest sequence already issued
	// for the given trade date and product code, or 0 when none exists.
	MaxMoneyMarketSequenceInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time, productCode string) (int, error)
}

// DealRepositoryFacade combines all generic-deal repository interfaces.
type DealRepositoryFacade interface {
	DealReader
	DealWriter
	DealNumberingSupport
}

// DealRepositoryWithTx extends DealRepositoryFacade with transaction capabilities.
type DealRepositoryWithTx interface {
	DealRepositoryFacade
	TransactionManager
}
