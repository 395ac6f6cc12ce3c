package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// GsecReader defines read operations for government-securities deals.
type GsecReader interface {
	// FindGsecByNumber retrieves a GSec deal by its deal number.
	FindGsecByNumber(ctx context.Context, dealNumber string) (*domain.GsecDeal, error)

	// ListRecentGsec retrieves the most recently created GSec deals.
	ListRecentGsec(ctx context.Context, limit int) ([]domain.GsecDeal, error)

	// ListAccruingGsec retrieves GSec deals with a positive per-day accrual and
	// a maturity date on or after the given system day.
	ListAccruingGsec(ctx context.Context, systemDay time.Time) ([]domain.GsecDeal, error)
}

// GsecWriter defines write operations for government-securities deals.
type GsecWriter interface {
	// InsertGsecInTx persists a new GSec deal row.
	InsertGsecInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error

	// UpdateGsecInTx updates the mutable fields of a GSec deal.
	UpdateGsecInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error

	// UpdateGsecWorkflow updates only the workflow fields of a GSec deal.
	UpdateGsecWorkflow(ctx context.Context, deal domain.GsecDeal) error
}

// GsecRepositoryFacade combines all GSec repository interfaces.
type GsecRepositoryFacade interface {
	GsecReader
	GsecWriter
}

// GsecRepositoryWithTx extends GsecRepositoryFacade with transaction capabilities.
type GsecRepositoryWithTx interface {
	GsecRepositoryFacade
	TransactionManager
}

// MoneyMarketReader defines read operations for money-market deals.
type MoneyMarketReader interface {
	// FindMoneyMarketByNumber retrieves a money-market deal by its deal number.
	FindMoneyMarketByNumber(ctx context.Context, dealNumber string) (*domain.MoneyMarketDeal, error)

	// ListOpenMoneyMarketDeals retrieves all money-market deals still accruing
	// interest (maturity on or after the given system day).
	ListOpenMoneyMarketDeals(ctx context.Context, systemDay time.Time) ([]domain.MoneyMarketDeal, error)
}

// MoneyMarketWriter defines write operations for money-market deals.
type MoneyMarketWriter interface {
	// InsertMoneyMarketInTx persists a new money-market deal row.
	InsertMoneyMarketInTx(ctx context.Context, tx pgx.Tx, deal domain.MoneyMarketDeal) error
}

// MoneyMarketRepositoryFacade combines the money-market repository interfaces.
type MoneyMarketRepositoryFacade interface {
	MoneyMarketReader
	MoneyMarketWriter
}

// MoneyMarketRepositoryWithTx extends MoneyMarketRepositoryFacade with
// transaction capabilities.
type MoneyMarketRepositoryWithTx interface {
	MoneyMarketRepositoryFacade
	TransactionManager
}
