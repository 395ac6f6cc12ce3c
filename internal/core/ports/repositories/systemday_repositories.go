package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// SystemDayRepositoryFacade manages the single current business date. Advances
// are serialized through a row lock so the day can never be advanced twice by
// overlapping callers.
type SystemDayRepositoryFacade interface {
	// GetSystemDay retrieves the current system day.
	GetSystemDay(ctx context.Context) (*domain.SystemDay, error)

	// GetSystemDayForUpdateInTx retrieves and locks the current system day row.
	GetSystemDayForUpdateInTx(ctx context.Context, tx pgx.Tx) (*domain.SystemDay, error)

	// AdvanceSystemDayInTx writes the next system day as a new version.
	AdvanceSystemDayInTx(ctx context.Context, tx pgx.Tx, next time.Time, now time.Time) error

	// TryMarkEodPostedInTx records that a deal's accrual was posted for a
	// system date. It returns false when the (deal, date) pair already exists,
	// making EOD postings idempotent per deal per day.
	TryMarkEodPostedInTx(ctx context.Context, tx pgx.Tx, dealNumber string, systemDate time.Time) (bool, error)
}

// SystemDayRepositoryWithTx extends SystemDayRepositoryFacade with transaction
// capabilities.
type SystemDayRepositoryWithTx interface {
	SystemDayRepositoryFacade
	TransactionManager
}
