package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
)

type PgxSystemDayRepository struct {
	BaseRepository
}

func newPgxSystemDayRepository(pool *pgxpool.Pool) portsrepo.SystemDayRepositoryWithTx {
	return &PgxSystemDayRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.SystemDayRepositoryWithTx = (*PgxSystemDayRepository)(nil)

const currentSystemDayQuery = `
	SELECT version, system_date, last_updated
	FROM system_day
	ORDER BY version DESC
	LIMIT 1`

// GetSystemDay retrieves the current system day.
func (r *PgxSystemDayRepository) GetSystemDay(ctx context.Context) (*domain.SystemDay, error) {
	var day domain.SystemDay
	err := r.Pool.QueryRow(ctx, currentSystemDayQuery+`;`).Scan(&day.Version, &day.SystemDate, &day.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("system day is not initialized")
		}
		return nil, fmt.Errorf("failed to read system day: %w", err)
	}
	return &day, nil
}

// GetSystemDayForUpdateInTx retrieves and locks the current system day row.
func (r *PgxSystemDayRepository) GetSystemDayForUpdateInTx(ctx context.Context, tx pgx.Tx) (*domain.SystemDay, error) {
	var day domain.SystemDay
	err := tx.QueryRow(ctx, currentSystemDayQuery+` FOR UPDATE;`).Scan(&day.Version, &day.SystemDate, &day.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("system day is not initialized")
		}
		return nil, fmt.Errorf("failed to lock system day: %w", err)
	}
	return &day, nil
}

// AdvanceSystemDayInTx writes the next system day as a new version.
func (r *PgxSystemDayRepository) AdvanceSystemDayInTx(ctx context.Context, tx pgx.Tx, next time.Time, now time.Time) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO system_day (system_date, last_updated) VALUES ($1, $2);`, next, now)
	if err != nil {
		return fmt.Errorf("failed to advance system day: %w", err)
	}
	return nil
}

// TryMarkEodPostedInTx records that a deal's accrual was posted for a system
// date. Returns false when the (deal, date) pair already exists.
func (r *PgxSystemDayRepository) TryMarkEodPostedInTx(ctx context.Context, tx pgx.Tx, dealNumber string, systemDate time.Time) (bool, error) {
	cmdTag, err := tx.Exec(ctx,
		`INSERT INTO eod_postings (deal_number, system_date)
		 VALUES ($1, $2)
		 ON CONFLICT (deal_number, system_date) DO NOTHING;`, dealNumber, systemDate)
	if err != nil {
		return false, fmt.Errorf("failed to mark EOD posting for deal %s: %w", dealNumber, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
