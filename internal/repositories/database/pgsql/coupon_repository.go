package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
)

type PgxCouponRepository struct {
	BaseRepository
}

func newPgxCouponRepository(pool *pgxpool.Pool) portsrepo.CouponRepositoryFacade {
	return &PgxCouponRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.CouponRepositoryFacade = (*PgxCouponRepository)(nil)

// SaveIsinWithSchedule persists an ISIN master and its full coupon schedule in
// one transaction.
func (r *PgxCouponRepository) SaveIsinWithSchedule(ctx context.Context, master domain.IsinMaster, schedule []domain.CouponEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx,
		`INSERT INTO isin_master (isin, issuer, issue_date, maturity_date, coupon_rate, series, day_basis, currency,
			created_at, created_by, last_updated_at, last_updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		master.ISIN, master.Issuer, master.IssueDate, master.MaturityDate, master.CouponRate,
		master.Series, master.DayBasis, master.Currency,
		master.CreatedAt, master.CreatedBy, master.LastUpdatedAt, master.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: ISIN %s already exists", apperrors.ErrDuplicate, master.ISIN)
		}
		return fmt.Errorf("failed to insert ISIN %s: %w", master.ISIN, err)
	}

	batch := &pgx.Batch{}
	for _, entry := range schedule {
		batch.Queue(
			`INSERT INTO isin_coupon_schedule (isin, coupon_number, coupon_date, coupon_amount, principal)
			 VALUES ($1, $2, $3, $4, $5);`,
			entry.ISIN, entry.CouponNumber, entry.CouponDate, entry.CouponAmount, entry.Principal)
	}
	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to insert coupon %d for ISIN %s: %w", schedule[i].CouponNumber, master.ISIN, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close coupon schedule batch: %w", err)
	}
	if batchErr != nil {
		return batchErr
	}

	return r.Commit(ctx, tx)
}

// FindIsin retrieves an ISIN master.
func (r *PgxCouponRepository) FindIsin(ctx context.Context, isin string) (*domain.IsinMaster, error) {
	query := `
		SELECT isin, issuer, issue_date, maturity_date, coupon_rate, series, day_basis, currency,
			created_at, created_by, last_updated_at, last_updated_by
		FROM isin_master
		WHERE isin = $1;
	`
	var m domain.IsinMaster
	err := r.Pool.QueryRow(ctx, query, isin).Scan(
		&m.ISIN, &m.Issuer, &m.IssueDate, &m.MaturityDate, &m.CouponRate, &m.Series, &m.DayBasis, &m.Currency,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("ISIN %s not found", isin))
		}
		return nil, fmt.Errorf("failed to find ISIN %s: %w", isin, err)
	}
	return &m, nil
}

// FindScheduleByISIN retrieves the coupon schedule ordered by coupon date.
func (r *PgxCouponRepository) FindScheduleByISIN(ctx context.Context, isin string) ([]domain.CouponEntry, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT isin, coupon_number, coupon_date, coupon_amount, principal
		 FROM isin_coupon_schedule
		 WHERE isin = $1
		 ORDER BY coupon_date;`, isin)
	if err != nil {
		return nil, fmt.Errorf("failed to query coupon schedule for ISIN %s: %w", isin, err)
	}
	defer rows.Close()

	schedule := []domain.CouponEntry{}
	for rows.Next() {
		var entry domain.CouponEntry
		if err := rows.Scan(&entry.ISIN, &entry.CouponNumber, &entry.CouponDate, &entry.CouponAmount, &entry.Principal); err != nil {
			return nil, fmt.Errorf("failed to scan coupon schedule row: %w", err)
		}
		schedule = append(schedule, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupon schedule rows: %w", err)
	}
	return schedule, nil
}
