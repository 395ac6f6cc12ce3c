package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
)

type PgxLimitRepository struct {
	BaseRepository
}

func newPgxLimitRepository(pool *pgxpool.Pool) portsrepo.LimitRepositoryWithTx {
	return &PgxLimitRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.LimitRepositoryWithTx = (*PgxLimitRepository)(nil)

// FindLimitForUpdateInTx retrieves and locks the limit row for the key, or
// returns nil when no limit is configured.
func (r *PgxLimitRepository) FindLimitForUpdateInTx(ctx context.Context, tx pgx.Tx, counterpartyID, counterpartyType, currency string) (*domain.CounterpartyLimit, error) {
	query := `
		SELECT counterparty_id, counterparty_type, currency, overall_limit,
			created_at, created_by, last_updated_at, last_updated_by
		FROM counterparty_limits
		WHERE counterparty_id = $1 AND counterparty_type = $2 AND currency = $3
		FOR UPDATE;
	`
	var limit domain.CounterpartyLimit
	err := tx.QueryRow(ctx, query, counterpartyID, counterpartyType, currency).Scan(
		&limit.CounterpartyID, &limit.CounterpartyType, &limit.Currency, &limit.OverallLimit,
		&limit.CreatedAt, &limit.CreatedBy, &limit.LastUpdatedAt, &limit.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock limit for %s/%s/%s: %w", counterpartyID, counterpartyType, currency, err)
	}

	rows, err := tx.Query(ctx,
		`SELECT product_type, product_limit
		 FROM counterparty_product_limits
		 WHERE counterparty_id = $1 AND counterparty_type = $2 AND currency = $3;`,
		counterpartyID, counterpartyType, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to query product limits for %s: %w", counterpartyID, err)
	}
	defer rows.Close()

	limit.ProductLimits = map[domain.ProductType]decimal.Decimal{}
	for rows.Next() {
		var product domain.ProductType
		var ceiling decimal.Decimal
		if err := rows.Scan(&product, &ceiling); err != nil {
			return nil, fmt.Errorf("failed to scan product limit row: %w", err)
		}
		limit.ProductLimits[product] = ceiling
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product limit rows: %w", err)
	}
	return &limit, nil
}

// SumGsecExposureInTx sums face values of GSec deals for the counterparty and
// currency.
func (r *PgxLimitRepository) SumGsecExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID, currency string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(face_value), 0)
		 FROM gsec_deals
		 WHERE counterparty_id = $1 AND currency = $2 AND status <> 'rejected';`,
		counterpartyID, currency).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum GSec exposure for %s: %w", counterpartyID, err)
	}
	return total, nil
}

// SumProductExposureInTx sums amounts of deals whose product type matches.
func (r *PgxLimitRepository) SumProductExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID string, product domain.ProductType, currency string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM (
			SELECT amount FROM transactions
			WHERE counterparty_id = $1 AND product_type = $2 AND currency = $3 AND status <> 'rejected'
			UNION ALL
			SELECT principal_amount FROM money_market_deals
			WHERE counterparty_id = $1 AND $2 = 'money_market' AND currency = $3 AND status <> 'rejected'
		 ) exposures(amount);`,
		counterpartyID, product, currency).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s exposure for %s: %w", product, counterpartyID, err)
	}
	return total, nil
}

// SumOverallExposureInTx sums exposure across all products for the
// counterparty and currency.
func (r *PgxLimitRepository) SumOverallExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID, currency string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM (
			SELECT amount FROM transactions
			WHERE counterparty_id = $1 AND currency = $2 AND status <> 'rejected'
			UNION ALL
			SELECT principal_amount FROM money_market_deals
			WHERE counterparty_id = $1 AND currency = $2 AND status <> 'rejected'
			UNION ALL
			SELECT face_value FROM gsec_deals
			WHERE counterparty_id = $1 AND currency = $2 AND status <> 'rejected'
		 ) exposures(amount);`,
		counterpartyID, currency).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum overall exposure for %s: %w", counterpartyID, err)
	}
	return total, nil
}
