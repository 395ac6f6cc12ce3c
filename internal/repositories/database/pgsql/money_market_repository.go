package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
)

const moneyMarketColumns = `deal_number, deal_type, product_code, counterparty_id, currency,
	principal_amount, interest_rate, tenor, interest_amount, maturity_value, per_day_interest,
	trade_date, value_date, maturity_date, settlement_mode, settlement_bank, remarks, status,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxMoneyMarketRepository struct {
	BaseRepository
}

func newPgxMoneyMarketRepository(pool *pgxpool.Pool) portsrepo.MoneyMarketRepositoryWithTx {
	return &PgxMoneyMarketRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.MoneyMarketRepositoryWithTx = (*PgxMoneyMarketRepository)(nil)

func scanMoneyMarket(row pgx.Row) (*domain.MoneyMarketDeal, error) {
	var d domain.MoneyMarketDeal
	err := row.Scan(
		&d.DealNumber, &d.DealType, &d.ProductCode, &d.CounterpartyID, &d.Currency,
		&d.PrincipalAmount, &d.InterestRate, &d.Tenor, &d.InterestAmount, &d.MaturityValue, &d.PerDayInterest,
		&d.TradeDate, &d.ValueDate, &d.MaturityDate, &d.SettlementMode, &d.SettlementBank, &d.Remarks, &d.Status,
		&d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindMoneyMarketByNumber retrieves a money-market deal by its deal number.
func (r *PgxMoneyMarketRepository) FindMoneyMarketByNumber(ctx context.Context, dealNumber string) (*domain.MoneyMarketDeal, error) {
	query := `SELECT ` + moneyMarketColumns + ` FROM money_market_deals WHERE deal_number = $1;`
	deal, err := scanMoneyMarket(r.Pool.QueryRow(ctx, query, dealNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("money market deal %s not found", dealNumber))
		}
		return nil, fmt.Errorf("failed to find money market deal %s: %w", dealNumber, err)
	}
	return deal, nil
}

// ListOpenMoneyMarketDeals retrieves all money-market deals still accruing
// interest on the given system day.
func (r *PgxMoneyMarketRepository) ListOpenMoneyMarketDeals(ctx context.Context, systemDay time.Time) ([]domain.MoneyMarketDeal, error) {
	query := `
		SELECT ` + moneyMarketColumns + `
		FROM money_market_deals
		WHERE maturity_date >= $1 AND status <> 'rejected'
		ORDER BY deal_number;
	`
	rows, err := r.Pool.Query(ctx, query, systemDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query open money market deals: %w", err)
	}
	defer rows.Close()

	deals := []domain.MoneyMarketDeal{}
	for rows.Next() {
		deal, err := scanMoneyMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan money market deal row: %w", err)
		}
		deals = append(deals, *deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating money market deal rows: %w", err)
	}
	return deals, nil
}

// InsertMoneyMarketInTx persists a new money-market deal row.
func (r *PgxMoneyMarketRepository) InsertMoneyMarketInTx(ctx context.Context, tx pgx.Tx, deal domain.MoneyMarketDeal) error {
	query := `
		INSERT INTO money_market_deals (` + moneyMarketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := tx.Exec(ctx, query,
		deal.DealNumber, deal.DealType, deal.ProductCode, deal.CounterpartyID, deal.Currency,
		deal.PrincipalAmount, deal.InterestRate, deal.Tenor, deal.InterestAmount, deal.MaturityValue, deal.PerDayInterest,
		deal.TradeDate, deal.ValueDate, deal.MaturityDate, deal.SettlementMode, deal.SettlementBank, deal.Remarks, deal.Status,
		deal.CreatedAt, deal.CreatedBy, deal.LastUpdatedAt, deal.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: money market deal number %s already exists", apperrors.ErrDuplicate, deal.DealNumber)
		}
		return fmt.Errorf("failed to insert money market deal %s: %w", deal.DealNumber, err)
	}
	return nil
}
