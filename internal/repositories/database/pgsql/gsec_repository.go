package pgsql

import (
	"context"
	"encoding/json"
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

const gsecColumns = `deal_number, trade_type, isin, face_value, clean_price, accrued_interest, dirty_price,
	settlement_amount, yield, brokerage, per_day_accrual, currency, counterparty_id, counterparty_type,
	value_date, issue_date, maturity_date, last_coupon_date, next_coupon_date,
	settlement_mode, settlement_bank, portfolio, strategy, broker,
	status, approval_status, current_approval_level, approval_chain, submitted_by, comment,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxGsecRepository struct {
	BaseRepository
}

func newPgxGsecRepository(pool *pgxpool.Pool) portsrepo.GsecRepositoryWithTx {
	return &PgxGsecRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.GsecRepositoryWithTx = (*PgxGsecRepository)(nil)

func scanGsec(row pgx.Row) (*domain.GsecDeal, error) {
	var g domain.GsecDeal
	var chain []byte
	err := row.Scan(
		&g.DealNumber, &g.TradeType, &g.ISIN, &g.FaceValue, &g.CleanPrice, &g.AccruedInterest, &g.DirtyPrice,
		&g.SettlementAmount, &g.Yield, &g.Brokerage, &g.PerDayAccrual, &g.Currency, &g.CounterpartyID, &g.CounterpartyType,
		&g.ValueDate, &g.IssueDate, &g.MaturityDate, &g.LastCouponDate, &g.NextCouponDate,
		&g.SettlementMode, &g.SettlementBank, &g.Portfolio, &g.Strategy, &g.Broker,
		&g.Status, &g.ApprovalStatus, &g.CurrentApprovalLevel, &chain, &g.SubmittedBy, &g.Comment,
		&g.CreatedAt, &g.CreatedBy, &g.LastUpdatedAt, &g.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(chain) > 0 {
		if err := json.Unmarshal(chain, &g.ApprovalChain); err != nil {
			return nil, fmt.Errorf("failed to decode approval chain for GSec deal %s: %w", g.DealNumber, err)
		}
	}
	return &g, nil
}

// FindGsecByNumber retrieves a GSec deal by its deal number.
func (r *PgxGsecRepository) FindGsecByNumber(ctx context.Context, dealNumber string) (*domain.GsecDeal, error) {
	query := `SELECT ` + gsecColumns + ` FROM gsec_deals WHERE deal_number = $1;`
	deal, err := scanGsec(r.Pool.QueryRow(ctx, query, dealNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("GSec deal %s not found", dealNumber))
		}
		return nil, fmt.Errorf("failed to find GSec deal %s: %w", dealNumber, err)
	}
	return deal, nil
}

// ListRecentGsec retrieves the most recently created GSec deals.
func (r *PgxGsecRepository) ListRecentGsec(ctx context.Context, limit int) ([]domain.GsecDeal, error) {
	query := `SELECT ` + gsecColumns + ` FROM gsec_deals ORDER BY created_at DESC LIMIT $1;`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent GSec deals: %w", err)
	}
	defer rows.Close()
	return collectGsec(rows)
}

// ListAccruingGsec retrieves GSec deals with a positive per-day accrual and a
// maturity date on or after the given system day.
func (r *PgxGsecRepository) ListAccruingGsec(ctx context.Context, systemDay time.Time) ([]domain.GsecDeal, error) {
	query := `
		SELECT ` + gsecColumns + `
		FROM gsec_deals
		WHERE per_day_accrual > 0 AND maturity_date >= $1 AND status <> 'rejected'
		ORDER BY deal_number;
	`
	rows, err := r.Pool.Query(ctx, query, systemDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query accruing GSec deals: %w", err)
	}
	defer rows.Close()
	return collectGsec(rows)
}

func collectGsec(rows pgx.Rows) ([]domain.GsecDeal, error) {
	deals := []domain.GsecDeal{}
	for rows.Next() {
		deal, err := scanGsec(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan GSec deal row: %w", err)
		}
		deals = append(deals, *deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating GSec deal rows: %w", err)
	}
	return deals, nil
}

// InsertGsecInTx persists a new GSec deal row.
func (r *PgxGsecRepository) InsertGsecInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error {
	chain, err := json.Marshal(deal.ApprovalChain)
	if err != nil {
		return fmt.Errorf("failed to encode approval chain: %w", err)
	}

	query := `
		INSERT INTO gsec_deals (` + gsecColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34);
	`
	_, err = tx.Exec(ctx, query,
		deal.DealNumber, deal.TradeType, deal.ISIN, deal.FaceValue, deal.CleanPrice, deal.AccruedInterest, deal.DirtyPrice,
		deal.SettlementAmount, deal.Yield, deal.Brokerage, deal.PerDayAccrual, deal.Currency, deal.CounterpartyID, deal.CounterpartyType,
		deal.ValueDate, deal.IssueDate, deal.MaturityDate, deal.LastCouponDate, deal.NextCouponDate,
		deal.SettlementMode, deal.SettlementBank, deal.Portfolio, deal.Strategy, deal.Broker,
		deal.Status, deal.ApprovalStatus, deal.CurrentApprovalLevel, chain, deal.SubmittedBy, deal.Comment,
		deal.CreatedAt, deal.CreatedBy, deal.LastUpdatedAt, deal.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: GSec deal number %s already exists", apperrors.ErrDuplicate, deal.DealNumber)
		}
		return fmt.Errorf("failed to insert GSec deal %s: %w", deal.DealNumber, err)
	}
	return nil
}

// UpdateGsecInTx updates the mutable fields of a GSec deal.
func (r *PgxGsecRepository) UpdateGsecInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error {
	chain, err := json.Marshal(deal.ApprovalChain)
	if err != nil {
		return fmt.Errorf("failed to encode approval chain: %w", err)
	}

	query := `
		UPDATE gsec_deals
		SET face_value = $2, clean_price = $3, accrued_interest = $4, dirty_price = $5, settlement_amount = $6,
			yield = $7, brokerage = $8, per_day_accrual = $9, value_date = $10, maturity_date = $11,
			settlement_mode = $12, settlement_bank = $13, portfolio = $14, strategy = $15, broker = $16,
			status = $17, approval_status = $18, current_approval_level = $19, approval_chain = $20, comment = $21,
			last_updated_at = $22, last_updated_by = $23
		WHERE deal_number = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		deal.DealNumber, deal.FaceValue, deal.CleanPrice, deal.AccruedInterest, deal.DirtyPrice, deal.SettlementAmount,
		deal.Yield, deal.Brokerage, deal.PerDayAccrual, deal.ValueDate, deal.MaturityDate,
		deal.SettlementMode, deal.SettlementBank, deal.Portfolio, deal.Strategy, deal.Broker,
		deal.Status, deal.ApprovalStatus, deal.CurrentApprovalLevel, chain, deal.Comment,
		deal.LastUpdatedAt, deal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update GSec deal %s: %w", deal.DealNumber, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("GSec deal %s not found", deal.DealNumber))
	}
	return nil
}

// UpdateGsecWorkflow updates only the workflow fields of a GSec deal.
func (r *PgxGsecRepository) UpdateGsecWorkflow(ctx context.Context, deal domain.GsecDeal) error {
	chain, err := json.Marshal(deal.ApprovalChain)
	if err != nil {
		return fmt.Errorf("failed to encode approval chain: %w", err)
	}

	query := `
		UPDATE gsec_deals
		SET status = $2, approval_status = $3, current_approval_level = $4, approval_chain = $5, comment = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE deal_number = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		deal.DealNumber, deal.Status, deal.ApprovalStatus, deal.CurrentApprovalLevel, chain, deal.Comment,
		deal.LastUpdatedAt, deal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow for GSec deal %s: %w", deal.DealNumber, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("GSec deal %s not found", deal.DealNumber))
	}
	return nil
}
