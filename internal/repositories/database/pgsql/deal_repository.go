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

const dealDateLayout = "20060102"

const dealColumns = `deal_number, source_account_id, category, amount, currency, counterparty_id, counterparty_type,
	transaction_type_id, product_type, trade_date, value_date, description, settlement_mode, portfolio, strategy,
	status, approval_status, current_approval_level, approval_chain, submitted_by, comment,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxDealRepository struct {
	BaseRepository
}

func newPgxDealRepository(pool *pgxpool.Pool) portsrepo.DealRepositoryWithTx {
	return &PgxDealRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.DealRepositoryWithTx = (*PgxDealRepository)(nil)

func scanDeal(row pgx.Row) (*domain.Deal, error) {
	var d domain.Deal
	var chain []byte
	err := row.Scan(
		&d.DealNumber, &d.SourceAccountID, &d.Category, &d.Amount, &d.Currency, &d.CounterpartyID, &d.CounterpartyType,
		&d.TransactionTypeID, &d.ProductType, &d.TradeDate, &d.ValueDate, &d.Description, &d.SettlementMode, &d.Portfolio, &d.Strategy,
		&d.Status, &d.ApprovalStatus, &d.CurrentApprovalLevel, &chain, &d.SubmittedBy, &d.Comment,
		&d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(chain) > 0 {
		if err := json.Unmarshal(chain, &d.ApprovalChain); err != nil {
			return nil, fmt.Errorf("failed to decode approval chain for deal %s: %w", d.DealNumber, err)
		}
	}
	return &d, nil
}

// FindDealByNumber retrieves a deal by its deal number.
func (r *PgxDealRepository) FindDealByNumber(ctx context.Context, dealNumber string) (*domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM transactions WHERE deal_number = $1;`
	deal, err := scanDeal(r.Pool.QueryRow(ctx, query, dealNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("deal %s not found", dealNumber))
		}
		return nil, fmt.Errorf("failed to find deal %s: %w", dealNumber, err)
	}
	return deal, nil
}

// ListRecentDeals retrieves the most recently created deals.
func (r *PgxDealRepository) ListRecentDeals(ctx context.Context, limit int) ([]domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM transactions ORDER BY created_at DESC LIMIT $1;`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent deals: %w", err)
	}
	defer rows.Close()

	deals := []domain.Deal{}
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal row: %w", err)
		}
		deals = append(deals, *deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deal rows: %w", err)
	}
	return deals, nil
}

// InsertDealInTx persists a new deal row.
func (r *PgxDealRepository) InsertDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal) error {
	chain, err := json.Marshal(deal.ApprovalChain)
	if err != nil {
		return fmt.Errorf("failed to encode approval chain: %w", err)
	}

	query := `
		INSERT INTO transactions (` + dealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25);
	`
	_, err = tx.Exec(ctx, query,
		deal.DealNumber, deal.SourceAccountID, deal.Category, deal.Amount, deal.Currency, deal.CounterpartyID, deal.CounterpartyType,
		deal.TransactionTypeID, deal.ProductType, deal.TradeDate, deal.ValueDate, deal.Description, deal.SettlementMode, deal.Portfolio, deal.Strategy,
		deal.Status, deal.ApprovalStatus, deal.CurrentApprovalLevel, chain, deal.SubmittedBy, deal.Comment,
		deal.CreatedAt, deal.CreatedBy, deal.LastUpdatedAt, deal.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: deal number %s already exists", apperrors.ErrDuplicate, deal.DealNumber)
		}
		return fmt.Errorf("failed to insert deal %s: %w", deal.DealNumber, err)
	}
	return nil
}

// UpdateDealInTx updates the mutable business and workflow fields of a deal.
func (r *PgxDealRepository) UpdateDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal) error {
	chain, err := json.Marshal(deal.ApprovalChain)
	if err != nil {
		return fmt.Errorf("failed to encode approval chain: %w", err)
	}

	query := `
		UPDATE transactions
		SET source_account_id = $2, category = $3, amount = $4, currency = $5, counterparty_id = $6, counterparty_type = $7,
			transaction_type_id = $8, product_type = $9, trade_date = $10, value_date = $11, description = $12,
			settlement_mode = $13, portfolio = $14, strategy = $15,
			status = $16, approval_status = $17, current_approval_level = $18, approval_chain = $19, comment = $20,
			last_updated_at = $21, last_updated_by = $22
		WHERE deal_number = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		deal.DealNumber, deal.SourceAccountID, deal.Category, deal.Amount, deal.Currency, deal.CounterpartyID, deal.CounterpartyType,
		deal.TransactionTypeID, deal.ProductType, deal.TradeDate, deal.ValueDate, deal.Description,
		deal.SettlementMode, deal.Portfolio, deal.Strategy,
		deal.Status, deal.ApprovalStatus, deal.CurrentApprovalLevel, chain, deal.Comment,
		deal.LastUpdatedAt, deal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal %s: %w", deal.DealNumber, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("deal %s not found", deal.DealNumber))
	}
	return nil
}

// UpdateDealWorkflow updates only the workflow fields of a deal.
func (r *PgxDealRepository) UpdateDealWorkflow(ctx context.Context, deal domain.Deal) error {
	chain, err := json.Marshal(deal.ApprovalChain)
	if err != nil {
		return fmt.Errorf("failed to encode approval chain: %w", err)
	}

	query := `
		UPDATE transactions
		SET status = $2, approval_status = $3, current_approval_level = $4, approval_chain = $5, comment = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE deal_number = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		deal.DealNumber, deal.Status, deal.ApprovalStatus, deal.CurrentApprovalLevel, chain, deal.Comment,
		deal.LastUpdatedAt, deal.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow for deal %s: %w", deal.DealNumber, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("deal %s not found", deal.DealNumber))
	}
	return nil
}

// DeleteDealInTx removes the deal row.
func (r *PgxDealRepository) DeleteDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE deal_number = $1;`, dealNumber)
	if err != nil {
		return fmt.Errorf("failed to delete deal %s: %w", dealNumber, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("deal %s not found", dealNumber))
	}
	return nil
}

// DealNumberExistsInTx reports whether a deal number is already taken.
func (r *PgxDealRepository) DealNumberExistsInTx(ctx context.Context, tx pgx.Tx, dealNumber string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM transactions WHERE deal_number = $1
			UNION ALL
			SELECT 1 FROM gsec_deals WHERE deal_number = $1
		);`, dealNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check deal number %s: %w", dealNumber, err)
	}
	return exists, nil
}

// MaxMoneyMarketSequenceInTx returns the highest sequence already issued for
// the trade date and product code, or 0 when none exists.
func (r *PgxDealRepository) MaxMoneyMarketSequenceInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time, productCode string) (int, error) {
	prefix := tradeDate.Format(dealDateLayout) + productCode
	var maxSeq int
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(CAST(RIGHT(deal_number, 4) AS INTEGER)), 0)
		 FROM money_market_deals
		 WHERE deal_number LIKE $1 || '%';`, prefix).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("failed to read max sequence for prefix %s: %w", prefix, err)
	}
	return maxSeq, nil
}
