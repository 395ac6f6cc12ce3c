package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
)

const accountColumns = `account_code, name, category, parent_code, is_active, balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var parentCode sql.NullString
	err := row.Scan(
		&a.AccountCode, &a.Name, &a.Category, &parentCode, &a.IsActive, &a.Balance,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if parentCode.Valid {
		a.ParentCode = parentCode.String
	}
	return &a, nil
}

// FindAccountByCode retrieves an account by its account code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts WHERE account_code = $1;`
	account, err := scanAccount(r.pool.QueryRow(ctx, query, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountCode))
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountCode, err)
	}
	return account, nil
}

// FindAccountForUpdateInTx selects an account and locks its row.
func (r *PgxAccountRepository) FindAccountForUpdateInTx(ctx context.Context, tx pgx.Tx, accountCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts WHERE account_code = $1 FOR UPDATE;`
	account, err := scanAccount(tx.QueryRow(ctx, query, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountCode))
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountCode, err)
	}
	return account, nil
}

// AdjustBalanceInTx applies a signed delta to an account's balance.
func (r *PgxAccountRepository) AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountCode string, delta decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE chart_of_accounts
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_code = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, accountCode, delta, now, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance of account %s: %w", accountCode, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountCode))
	}
	return nil
}
