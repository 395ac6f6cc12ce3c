package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByCode retrieves an account by its account code.
	FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)
}

// AccountTransactionSupport defines the in-transaction operations that keep
// account balances consistent with deal mutations.
type AccountTransactionSupport interface {
	// FindAccountForUpdateInTx selects an account and locks its row.
	FindAccountForUpdateInTx(ctx context.Context, tx pgx.Tx, accountCode string) (*domain.Account, error)

	// AdjustBalanceInTx applies a signed delta to an account's balance.
	AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountCode string, delta decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountTransactionSupport
}
