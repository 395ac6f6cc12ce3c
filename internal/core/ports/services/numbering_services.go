package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// NumberingSvcFacade issues deal numbers. Both schemes run inside the caller's
// transaction so the uniqueness read and the eventual insert share a snapshot.
type NumberingSvcFacade interface {
	// NextDealNumberInTx issues a {YYYYMMDD}{rand4} number for the trade date,
	// retrying on collision a bounded number of times.
	NextDealNumberInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time) (string, error)

	// NextMoneyMarketNumberInTx issues a {YYYYMMDD}{product}{seq4} number where
	// seq is one past the highest already issued for the date and product.
	NextMoneyMarketNumberInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time, productCode string) (string, error)
}
