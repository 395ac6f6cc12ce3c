package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgx-backed repository against one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		DealRepo:        newPgxDealRepository(dbPool),
		GsecRepo:        newPgxGsecRepository(dbPool),
		MoneyMarketRepo: newPgxMoneyMarketRepository(dbPool),
		LedgerRepo:      newPgxLedgerRepository(dbPool),
		AccountRepo:     newPgxAccountRepository(dbPool),
		LimitRepo:       newPgxLimitRepository(dbPool),
		CouponRepo:      newPgxCouponRepository(dbPool),
		SystemDayRepo:   newPgxSystemDayRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
	}
}
