package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// LedgerReaderSvc defines read operations over the general ledger.
type LedgerReaderSvc interface {
	// GetGeneralLedger retrieves ledger entries matching the filters.
	GetGeneralLedger(ctx context.Context, filters domain.LedgerFilters) ([]domain.LedgerEntry, error)

	// GetEntriesByDealNumber retrieves all ledger entries tied to one deal.
	GetEntriesByDealNumber(ctx context.Context, dealNumber string) ([]domain.LedgerEntry, error)

	// GetProfitAndLoss aggregates revenue and expense balances over a period.
	GetProfitAndLoss(ctx context.Context, startDate, endDate time.Time) (*domain.ProfitAndLoss, error)

	// GetBalanceSheet aggregates asset, liability and equity balances as of a
	// date, with retained earnings folded into equity.
	GetBalanceSheet(ctx context.Context, asOfDate time.Time) (*domain.BalanceSheet, error)
}

// LedgerPosterSvc defines the in-transaction posting operations other services
// compose into their units of work.
type LedgerPosterSvc interface {
	// PostEntriesInTx validates that debits equal credits per deal and persists
	// the entries. An imbalance aborts with an error; the caller must roll back.
	PostEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error

	// PostDealInTx builds and persists the debit/credit pair for a deal,
	// classified by the sign of its amount, using the configured posting rules.
	PostDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal, entryDate time.Time) error

	// PostGsecSettlementInTx posts the settlement leg of a GSec deal against
	// the account its settlement bank code resolves to.
	PostGsecSettlementInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error

	// PostMoneyMarketSettlementInTx posts the principal movement of a
	// money-market deal against the account its settlement bank code resolves to.
	PostMoneyMarketSettlementInTx(ctx context.Context, tx pgx.Tx, deal domain.MoneyMarketDeal) error

	// ReverseDealInTx deletes the ledger entries tied to a deal.
	ReverseDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerPosterSvc
}
