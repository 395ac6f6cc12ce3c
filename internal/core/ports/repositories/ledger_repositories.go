package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// LedgerReader defines read operations over the general ledger.
type LedgerReader interface {
	// GeneralLedger retrieves ledger entries matching the filters.
	GeneralLedger(ctx context.Context, filters domain.LedgerFilters) ([]domain.LedgerEntry, error)

	// FindEntriesByDealNumber retrieves all ledger entries tied to one deal.
	FindEntriesByDealNumber(ctx context.Context, dealNumber string) ([]domain.LedgerEntry, error)

	// CategoryBalances aggregates per-account net balances for a category.
	// Revenue, liability and equity accounts net credits minus debits; asset
	// and expense accounts net debits minus credits. Nil bounds are open.
	CategoryBalances(ctx context.Context, category domain.AccountCategory, from, to *time.Time) ([]domain.AccountBalanceLine, error)

	// RetainedEarnings computes cumulative revenue minus expenses up to a date.
	RetainedEarnings(ctx context.Context, asOf time.Time) (decimal.Decimal, error)
}

// LedgerWriter defines write operations for ledger entries. Entries are
// append-only; corrections happen by reversal, never by update.
type LedgerWriter interface {
	// InsertEntriesInTx persists a batch of ledger entries.
	InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error

	// DeleteEntriesForDealInTx removes all entries tied to a deal number.
	DeleteEntriesForDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error
}

// PostingResolver resolves posting destinations from explicit configuration
// instead of account-code prefix conventions.
type PostingResolver interface {
	// ResolvePostingAccount returns the active account code configured for the
	// given category and product type.
	ResolvePostingAccount(ctx context.Context, category domain.AccountCategory, product domain.ProductType) (string, error)

	// ResolveSettlementAccount maps a settlement bank code to its
	// chart-of-accounts code.
	ResolveSettlementAccount(ctx context.Context, bankCode string) (string, error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
	PostingResolver
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction
// capabilities.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
