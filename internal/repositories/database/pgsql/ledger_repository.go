package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
)

const ledgerColumns = `entry_id, deal_number, account_code, entry_date, debit_amount, credit_amount, currency, description, created_at`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.EntryID, &e.DealNumber, &e.AccountCode, &e.EntryDate,
		&e.DebitAmount, &e.CreditAmount, &e.Currency, &e.Description, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	entries := []domain.LedgerEntry{}
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return entries, nil
}

// GeneralLedger retrieves ledger entries matching the filters.
func (r *PgxLedgerRepository) GeneralLedger(ctx context.Context, filters domain.LedgerFilters) ([]domain.LedgerEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE 1=1`)

	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filters.StartDate != nil {
		sb.WriteString(` AND entry_date >= ` + arg(*filters.StartDate))
	}
	if filters.EndDate != nil {
		sb.WriteString(` AND entry_date <= ` + arg(*filters.EndDate))
	}
	if filters.AccountCode != "" {
		sb.WriteString(` AND account_code = ` + arg(filters.AccountCode))
	}
	if filters.DealNumber != "" {
		sb.WriteString(` AND deal_number = ` + arg(filters.DealNumber))
	}
	sb.WriteString(` ORDER BY entry_date DESC, created_at DESC`)
	sb.WriteString(` LIMIT ` + arg(filters.Limit))
	sb.WriteString(` OFFSET ` + arg(filters.Offset))
	sb.WriteString(`;`)

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query general ledger: %w", err)
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

// FindEntriesByDealNumber retrieves all ledger entries tied to one deal.
func (r *PgxLedgerRepository) FindEntriesByDealNumber(ctx context.Context, dealNumber string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE deal_number = $1 ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, dealNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries for deal %s: %w", dealNumber, err)
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

// CategoryBalances aggregates per-account net balances for a category. Asset
// and expense accounts net debits minus credits; the rest net credits minus
// debits.
func (r *PgxLedgerRepository) CategoryBalances(ctx context.Context, category domain.AccountCategory, from, to *time.Time) ([]domain.AccountBalanceLine, error) {
	net := `SUM(e.credit_amount - e.debit_amount)`
	if category == domain.CategoryAsset || category == domain.CategoryExpense {
		net = `SUM(e.debit_amount - e.credit_amount)`
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT a.account_code, a.name, COALESCE(` + net + `, 0)
		FROM chart_of_accounts a
		JOIN ledger_entries e ON e.account_code = a.account_code
		WHERE a.category = $1`)

	args := []interface{}{category}
	if from != nil {
		args = append(args, *from)
		sb.WriteString(` AND e.entry_date >= $` + strconv.Itoa(len(args)))
	}
	if to != nil {
		args = append(args, *to)
		sb.WriteString(` AND e.entry_date <= $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(`
		GROUP BY a.account_code, a.name
		HAVING COALESCE(` + net + `, 0) <> 0
		ORDER BY a.account_code;`)

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s balances: %w", category, err)
	}
	defer rows.Close()

	lines := []domain.AccountBalanceLine{}
	for rows.Next() {
		var line domain.AccountBalanceLine
		if err := rows.Scan(&line.AccountCode, &line.Name, &line.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance lines: %w", err)
	}
	return lines, nil
}

// RetainedEarnings computes cumulative revenue minus expenses up to a date.
func (r *PgxLedgerRepository) RetainedEarnings(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	// Net credits of revenue and net credits of expense accounts both carry
	// the credit-minus-debit sign, so one sum covers revenue minus expenses.
	query := `
		SELECT COALESCE(SUM(e.credit_amount - e.debit_amount), 0)
		FROM ledger_entries e
		JOIN chart_of_accounts a ON a.account_code = e.account_code
		WHERE a.category IN ('revenue', 'expense') AND e.entry_date <= $1;
	`
	var retained decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, asOf).Scan(&retained); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute retained earnings: %w", err)
	}
	return retained, nil
}

// InsertEntriesInTx persists a batch of ledger entries.
func (r *PgxLedgerRepository) InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, e.EntryID, e.DealNumber, e.AccountCode, e.EntryDate,
			e.DebitAmount, e.CreditAmount, e.Currency, e.Description, e.CreatedAt)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to insert ledger entry %s: %w", entries[i].EntryID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close ledger insert batch: %w", err)
	}
	return batchErr
}

// DeleteEntriesForDealInTx removes all entries tied to a deal number.
func (r *PgxLedgerRepository) DeleteEntriesForDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM ledger_entries WHERE deal_number = $1;`, dealNumber); err != nil {
		return fmt.Errorf("failed to delete ledger entries for deal %s: %w", dealNumber, err)
	}
	return nil
}

// ResolvePostingAccount returns the active account code configured for the
// given category and product type.
func (r *PgxLedgerRepository) ResolvePostingAccount(ctx context.Context, category domain.AccountCategory, product domain.ProductType) (string, error) {
	query := `
		SELECT p.account_code
		FROM posting_rules p
		JOIN chart_of_accounts a ON a.account_code = p.account_code
		WHERE p.category = $1 AND p.product_type = $2 AND a.is_active;
	`
	var accountCode string
	err := r.Pool.QueryRow(ctx, query, category, product).Scan(&accountCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError(fmt.Sprintf("no posting rule for %s/%s", category, product))
		}
		return "", fmt.Errorf("failed to resolve posting account for %s/%s: %w", category, product, err)
	}
	return accountCode, nil
}

// ResolveSettlementAccount maps a settlement bank code to its
// chart-of-accounts code.
func (r *PgxLedgerRepository) ResolveSettlementAccount(ctx context.Context, bankCode string) (string, error) {
	var accountCode string
	err := r.Pool.QueryRow(ctx,
		`SELECT account_code FROM settlement_accounts WHERE bank_code = $1;`, bankCode).Scan(&accountCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError(fmt.Sprintf("no settlement account for bank %s", bankCode))
		}
		return "", fmt.Errorf("failed to resolve settlement account for bank %s: %w", bankCode, err)
	}
	return accountCode, nil
}
