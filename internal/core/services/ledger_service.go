package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/middleware"
)

const defaultLedgerPageSize = 100
const maxLedgerPageSize = 500

// ledgerService enforces double-entry consistency and serves financial
// statements. Entries are append-only; a wrong posting is corrected by
// deleting the deal's entries and posting afresh, never by update.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// PostEntriesInTx validates that every deal's debits equal its credits, then
// persists the entries and adjusts the affected account balances under row
// locks. Any imbalance returns an error wrapping ErrLedgerImbalance; the
// caller must roll the transaction back.
func (s *ledgerService) PostEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no ledger entries to post", apperrors.ErrValidation)
	}

	debits := make(map[string]decimal.Decimal)
	credits := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
			return fmt.Errorf("%w: ledger amounts must not be negative (entry %s)", apperrors.ErrValidation, e.EntryID)
		}
		if e.DebitAmount.IsPositive() == e.CreditAmount.IsPositive() {
			return fmt.Errorf("%w: exactly one of debit and credit must be set (entry %s)", apperrors.ErrValidation, e.EntryID)
		}
		debits[e.DealNumber] = debits[e.DealNumber].Add(e.DebitAmount)
		credits[e.DealNumber] = credits[e.DealNumber].Add(e.CreditAmount)
	}
	for dealNumber, debitSum := range debits {
		if !debitSum.Equal(credits[dealNumber]) {
			return fmt.Errorf("%w: deal %s has debits %s and credits %s",
				apperrors.ErrLedgerImbalance, dealNumber, debitSum, credits[dealNumber])
		}
	}

	if err := s.ledgerRepo.InsertEntriesInTx(ctx, tx, entries); err != nil {
		return fmt.Errorf("failed to insert ledger entries: %w", err)
	}
	if err := s.applyBalanceDeltas(ctx, tx, entries, 1); err != nil {
		return err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Posted ledger entries", slog.Int("count", len(entries)))
	return nil
}

// PostDealInTx builds the debit/credit pair for a deal, classified by the
// sign of its amount. A positive amount recognizes revenue: debit the deal's
// source account, credit the account the posting rules resolve for the revenue
// category. A negative amount is an expense: debit the resolved expense
// account, credit the source account with the magnitude.
func (s *ledgerService) PostDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal, entryDate time.Time) error {
	if deal.Amount.IsZero() {
		return fmt.Errorf("%w: deal amount must not be zero to post", apperrors.ErrValidation)
	}

	category := domain.CategoryRevenue
	if deal.Amount.IsNegative() {
		category = domain.CategoryExpense
	}
	counterAccount, err := s.ledgerRepo.ResolvePostingAccount(ctx, category, deal.ProductType)
	if err != nil {
		return fmt.Errorf("failed to resolve %s posting account for product %s: %w", category, deal.ProductType, err)
	}

	description := deal.Description
	if description == "" {
		description = fmt.Sprintf("Deal %s", deal.DealNumber)
	}

	debitAccount, creditAccount := deal.SourceAccountID, counterAccount
	amount := deal.Amount
	if deal.Amount.IsNegative() {
		debitAccount, creditAccount = counterAccount, deal.SourceAccountID
		amount = amount.Neg()
	}
	return s.PostEntriesInTx(ctx, tx, entryPair(deal.DealNumber, debitAccount, creditAccount, amount, entryDate, deal.Currency, description))
}

// PostGsecSettlementInTx posts the settlement leg of a GSec deal. The bank
// code on the deal resolves to a chart-of-accounts settlement account, paired
// with the investment control account: a buy moves cash out of the settlement
// account into the investment, a sell moves it back.
func (s *ledgerService) PostGsecSettlementInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error {
	if !deal.SettlementAmount.IsPositive() {
		return fmt.Errorf("%w: settlement amount must be positive to post", apperrors.ErrValidation)
	}
	settlementAccount, err := s.ledgerRepo.ResolveSettlementAccount(ctx, deal.SettlementBank)
	if err != nil {
		return fmt.Errorf("failed to resolve settlement account for bank %s: %w", deal.SettlementBank, err)
	}
	controlAccount, err := s.ledgerRepo.ResolvePostingAccount(ctx, domain.CategoryAsset, domain.ProductGsec)
	if err != nil {
		return fmt.Errorf("failed to resolve investment control account: %w", err)
	}

	debitAccount, creditAccount := controlAccount, settlementAccount
	if deal.TradeType == domain.TradeTypeSell {
		debitAccount, creditAccount = settlementAccount, controlAccount
	}
	description := fmt.Sprintf("Settlement of GSec deal %s (%s)", deal.DealNumber, deal.ISIN)
	return s.PostEntriesInTx(ctx, tx, entryPair(deal.DealNumber, debitAccount, creditAccount, deal.SettlementAmount, deal.ValueDate, deal.Currency, description))
}

// PostMoneyMarketSettlementInTx posts the principal movement of a money-market
// deal. Lending pays cash out of the settlement account into the placement
// asset; borrowing draws cash in against the borrowings liability.
func (s *ledgerService) PostMoneyMarketSettlementInTx(ctx context.Context, tx pgx.Tx, deal domain.MoneyMarketDeal) error {
	if !deal.PrincipalAmount.IsPositive() {
		return fmt.Errorf("%w: principal amount must be positive to post", apperrors.ErrValidation)
	}
	settlementAccount, err := s.ledgerRepo.ResolveSettlementAccount(ctx, deal.SettlementBank)
	if err != nil {
		return fmt.Errorf("failed to resolve settlement account for bank %s: %w", deal.SettlementBank, err)
	}

	var debitAccount, creditAccount string
	if deal.DealType == domain.DealTypeBorrowing {
		liabilityAccount, err := s.ledgerRepo.ResolvePostingAccount(ctx, domain.CategoryLiability, domain.ProductMoneyMarket)
		if err != nil {
			return fmt.Errorf("failed to resolve borrowing control account: %w", err)
		}
		debitAccount, creditAccount = settlementAccount, liabilityAccount
	} else {
		assetAccount, err := s.ledgerRepo.ResolvePostingAccount(ctx, domain.CategoryAsset, domain.ProductMoneyMarket)
		if err != nil {
			return fmt.Errorf("failed to resolve placement control account: %w", err)
		}
		debitAccount, creditAccount = assetAccount, settlementAccount
	}
	description := fmt.Sprintf("Settlement of money market deal %s", deal.DealNumber)
	return s.PostEntriesInTx(ctx, tx, entryPair(deal.DealNumber, debitAccount, creditAccount, deal.PrincipalAmount, deal.ValueDate, deal.Currency, description))
}

func entryPair(dealNumber, debitAccount, creditAccount string, amount decimal.Decimal, entryDate time.Time, currency, description string) []domain.LedgerEntry {
	now := time.Now().UTC()
	return []domain.LedgerEntry{
		{
			EntryID:      uuid.NewString(),
			DealNumber:   dealNumber,
			AccountCode:  debitAccount,
			EntryDate:    entryDate,
			DebitAmount:  amount,
			CreditAmount: decimal.Zero,
			Currency:     currency,
			Description:  description,
			CreatedAt:    now,
		},
		{
			EntryID:      uuid.NewString(),
			DealNumber:   dealNumber,
			AccountCode:  creditAccount,
			EntryDate:    entryDate,
			DebitAmount:  decimal.Zero,
			CreditAmount: amount,
			Currency:     currency,
			Description:  description,
			CreatedAt:    now,
		},
	}
}

// ReverseDealInTx backs out every balance effect of a deal and deletes its
// ledger entries.
func (s *ledgerService) ReverseDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error {
	entries, err := s.ledgerRepo.FindEntriesByDealNumber(ctx, dealNumber)
	if err != nil {
		return fmt.Errorf("failed to load ledger entries for deal %s: %w", dealNumber, err)
	}
	if len(entries) == 0 {
		return nil
	}

	if err := s.applyBalanceDeltas(ctx, tx, entries, -1); err != nil {
		return err
	}
	if err := s.ledgerRepo.DeleteEntriesForDealInTx(ctx, tx, dealNumber); err != nil {
		return fmt.Errorf("failed to delete ledger entries for deal %s: %w", dealNumber, err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Reversed ledger entries", slog.String("deal_number", dealNumber), slog.Int("count", len(entries)))
	return nil
}

// applyBalanceDeltas aggregates the signed balance effect per account and
// applies it under row locks. Accounts are locked in code order so concurrent
// postings touching the same accounts cannot deadlock.
func (s *ledgerService) applyBalanceDeltas(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry, sign int64) error {
	deltas := make(map[string]decimal.Decimal)
	for _, e := range entries {
		deltas[e.AccountCode] = deltas[e.AccountCode].Add(e.DebitAmount).Sub(e.CreditAmount)
	}

	codes := make([]string, 0, len(deltas))
	for code := range deltas {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	userID := "system"
	if p, ok := middleware.GetPrincipalFromCtx(ctx); ok {
		userID = p.UserID
	}
	now := time.Now().UTC()

	for _, code := range codes {
		account, err := s.accountRepo.FindAccountForUpdateInTx(ctx, tx, code)
		if err != nil {
			return fmt.Errorf("failed to lock account %s: %w", code, err)
		}
		if !account.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, code)
		}

		delta := signedBalanceDelta(account.Category, deltas[code]).Mul(decimal.NewFromInt(sign))
		if delta.IsZero() {
			continue
		}
		if err := s.accountRepo.AdjustBalanceInTx(ctx, tx, code, delta, userID, now); err != nil {
			return fmt.Errorf("failed to adjust balance of account %s: %w", code, err)
		}
	}
	return nil
}

// signedBalanceDelta converts a net debit figure into a balance movement:
// debits grow asset and expense balances, credits grow everything else.
func signedBalanceDelta(category domain.AccountCategory, netDebit decimal.Decimal) decimal.Decimal {
	switch category {
	case domain.CategoryAsset, domain.CategoryExpense:
		return netDebit
	default:
		return netDebit.Neg()
	}
}

// GetGeneralLedger retrieves ledger entries matching the filters.
func (s *ledgerService) GetGeneralLedger(ctx context.Context, filters domain.LedgerFilters) ([]domain.LedgerEntry, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultLedgerPageSize
	}
	if filters.Limit > maxLedgerPageSize {
		filters.Limit = maxLedgerPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return s.ledgerRepo.GeneralLedger(ctx, filters)
}

// GetEntriesByDealNumber retrieves all ledger entries tied to one deal.
func (s *ledgerService) GetEntriesByDealNumber(ctx context.Context, dealNumber string) ([]domain.LedgerEntry, error) {
	return s.ledgerRepo.FindEntriesByDealNumber(ctx, dealNumber)
}

// GetProfitAndLoss aggregates revenue and expense balances over a period.
func (s *ledgerService) GetProfitAndLoss(ctx context.Context, startDate, endDate time.Time) (*domain.ProfitAndLoss, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}

	revenue, err := s.ledgerRepo.CategoryBalances(ctx, domain.CategoryRevenue, &startDate, &endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	expenses, err := s.ledgerRepo.CategoryBalances(ctx, domain.CategoryExpense, &startDate, &endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	pnl := &domain.ProfitAndLoss{
		StartDate: startDate,
		EndDate:   endDate,
		Revenue:   revenue,
		Expenses:  expenses,
	}
	for _, line := range revenue {
		pnl.TotalRevenue = pnl.TotalRevenue.Add(line.Balance)
	}
	for _, line := range expenses {
		pnl.TotalExpenses = pnl.TotalExpenses.Add(line.Balance)
	}
	pnl.NetProfit = pnl.TotalRevenue.Sub(pnl.TotalExpenses)
	return pnl, nil
}

// GetBalanceSheet aggregates asset, liability and equity balances as of a
// date. Retained earnings (cumulative net profit) are folded into equity so
// the statement balances.
func (s *ledgerService) GetBalanceSheet(ctx context.Context, asOfDate time.Time) (*domain.BalanceSheet, error) {
	assets, err := s.ledgerRepo.CategoryBalances(ctx, domain.CategoryAsset, nil, &asOfDate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate assets: %w", err)
	}
	liabilities, err := s.ledgerRepo.CategoryBalances(ctx, domain.CategoryLiability, nil, &asOfDate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate liabilities: %w", err)
	}
	equity, err := s.ledgerRepo.CategoryBalances(ctx, domain.CategoryEquity, nil, &asOfDate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate equity: %w", err)
	}
	retained, err := s.ledgerRepo.RetainedEarnings(ctx, asOfDate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute retained earnings: %w", err)
	}

	bs := &domain.BalanceSheet{
		AsOfDate:         asOfDate,
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		RetainedEarnings: retained,
	}
	for _, line := range assets {
		bs.TotalAssets = bs.TotalAssets.Add(line.Balance)
	}
	for _, line := range liabilities {
		bs.TotalLiabilities = bs.TotalLiabilities.Add(line.Balance)
	}
	for _, line := range equity {
		bs.TotalEquity = bs.TotalEquity.Add(line.Balance)
	}
	bs.TotalEquity = bs.TotalEquity.Add(retained)
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	return bs, nil
}
