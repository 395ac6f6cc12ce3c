package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/middleware"
	"github.com/treasuryops/tbo_backend/internal/utils/authz"
)

// Fixed accrual posting pairs. These accounts are seeded with the chart of
// accounts and referenced by code.
const (
	accountLendingAccrual   = "1-201-01-01-01" // interest receivable
	accountLendingIncome    = "4-015-01-01-01" // interest income
	accountBorrowingExpense = "6-288-01-01-01" // interest expense
	accountBorrowingPayable = "2-304-01-01-01" // interest payable
	accountGsecAccrued      = "1-212-01-01-01" // accrued coupon receivable
	accountGsecAccrualGain  = "3-004-01-01-01" // accrual reserve
)

// eodService runs the end-of-day accrual batch. A process-local mutex rejects
// overlapping runs immediately; the system-day row lock serializes runs across
// processes.
type eodService struct {
	mu sync.Mutex

	systemDayRepo portsrepo.SystemDayRepositoryWithTx
	mmRepo        portsrepo.MoneyMarketRepositoryFacade
	gsecRepo      portsrepo.GsecRepositoryFacade
	ledgerSvc     portssvc.LedgerPosterSvc
}

// NewEodService creates a new end-of-day service.
func NewEodService(systemDayRepo portsrepo.SystemDayRepositoryWithTx, mmRepo portsrepo.MoneyMarketRepositoryFacade, gsecRepo portsrepo.GsecRepositoryFacade, ledgerSvc portssvc.LedgerPosterSvc) portssvc.EodSvcFacade {
	return &eodService{
		systemDayRepo: systemDayRepo,
		mmRepo:        mmRepo,
		gsecRepo:      gsecRepo,
		ledgerSvc:     ledgerSvc,
	}
}

var _ portssvc.EodSvcFacade = (*eodService)(nil)

// GetSystemDay retrieves the current business date.
func (s *eodService) GetSystemDay(ctx context.Context) (*domain.SystemDay, error) {
	return s.systemDayRepo.GetSystemDay(ctx)
}

// RunEndOfDay posts one day of accrual for every open money-market and GSec
// deal, then advances the system day by one calendar day. One transaction
// holds the system-day row lock for the whole run, serializing runs across
// processes; each deal's accrual commits in its own transaction together with
// its posting marker, so a failure partway leaves already-posted deals
// committed and a rerun skips them instead of double-accruing.
func (s *eodService) RunEndOfDay(ctx context.Context, p domain.Principal) (*domain.EodResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !authz.Can(p, authz.ActionRunEod) {
		return nil, fmt.Errorf("%w: role %s may not run end-of-day", apperrors.ErrForbidden, p.Role)
	}
	if !s.mu.TryLock() {
		return nil, fmt.Errorf("%w: an end-of-day run is already in progress", apperrors.ErrConflict)
	}
	defer s.mu.Unlock()

	dayTx, err := s.systemDayRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.systemDayRepo.Rollback(ctx, dayTx)

	systemDay, err := s.systemDayRepo.GetSystemDayForUpdateInTx(ctx, dayTx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock system day: %w", err)
	}
	systemDate := systemDay.SystemDate

	result := &domain.EodResult{}

	mmDeals, err := s.mmRepo.ListOpenMoneyMarketDeals(ctx, systemDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list open money market deals: %w", err)
	}
	for _, deal := range mmDeals {
		posted, err := s.accrueInOwnTx(ctx, func(tx pgx.Tx) (bool, error) {
			return s.postMoneyMarketAccrual(ctx, tx, deal, systemDate)
		})
		if err != nil {
			return nil, err
		}
		if posted {
			result.PostedMoneyMarket++
		} else {
			result.SkippedDeals++
		}
	}

	gsecDeals, err := s.gsecRepo.ListAccruingGsec(ctx, systemDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list accruing GSec deals: %w", err)
	}
	for _, deal := range gsecDeals {
		posted, err := s.accrueInOwnTx(ctx, func(tx pgx.Tx) (bool, error) {
			return s.postGsecAccrual(ctx, tx, deal, systemDate)
		})
		if err != nil {
			return nil, err
		}
		if posted {
			result.PostedGsec++
		} else {
			result.SkippedDeals++
		}
	}

	next := systemDate.AddDate(0, 0, 1)
	if err := s.systemDayRepo.AdvanceSystemDayInTx(ctx, dayTx, next, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to advance system day: %w", err)
	}
	if err := s.systemDayRepo.Commit(ctx, dayTx); err != nil {
		return nil, fmt.Errorf("failed to commit end-of-day run: %w", err)
	}
	result.NextSystemDay = next

	logger.Info("End-of-day run completed",
		slog.Time("system_date", systemDate),
		slog.Int("posted_money_market", result.PostedMoneyMarket),
		slog.Int("posted_gsec", result.PostedGsec),
		slog.Int("skipped", result.SkippedDeals),
		slog.Time("next_system_day", next))
	return result, nil
}

// accrueInOwnTx runs one deal's accrual in its own transaction, so a failure
// later in the batch does not roll back accruals already posted.
func (s *eodService) accrueInOwnTx(ctx context.Context, post func(pgx.Tx) (bool, error)) (bool, error) {
	tx, err := s.systemDayRepo.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.systemDayRepo.Rollback(ctx, tx)

	posted, err := post(tx)
	if err != nil {
		return false, err
	}
	if err := s.systemDayRepo.Commit(ctx, tx); err != nil {
		return false, fmt.Errorf("failed to commit accrual: %w", err)
	}
	return posted, nil
}

// postMoneyMarketAccrual posts one day of interest for a money-market deal.
// Deals with a non-positive per-day figure or an unrecognized type are skipped
// rather than failing the batch.
func (s *eodService) postMoneyMarketAccrual(ctx context.Context, tx pgx.Tx, deal domain.MoneyMarketDeal, systemDate time.Time) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !deal.PerDayInterest.IsPositive() {
		logger.Warn("Skipping money market deal with non-positive per-day interest", slog.String("deal_number", deal.DealNumber))
		return false, nil
	}

	var debitAccount, creditAccount string
	switch deal.DealType {
	case domain.DealTypeLending:
		debitAccount, creditAccount = accountLendingAccrual, accountLendingIncome
	case domain.DealTypeBorrowing:
		debitAccount, creditAccount = accountBorrowingExpense, accountBorrowingPayable
	default:
		logger.Warn("Skipping money market deal with unknown deal type",
			slog.String("deal_number", deal.DealNumber),
			slog.String("deal_type", string(deal.DealType)))
		return false, nil
	}

	fresh, err := s.systemDayRepo.TryMarkEodPostedInTx(ctx, tx, deal.DealNumber, systemDate)
	if err != nil {
		return false, fmt.Errorf("failed to mark accrual for deal %s: %w", deal.DealNumber, err)
	}
	if !fresh {
		return false, nil
	}

	description := fmt.Sprintf("Daily interest accrual for %s (%s)", deal.DealNumber, deal.DealType)
	entries := accrualPair(deal.DealNumber, debitAccount, creditAccount, deal.PerDayInterest, deal.Currency, systemDate, description)
	if err := s.ledgerSvc.PostEntriesInTx(ctx, tx, entries); err != nil {
		return false, err
	}
	return true, nil
}

// postGsecAccrual posts one day of coupon accrual for a GSec deal.
func (s *eodService) postGsecAccrual(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal, systemDate time.Time) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !deal.PerDayAccrual.IsPositive() {
		logger.Warn("Skipping GSec deal with non-positive per-day accrual", slog.String("deal_number", deal.DealNumber))
		return false, nil
	}

	fresh, err := s.systemDayRepo.TryMarkEodPostedInTx(ctx, tx, deal.DealNumber, systemDate)
	if err != nil {
		return false, fmt.Errorf("failed to mark accrual for deal %s: %w", deal.DealNumber, err)
	}
	if !fresh {
		return false, nil
	}

	description := fmt.Sprintf("Daily coupon accrual for %s (%s)", deal.DealNumber, deal.ISIN)
	entries := accrualPair(deal.DealNumber, accountGsecAccrued, accountGsecAccrualGain, deal.PerDayAccrual, deal.Currency, systemDate, description)
	if err := s.ledgerSvc.PostEntriesInTx(ctx, tx, entries); err != nil {
		return false, err
	}
	return true, nil
}

func accrualPair(dealNumber, debitAccount, creditAccount string, amount decimal.Decimal, currency string, entryDate time.Time, description string) []domain.LedgerEntry {
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
