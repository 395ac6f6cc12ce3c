package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/dto"
)

// --- Mock DealRepository ---

type MockDealRepository struct {
	mock.Mock
}

var _ portsrepo.DealRepositoryWithTx = (*MockDealRepository)(nil)

func (m *MockDealRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockDealRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockDealRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockDealRepository) FindDealByNumber(ctx context.Context, dealNumber string) (*domain.Deal, error) {
	args := m.Called(ctx, dealNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

func (m *MockDealRepository) ListRecentDeals(ctx context.Context, limit int) ([]domain.Deal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deal), args.Error(1)
}

func (m *MockDealRepository) InsertDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal) error {
	return m.Called(ctx, tx, deal).Error(0)
}

func (m *MockDealRepository) UpdateDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal) error {
	return m.Called(ctx, tx, deal).Error(0)
}

func (m *MockDealRepository) UpdateDealWorkflow(ctx context.Context, deal domain.Deal) error {
	return m.Called(ctx, deal).Error(0)
}

func (m *MockDealRepository) DeleteDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error {
	return m.Called(ctx, tx, dealNumber).Error(0)
}

func (m *MockDealRepository) DealNumberExistsInTx(ctx context.Context, tx pgx.Tx, dealNumber string) (bool, error) {
	args := m.Called(ctx, tx, dealNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockDealRepository) MaxMoneyMarketSequenceInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time, productCode string) (int, error) {
	args := m.Called(ctx, tx, tradeDate, productCode)
	return args.Int(0), args.Error(1)
}

// --- Mock LimitRepository ---

type MockLimitRepository struct {
	mock.Mock
}

var _ portsrepo.LimitRepositoryWithTx = (*MockLimitRepository)(nil)

func (m *MockLimitRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockLimitRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLimitRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLimitRepository) FindLimitForUpdateInTx(ctx context.Context, tx pgx.Tx, counterpartyID, counterpartyType, currency string) (*domain.CounterpartyLimit, error) {
	args := m.Called(ctx, tx, counterpartyID, counterpartyType, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CounterpartyLimit), args.Error(1)
}

func (m *MockLimitRepository) SumGsecExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID, currency string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, counterpartyID, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLimitRepository) SumProductExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID string, product domain.ProductType, currency string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, counterpartyID, product, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLimitRepository) SumOverallExposureInTx(ctx context.Context, tx pgx.Tx, counterpartyID, currency string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, counterpartyID, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryWithTx = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockLedgerRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLedgerRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLedgerRepository) GeneralLedger(ctx context.Context, filters domain.LedgerFilters) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesByDealNumber(ctx context.Context, dealNumber string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, dealNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) CategoryBalances(ctx context.Context, category domain.AccountCategory, from, to *time.Time) ([]domain.AccountBalanceLine, error) {
	args := m.Called(ctx, category, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalanceLine), args.Error(1)
}

func (m *MockLedgerRepository) RetainedEarnings(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	return m.Called(ctx, tx, entries).Error(0)
}

func (m *MockLedgerRepository) DeleteEntriesForDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error {
	return m.Called(ctx, tx, dealNumber).Error(0)
}

func (m *MockLedgerRepository) ResolvePostingAccount(ctx context.Context, category domain.AccountCategory, product domain.ProductType) (string, error) {
	args := m.Called(ctx, category, product)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerRepository) ResolveSettlementAccount(ctx context.Context, bankCode string) (string, error) {
	args := m.Called(ctx, bankCode)
	return args.String(0), args.Error(1)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountForUpdateInTx(ctx context.Context, tx pgx.Tx, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountCode string, delta decimal.Decimal, userID string, now time.Time) error {
	return m.Called(ctx, tx, accountCode, delta, userID, now).Error(0)
}

// --- Mock GsecRepository ---

type MockGsecRepository struct {
	mock.Mock
}

var _ portsrepo.GsecRepositoryWithTx = (*MockGsecRepository)(nil)

func (m *MockGsecRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockGsecRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockGsecRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockGsecRepository) FindGsecByNumber(ctx context.Context, dealNumber string) (*domain.GsecDeal, error) {
	args := m.Called(ctx, dealNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GsecDeal), args.Error(1)
}

func (m *MockGsecRepository) ListRecentGsec(ctx context.Context, limit int) ([]domain.GsecDeal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GsecDeal), args.Error(1)
}

func (m *MockGsecRepository) ListAccruingGsec(ctx context.Context, systemDay time.Time) ([]domain.GsecDeal, error) {
	args := m.Called(ctx, systemDay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GsecDeal), args.Error(1)
}

func (m *MockGsecRepository) InsertGsecInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error {
	return m.Called(ctx, tx, deal).Error(0)
}

func (m *MockGsecRepository) UpdateGsecInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error {
	return m.Called(ctx, tx, deal).Error(0)
}

func (m *MockGsecRepository) UpdateGsecWorkflow(ctx context.Context, deal domain.GsecDeal) error {
	return m.Called(ctx, deal).Error(0)
}

// --- Mock MoneyMarketRepository ---

type MockMoneyMarketRepository struct {
	mock.Mock
}

var _ portsrepo.MoneyMarketRepositoryWithTx = (*MockMoneyMarketRepository)(nil)

func (m *MockMoneyMarketRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockMoneyMarketRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockMoneyMarketRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockMoneyMarketRepository) FindMoneyMarketByNumber(ctx context.Context, dealNumber string) (*domain.MoneyMarketDeal, error) {
	args := m.Called(ctx, dealNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MoneyMarketDeal), args.Error(1)
}

func (m *MockMoneyMarketRepository) ListOpenMoneyMarketDeals(ctx context.Context, systemDay time.Time) ([]domain.MoneyMarketDeal, error) {
	args := m.Called(ctx, systemDay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MoneyMarketDeal), args.Error(1)
}

func (m *MockMoneyMarketRepository) InsertMoneyMarketInTx(ctx context.Context, tx pgx.Tx, deal domain.MoneyMarketDeal) error {
	return m.Called(ctx, tx, deal).Error(0)
}

// --- Mock SystemDayRepository ---

type MockSystemDayRepository struct {
	mock.Mock
}

var _ portsrepo.SystemDayRepositoryWithTx = (*MockSystemDayRepository)(nil)

func (m *MockSystemDayRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockSystemDayRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockSystemDayRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockSystemDayRepository) GetSystemDay(ctx context.Context) (*domain.SystemDay, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemDay), args.Error(1)
}

func (m *MockSystemDayRepository) GetSystemDayForUpdateInTx(ctx context.Context, tx pgx.Tx) (*domain.SystemDay, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemDay), args.Error(1)
}

func (m *MockSystemDayRepository) AdvanceSystemDayInTx(ctx context.Context, tx pgx.Tx, next time.Time, now time.Time) error {
	return m.Called(ctx, tx, next, now).Error(0)
}

func (m *MockSystemDayRepository) TryMarkEodPostedInTx(ctx context.Context, tx pgx.Tx, dealNumber string, systemDate time.Time) (bool, error) {
	args := m.Called(ctx, tx, dealNumber, systemDate)
	return args.Bool(0), args.Error(1)
}

// --- Mock CouponRepository ---

type MockCouponRepository struct {
	mock.Mock
}

var _ portsrepo.CouponRepositoryFacade = (*MockCouponRepository)(nil)

func (m *MockCouponRepository) SaveIsinWithSchedule(ctx context.Context, master domain.IsinMaster, schedule []domain.CouponEntry) error {
	return m.Called(ctx, master, schedule).Error(0)
}

func (m *MockCouponRepository) FindIsin(ctx context.Context, isin string) (*domain.IsinMaster, error) {
	args := m.Called(ctx, isin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IsinMaster), args.Error(1)
}

func (m *MockCouponRepository) FindScheduleByISIN(ctx context.Context, isin string) ([]domain.CouponEntry, error) {
	args := m.Called(ctx, isin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CouponEntry), args.Error(1)
}

// --- Mock NumberingSvc ---

type MockNumberingSvc struct {
	mock.Mock
}

var _ portssvc.NumberingSvcFacade = (*MockNumberingSvc)(nil)

func (m *MockNumberingSvc) NextDealNumberInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time) (string, error) {
	args := m.Called(ctx, tx, tradeDate)
	return args.String(0), args.Error(1)
}

func (m *MockNumberingSvc) NextMoneyMarketNumberInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time, productCode string) (string, error) {
	args := m.Called(ctx, tx, tradeDate, productCode)
	return args.String(0), args.Error(1)
}

// --- Mock LimitSvc ---

type MockLimitSvc struct {
	mock.Mock
}

var _ portssvc.LimitSvcFacade = (*MockLimitSvc)(nil)

func (m *MockLimitSvc) CheckLimitInTx(ctx context.Context, tx pgx.Tx, counterpartyID, counterpartyType string, product domain.ProductType, currency string, amount decimal.Decimal) (*domain.LimitDecision, error) {
	args := m.Called(ctx, tx, counterpartyID, counterpartyType, product, currency, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LimitDecision), args.Error(1)
}

func (m *MockLimitSvc) GetLimitStatus(ctx context.Context, counterpartyID, counterpartyType string, product domain.ProductType, currency string) (*domain.LimitDecision, error) {
	args := m.Called(ctx, counterpartyID, counterpartyType, product, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LimitDecision), args.Error(1)
}

// --- Mock LedgerSvc ---

type MockLedgerSvc struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerSvc)(nil)

func (m *MockLedgerSvc) GetGeneralLedger(ctx context.Context, filters domain.LedgerFilters) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerSvc) GetEntriesByDealNumber(ctx context.Context, dealNumber string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, dealNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerSvc) GetProfitAndLoss(ctx context.Context, startDate, endDate time.Time) (*domain.ProfitAndLoss, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitAndLoss), args.Error(1)
}

func (m *MockLedgerSvc) GetBalanceSheet(ctx context.Context, asOfDate time.Time) (*domain.BalanceSheet, error) {
	args := m.Called(ctx, asOfDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheet), args.Error(1)
}

func (m *MockLedgerSvc) PostEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	return m.Called(ctx, tx, entries).Error(0)
}

func (m *MockLedgerSvc) PostDealInTx(ctx context.Context, tx pgx.Tx, deal domain.Deal, entryDate time.Time) error {
	return m.Called(ctx, tx, deal, entryDate).Error(0)
}

func (m *MockLedgerSvc) PostGsecSettlementInTx(ctx context.Context, tx pgx.Tx, deal domain.GsecDeal) error {
	return m.Called(ctx, tx, deal).Error(0)
}

func (m *MockLedgerSvc) PostMoneyMarketSettlementInTx(ctx context.Context, tx pgx.Tx, deal domain.MoneyMarketDeal) error {
	return m.Called(ctx, tx, deal).Error(0)
}

func (m *MockLedgerSvc) ReverseDealInTx(ctx context.Context, tx pgx.Tx, dealNumber string) error {
	return m.Called(ctx, tx, dealNumber).Error(0)
}

// --- Mock CouponSvc ---

type MockCouponSvc struct {
	mock.Mock
}

var _ portssvc.CouponSvcFacade = (*MockCouponSvc)(nil)

func (m *MockCouponSvc) CreateIsin(ctx context.Context, p domain.Principal, req dto.CreateIsinRequest) (*domain.IsinMaster, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IsinMaster), args.Error(1)
}

func (m *MockCouponSvc) GetIsin(ctx context.Context, isin string) (*domain.IsinMaster, error) {
	args := m.Called(ctx, isin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IsinMaster), args.Error(1)
}

func (m *MockCouponSvc) GetCouponDates(ctx context.Context, isin string, valueDate time.Time) (*domain.CouponDates, error) {
	args := m.Called(ctx, isin, valueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CouponDates), args.Error(1)
}

func (m *MockCouponSvc) GetSchedule(ctx context.Context, isin string) ([]domain.CouponEntry, error) {
	args := m.Called(ctx, isin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CouponEntry), args.Error(1)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
