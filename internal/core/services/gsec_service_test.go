package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/core/services"
	"github.com/treasuryops/tbo_backend/internal/dto"
)

type gsecFixture struct {
	repo         *MockGsecRepository
	numberingSvc *MockNumberingSvc
	limitSvc     *MockLimitSvc
	ledgerSvc    *MockLedgerSvc
	couponSvc    *MockCouponSvc
	svc          portssvc.GsecSvc
	maker        domain.Principal
}

func newGsecFixture() *gsecFixture {
	f := &gsecFixture{
		repo:         new(MockGsecRepository),
		numberingSvc: new(MockNumberingSvc),
		limitSvc:     new(MockLimitSvc),
		ledgerSvc:    new(MockLedgerSvc),
		couponSvc:    new(MockCouponSvc),
		maker:        domain.Principal{UserID: "u-maker", Role: domain.RoleFrontOffice},
	}
	f.svc = services.NewGsecService(f.repo, f.numberingSvc, f.limitSvc, f.ledgerSvc, f.couponSvc)
	return f
}

func (f *gsecFixture) allowTx() {
	f.repo.On("Begin", mock.Anything).Return(nil, nil).Once()
	f.repo.On("Rollback", mock.Anything, nil).Return(nil).Maybe()
}

func gsecRequest() dto.CreateGsecRequest {
	return dto.CreateGsecRequest{
		TradeType:        "buy",
		ISIN:             "IN0020250011",
		FaceValue:        decimal.NewFromInt(5_000_000),
		CleanPrice:       decimal.RequireFromString("98.123456"),
		AccruedInterest:  decimal.RequireFromString("1.987654"),
		Currency:         "INR",
		CounterpartyID:   "CP-1",
		CounterpartyType: "pd",
		ValueDate:        time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateGsecDeal_TruncatesAndDerivesPrices(t *testing.T) {
	f := newGsecFixture()
	f.allowTx()

	f.couponSvc.On("GetCouponDates", mock.Anything, "IN0020250011", mock.Anything).
		Return(nil, apperrors.NewNotFoundError("no coupon schedule")).Once()
	f.numberingSvc.On("NextDealNumberInTx", mock.Anything, nil, mock.Anything).Return("202501030042", nil).Once()
	f.limitSvc.On("CheckLimitInTx", mock.Anything, nil, "CP-1", "pd", domain.ProductGsec, "INR", mock.MatchedBy(func(a decimal.Decimal) bool {
		return a.Equal(decimal.NewFromInt(5_000_000))
	})).Return(&domain.LimitDecision{Allowed: true}, nil).Once()
	f.repo.On("InsertGsecInTx", mock.Anything, nil, mock.MatchedBy(func(g domain.GsecDeal) bool {
		// 98.1234 + 1.9876, each side truncated before the add.
		if !g.CleanPrice.Equal(decimal.RequireFromString("98.1234")) {
			return false
		}
		if !g.DirtyPrice.Equal(decimal.RequireFromString("100.1110")) {
			return false
		}
		// face * dirty / 100, truncated.
		return g.SettlementAmount.Equal(decimal.RequireFromString("5005550"))
	})).Return(nil).Once()
	f.repo.On("Commit", mock.Anything, nil).Return(nil).Once()

	deal, err := f.svc.CreateGsecDeal(context.Background(), f.maker, gsecRequest())
	require.NoError(t, err)
	assert.Equal(t, "202501030042", deal.DealNumber)
	assert.Equal(t, domain.StatusPending, deal.Status)
	f.repo.AssertExpectations(t)
}

func TestCreateGsecDeal_StampsCouponDates(t *testing.T) {
	f := newGsecFixture()
	f.allowTx()

	prev := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	next := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	f.couponSvc.On("GetCouponDates", mock.Anything, "IN0020250011", mock.Anything).
		Return(&domain.CouponDates{Previous: prev, Next: next}, nil).Once()
	f.numberingSvc.On("NextDealNumberInTx", mock.Anything, nil, mock.Anything).Return("202501030042", nil).Once()
	f.limitSvc.On("CheckLimitInTx", mock.Anything, nil, "CP-1", "pd", domain.ProductGsec, "INR", mock.Anything).
		Return(&domain.LimitDecision{Allowed: true}, nil).Once()
	f.repo.On("InsertGsecInTx", mock.Anything, nil, mock.MatchedBy(func(g domain.GsecDeal) bool {
		return g.LastCouponDate.Equal(prev) && g.NextCouponDate.Equal(next)
	})).Return(nil).Once()
	f.repo.On("Commit", mock.Anything, nil).Return(nil).Once()

	_, err := f.svc.CreateGsecDeal(context.Background(), f.maker, gsecRequest())
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestCreateGsecDeal_DerivesAccruedInterest(t *testing.T) {
	f := newGsecFixture()
	f.allowTx()

	prev := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	next := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	f.couponSvc.On("GetCouponDates", mock.Anything, "IN0020250011", mock.Anything).
		Return(&domain.CouponDates{Previous: prev, Next: next}, nil).Once()
	f.couponSvc.On("GetIsin", mock.Anything, "IN0020250011").
		Return(&domain.IsinMaster{ISIN: "IN0020250011", CouponRate: decimal.RequireFromString("7.26")}, nil).Once()
	f.numberingSvc.On("NextDealNumberInTx", mock.Anything, nil, mock.Anything).Return("202501030042", nil).Once()
	f.limitSvc.On("CheckLimitInTx", mock.Anything, nil, "CP-1", "pd", domain.ProductGsec, "INR", mock.Anything).
		Return(&domain.LimitDecision{Allowed: true}, nil).Once()
	f.repo.On("InsertGsecInTx", mock.Anything, nil, mock.MatchedBy(func(g domain.GsecDeal) bool {
		// Semiannual coupon 3.63 per 100 face, 172 of 184 days accrued.
		if !g.AccruedInterest.Equal(decimal.RequireFromString("3.3932")) {
			return false
		}
		return g.DirtyPrice.Equal(decimal.RequireFromString("101.5166"))
	})).Return(nil).Once()
	f.repo.On("Commit", mock.Anything, nil).Return(nil).Once()

	req := gsecRequest()
	req.AccruedInterest = decimal.Zero
	_, err := f.svc.CreateGsecDeal(context.Background(), f.maker, req)
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.couponSvc.AssertExpectations(t)
}

func TestCreateGsecDeal_PostsSettlementLeg(t *testing.T) {
	f := newGsecFixture()
	f.allowTx()

	f.couponSvc.On("GetCouponDates", mock.Anything, "IN0020250011", mock.Anything).
		Return(nil, apperrors.NewNotFoundError("no coupon schedule")).Once()
	f.numberingSvc.On("NextDealNumberInTx", mock.Anything, nil, mock.Anything).Return("202501030042", nil).Once()
	f.limitSvc.On("CheckLimitInTx", mock.Anything, nil, "CP-1", "pd", domain.ProductGsec, "INR", mock.Anything).
		Return(&domain.LimitDecision{Allowed: true}, nil).Once()
	f.repo.On("InsertGsecInTx", mock.Anything, nil, mock.Anything).Return(nil).Once()
	f.ledgerSvc.On("PostGsecSettlementInTx", mock.Anything, nil, mock.MatchedBy(func(g domain.GsecDeal) bool {
		return g.DealNumber == "202501030042" && g.SettlementBank == "RBI" && g.SettlementAmount.IsPositive()
	})).Return(nil).Once()
	f.repo.On("Commit", mock.Anything, nil).Return(nil).Once()

	req := gsecRequest()
	req.SettlementBank = "RBI"
	_, err := f.svc.CreateGsecDeal(context.Background(), f.maker, req)
	require.NoError(t, err)
	f.ledgerSvc.AssertExpectations(t)
}

func TestCreateGsecDeal_NoSettlementBankSkipsSettlementLeg(t *testing.T) {
	f := newGsecFixture()
	f.allowTx()

	f.couponSvc.On("GetCouponDates", mock.Anything, "IN0020250011", mock.Anything).
		Return(nil, apperrors.NewNotFoundError("no coupon schedule")).Once()
	f.numberingSvc.On("NextDealNumberInTx", mock.Anything, nil, mock.Anything).Return("202501030042", nil).Once()
	f.limitSvc.On("CheckLimitInTx", mock.Anything, nil, "CP-1", "pd", domain.ProductGsec, "INR", mock.Anything).
		Return(&domain.LimitDecision{Allowed: true}, nil).Once()
	f.repo.On("InsertGsecInTx", mock.Anything, nil, mock.Anything).Return(nil).Once()
	f.repo.On("Commit", mock.Anything, nil).Return(nil).Once()

	_, err := f.svc.CreateGsecDeal(context.Background(), f.maker, gsecRequest())
	require.NoError(t, err)
	f.ledgerSvc.AssertNotCalled(t, "PostGsecSettlementInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateGsecDeal_LimitDenied(t *testing.T) {
	f := newGsecFixture()
	f.allowTx()

	f.couponSvc.On("GetCouponDates", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewNotFoundError("no coupon schedule")).Once()
	f.numberingSvc.On("NextDealNumberInTx", mock.Anything, nil, mock.Anything).Return("202501030042", nil).Once()
	f.limitSvc.On("CheckLimitInTx", mock.Anything, nil, "CP-1", "pd", domain.ProductGsec, "INR", mock.Anything).
		Return(&domain.LimitDecision{Allowed: false, Reason: "product limit exceeded", ProductExcess: d(100_000)}, nil).Once()

	_, err := f.svc.CreateGsecDeal(context.Background(), f.maker, gsecRequest())
	var limitErr *apperrors.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, string(domain.ProductGsec), limitErr.ProductType)
	f.repo.AssertNotCalled(t, "InsertGsecInTx", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestCreateGsecDeal_Validation(t *testing.T) {
	f := newGsecFixture()

	noIsin := gsecRequest()
	noIsin.ISIN = ""
	_, err := f.svc.CreateGsecDeal(context.Background(), f.maker, noIsin)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	noFace := gsecRequest()
	noFace.FaceValue = decimal.Zero
	_, err = f.svc.CreateGsecDeal(context.Background(), f.maker, noFace)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	authorizer := domain.Principal{UserID: "u-auth", Role: domain.RoleAuthorizer}
	_, err = f.svc.CreateGsecDeal(context.Background(), authorizer, gsecRequest())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func mmRequest() dto.CreateMoneyMarketRequest {
	return dto.CreateMoneyMarketRequest{
		DealType:        domain.DealTypeLending,
		ProductCode:     "CALL",
		CounterpartyID:  "CP-1",
		Currency:        "INR",
		PrincipalAmount: decimal.NewFromInt(10_000_000),
		InterestRate:    decimal.RequireFromString("6.5"),
		Tenor:           14,
		TradeDate:       time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateMoneyMarketDeal_DerivesInterest(t *testing.T) {
	repo := new(MockMoneyMarketRepository)
	numberingSvc := new(MockNumberingSvc)
	limitSvc := new(MockLimitSvc)
	svc := services.NewMoneyMarketService(repo, numberingSvc, limitSvc, new(MockLedgerSvc))
	maker := domain.Principal{UserID: "u-maker", Role: domain.RoleFrontOffice}

	repo.On("Begin", mock.Anything).Return(nil, nil).Once()
	repo.On("Rollback", mock.Anything, nil).Return(nil).Maybe()
	numberingSvc.On("NextMoneyMarketNumberInTx", mock.Anything, nil, mock.Anything, "CALL").Return("20250103CALL0007", nil).Once()
	limitSvc.On("CheckLimitInTx", mock.Anything, nil, "CP-1", "", domain.ProductMoneyMarket, "INR", mock.Anything).
		Return(&domain.LimitDecision{Allowed: true}, nil).Once()
	repo.On("InsertMoneyMarketInTx", mock.Anything, nil, mock.MatchedBy(func(deal domain.MoneyMarketDeal) bool {
		// 10,000,000 * 6.5 * 14 / 36500 = 24931.5068...
		if !deal.InterestAmount.Equal(decimal.RequireFromString("24931.5068")) {
			return false
		}
		if !deal.MaturityValue.Equal(decimal.RequireFromString("10024931.5068")) {
			return false
		}
		// interest / tenor, truncated.
		if !deal.PerDayInterest.Equal(decimal.RequireFromString("1780.8219")) {
			return false
		}
		return deal.MaturityDate.Equal(time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Once()
	repo.On("Commit", mock.Anything, nil).Return(nil).Once()

	deal, err := svc.CreateMoneyMarketDeal(context.Background(), maker, mmRequest())
	require.NoError(t, err)
	assert.Equal(t, "20250103CALL0007", deal.DealNumber)
	repo.AssertExpectations(t)
}

func TestCreateMoneyMarketDeal_PostsSettlementLeg(t *testing.T) {
	repo := new(MockMoneyMarketRepository)
	numberingSvc := new(MockNumberingSvc)
	limitSvc := new(MockLimitSvc)
	ledgerSvc := new(MockLedgerSvc)
	svc := services.NewMoneyMarketService(repo, numberingSvc, limitSvc, ledgerSvc)
	maker := domain.Principal{UserID: "u-maker", Role: domain.RoleFrontOffice}

	repo.On("Begin", mock.Anything).Return(nil, nil).Once()
	repo.On("Rollback", mock.Anything, nil).Return(nil).Maybe()
	numberingSvc.On("NextMoneyMarketNumberInTx", mock.Anything, nil, mock.Anything, "CALL").Return("20250103CALL0007", nil).Once()
	limitSvc.On("CheckLimitInTx", mock.Anything, nil, "CP-1", "", domain.ProductMoneyMarket, "INR", mock.Anything).
		Return(&domain.LimitDecision{Allowed: true}, nil).Once()
	repo.On("InsertMoneyMarketInTx", mock.Anything, nil, mock.Anything).Return(nil).Once()
	ledgerSvc.On("PostMoneyMarketSettlementInTx", mock.Anything, nil, mock.MatchedBy(func(deal domain.MoneyMarketDeal) bool {
		return deal.DealNumber == "20250103CALL0007" && deal.SettlementBank == "RBI"
	})).Return(nil).Once()
	repo.On("Commit", mock.Anything, nil).Return(nil).Once()

	req := mmRequest()
	req.SettlementBank = "RBI"
	_, err := svc.CreateMoneyMarketDeal(context.Background(), maker, req)
	require.NoError(t, err)
	ledgerSvc.AssertExpectations(t)
}

func TestCreateMoneyMarketDeal_RejectsUnknownDealType(t *testing.T) {
	svc := services.NewMoneyMarketService(new(MockMoneyMarketRepository), new(MockNumberingSvc), new(MockLimitSvc), new(MockLedgerSvc))
	maker := domain.Principal{UserID: "u-maker", Role: domain.RoleFrontOffice}

	req := mmRequest()
	req.DealType = domain.MoneyMarketDealType("swap")
	_, err := svc.CreateMoneyMarketDeal(context.Background(), maker, req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateMoneyMarketDeal_RejectsNegativeTenor(t *testing.T) {
	svc := services.NewMoneyMarketService(new(MockMoneyMarketRepository), new(MockNumberingSvc), new(MockLimitSvc), new(MockLedgerSvc))
	maker := domain.Principal{UserID: "u-maker", Role: domain.RoleFrontOffice}

	req := mmRequest()
	req.Tenor = -1
	_, err := svc.CreateMoneyMarketDeal(context.Background(), maker, req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
