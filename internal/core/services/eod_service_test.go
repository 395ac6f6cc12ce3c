package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/core/services"
)

type EodServiceTestSuite struct {
	suite.Suite
	systemDayRepo *MockSystemDayRepository
	mmRepo        *MockMoneyMarketRepository
	gsecRepo      *MockGsecRepository
	ledgerSvc     *MockLedgerSvc
	svc           portssvc.EodSvcFacade

	admin      domain.Principal
	systemDate time.Time
	ctx        context.Context
}

func (s *EodServiceTestSuite) SetupTest() {
	s.systemDayRepo = new(MockSystemDayRepository)
	s.mmRepo = new(MockMoneyMarketRepository)
	s.gsecRepo = new(MockGsecRepository)
	s.ledgerSvc = new(MockLedgerSvc)
	s.svc = services.NewEodService(s.systemDayRepo, s.mmRepo, s.gsecRepo, s.ledgerSvc)

	s.admin = domain.Principal{UserID: "u-admin", Role: domain.RoleAdmin}
	s.systemDate = time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	s.ctx = context.Background()
}

// lockSystemDay allows the day transaction plus one transaction per deal.
func (s *EodServiceTestSuite) lockSystemDay() {
	s.systemDayRepo.On("Begin", mock.Anything).Return(nil, nil)
	s.systemDayRepo.On("Rollback", mock.Anything, nil).Return(nil).Maybe()
	s.systemDayRepo.On("GetSystemDayForUpdateInTx", mock.Anything, nil).
		Return(&domain.SystemDay{Version: 7, SystemDate: s.systemDate}, nil).Once()
}

func (s *EodServiceTestSuite) expectAdvanceAndCommit() {
	s.systemDayRepo.On("AdvanceSystemDayInTx", mock.Anything, nil, s.systemDate.AddDate(0, 0, 1), mock.Anything).Return(nil).Once()
	s.systemDayRepo.On("Commit", mock.Anything, nil).Return(nil)
}

func mmDeal(number string, dealType domain.MoneyMarketDealType, perDay decimal.Decimal) domain.MoneyMarketDeal {
	return domain.MoneyMarketDeal{
		DealNumber:     number,
		DealType:       dealType,
		Currency:       "INR",
		PerDayInterest: perDay,
	}
}

func (s *EodServiceTestSuite) TestRunEndOfDay_PostsAccrualsAndAdvancesDay() {
	s.lockSystemDay()
	s.mmRepo.On("ListOpenMoneyMarketDeals", mock.Anything, s.systemDate).Return([]domain.MoneyMarketDeal{
		mmDeal("20250103CALL0001", domain.DealTypeLending, d(1370)),
		mmDeal("20250103CALL0002", domain.DealTypeBorrowing, d(960)),
	}, nil).Once()
	s.gsecRepo.On("ListAccruingGsec", mock.Anything, s.systemDate).Return([]domain.GsecDeal{
		{DealNumber: "202501030009", ISIN: "IN0020250011", Currency: "INR", PerDayAccrual: d(274)},
	}, nil).Once()
	s.systemDayRepo.On("TryMarkEodPostedInTx", mock.Anything, nil, mock.Anything, s.systemDate).Return(true, nil).Times(3)
	s.ledgerSvc.On("PostEntriesInTx", mock.Anything, nil, mock.MatchedBy(func(entries []domain.LedgerEntry) bool {
		return len(entries) == 2 && entries[0].DebitAmount.Equal(entries[1].CreditAmount)
	})).Return(nil).Times(3)
	s.expectAdvanceAndCommit()

	result, err := s.svc.RunEndOfDay(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(2, result.PostedMoneyMarket)
	s.Equal(1, result.PostedGsec)
	s.Equal(0, result.SkippedDeals)
	s.Equal(s.systemDate.AddDate(0, 0, 1), result.NextSystemDay)
	s.ledgerSvc.AssertExpectations(s.T())
}

func (s *EodServiceTestSuite) TestRunEndOfDay_SkipsInvalidDeals() {
	s.lockSystemDay()
	s.mmRepo.On("ListOpenMoneyMarketDeals", mock.Anything, s.systemDate).Return([]domain.MoneyMarketDeal{
		mmDeal("20250103CALL0001", domain.DealTypeLending, decimal.Zero),
		mmDeal("20250103CALL0002", domain.MoneyMarketDealType("swap"), d(100)),
	}, nil).Once()
	s.gsecRepo.On("ListAccruingGsec", mock.Anything, s.systemDate).Return([]domain.GsecDeal{
		{DealNumber: "202501030009", Currency: "INR", PerDayAccrual: decimal.Zero},
	}, nil).Once()
	s.expectAdvanceAndCommit()

	result, err := s.svc.RunEndOfDay(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(0, result.PostedMoneyMarket)
	s.Equal(0, result.PostedGsec)
	s.Equal(3, result.SkippedDeals)
	s.ledgerSvc.AssertNotCalled(s.T(), "PostEntriesInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *EodServiceTestSuite) TestRunEndOfDay_AlreadyPostedDealsAreSkipped() {
	s.lockSystemDay()
	s.mmRepo.On("ListOpenMoneyMarketDeals", mock.Anything, s.systemDate).Return([]domain.MoneyMarketDeal{
		mmDeal("20250103CALL0001", domain.DealTypeLending, d(1370)),
	}, nil).Once()
	s.gsecRepo.On("ListAccruingGsec", mock.Anything, s.systemDate).Return([]domain.GsecDeal{}, nil).Once()
	s.systemDayRepo.On("TryMarkEodPostedInTx", mock.Anything, nil, "20250103CALL0001", s.systemDate).Return(false, nil).Once()
	s.expectAdvanceAndCommit()

	result, err := s.svc.RunEndOfDay(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(0, result.PostedMoneyMarket)
	s.Equal(1, result.SkippedDeals)
	s.ledgerSvc.AssertNotCalled(s.T(), "PostEntriesInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *EodServiceTestSuite) TestRunEndOfDay_ImbalanceAbortsRun() {
	s.lockSystemDay()
	s.mmRepo.On("ListOpenMoneyMarketDeals", mock.Anything, s.systemDate).Return([]domain.MoneyMarketDeal{
		mmDeal("20250103CALL0001", domain.DealTypeLending, d(1370)),
	}, nil).Once()
	s.systemDayRepo.On("TryMarkEodPostedInTx", mock.Anything, nil, "20250103CALL0001", s.systemDate).Return(true, nil).Once()
	s.ledgerSvc.On("PostEntriesInTx", mock.Anything, nil, mock.Anything).Return(apperrors.ErrLedgerImbalance).Once()

	_, err := s.svc.RunEndOfDay(s.ctx, s.admin)
	s.ErrorIs(err, apperrors.ErrLedgerImbalance)
	s.systemDayRepo.AssertNotCalled(s.T(), "AdvanceSystemDayInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.systemDayRepo.AssertNotCalled(s.T(), "Commit", mock.Anything, mock.Anything)
}

func (s *EodServiceTestSuite) TestRunEndOfDay_FailureKeepsEarlierAccruals() {
	s.lockSystemDay()
	s.mmRepo.On("ListOpenMoneyMarketDeals", mock.Anything, s.systemDate).Return([]domain.MoneyMarketDeal{
		mmDeal("20250103CALL0001", domain.DealTypeLending, d(1370)),
		mmDeal("20250103CALL0002", domain.DealTypeLending, d(960)),
	}, nil).Once()
	s.systemDayRepo.On("TryMarkEodPostedInTx", mock.Anything, nil, "20250103CALL0001", s.systemDate).Return(true, nil).Once()
	s.systemDayRepo.On("TryMarkEodPostedInTx", mock.Anything, nil, "20250103CALL0002", s.systemDate).Return(true, nil).Once()
	s.ledgerSvc.On("PostEntriesInTx", mock.Anything, nil, mock.MatchedBy(func(entries []domain.LedgerEntry) bool {
		return entries[0].DealNumber == "20250103CALL0001"
	})).Return(nil).Once()
	s.ledgerSvc.On("PostEntriesInTx", mock.Anything, nil, mock.MatchedBy(func(entries []domain.LedgerEntry) bool {
		return entries[0].DealNumber == "20250103CALL0002"
	})).Return(errors.New("connection reset")).Once()
	s.systemDayRepo.On("Commit", mock.Anything, nil).Return(nil).Once()

	_, err := s.svc.RunEndOfDay(s.ctx, s.admin)
	s.Require().Error(err)
	// The first deal's transaction committed on its own; the day did not advance.
	s.systemDayRepo.AssertNumberOfCalls(s.T(), "Commit", 1)
	s.systemDayRepo.AssertNotCalled(s.T(), "AdvanceSystemDayInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *EodServiceTestSuite) TestRunEndOfDay_RequiresAdmin() {
	clerk := domain.Principal{UserID: "u-1", Role: domain.RoleFrontOffice}
	_, err := s.svc.RunEndOfDay(s.ctx, clerk)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *EodServiceTestSuite) TestGetSystemDay() {
	s.systemDayRepo.On("GetSystemDay", mock.Anything).
		Return(&domain.SystemDay{Version: 7, SystemDate: s.systemDate}, nil).Once()

	day, err := s.svc.GetSystemDay(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.systemDate, day.SystemDate)
}

func TestEodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EodServiceTestSuite))
}
