package services

// ServiceContainer bundles every service implementation for route wiring.
type ServiceContainer struct {
	Auth        AuthSvcFacade
	Deal        DealSvcFacade
	Gsec        GsecSvc
	MoneyMarket MoneyMarketSvc
	Ledger      LedgerSvcFacade
	Limit       LimitSvcFacade
	Coupon      CouponSvcFacade
	Eod         EodSvcFacade
}
