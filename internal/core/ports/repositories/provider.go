package repositories

// RepositoryProvider bundles every repository implementation for wiring at
// startup.
type RepositoryProvider struct {
	DealRepo        DealRepositoryWithTx
	GsecRepo        GsecRepositoryWithTx
	MoneyMarketRepo MoneyMarketRepositoryWithTx
	LedgerRepo      LedgerRepositoryWithTx
	AccountRepo     AccountRepositoryFacade
	LimitRepo       LimitRepositoryWithTx
	CouponRepo      CouponRepositoryFacade
	SystemDayRepo   SystemDayRepositoryWithTx
	UserRepo        UserRepositoryFacade
}
