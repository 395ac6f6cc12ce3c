package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/middleware"
	"github.com/treasuryops/tbo_backend/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	registerAuthRoutes(r, services.Auth)

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerDealRoutes(v1, services.Deal, cfg.DefaultCurrency)
	registerGsecRoutes(v1, services.Gsec, services.MoneyMarket, cfg.DefaultCurrency)
	registerLedgerRoutes(v1, services.Ledger)
	registerLimitRoutes(v1, services.Limit)
	registerCouponRoutes(v1, services.Coupon)
	registerEodRoutes(v1, services.Eod)
}
