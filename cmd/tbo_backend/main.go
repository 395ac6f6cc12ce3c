package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/core/services"
	"github.com/treasuryops/tbo_backend/internal/handlers"
	"github.com/treasuryops/tbo_backend/internal/middleware"
	"github.com/treasuryops/tbo_backend/internal/repositories/database/pgsql"
	"github.com/treasuryops/tbo_backend/pkg/config"
	"github.com/treasuryops/tbo_backend/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))

	rate, err := limiter.NewRateFromFormatted(cfg.LoginRateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := buildServices(dbPool, cfg)
	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildServices wires repositories into the service container.
func buildServices(dbPool *pgxpool.Pool, cfg *config.Config) *portssvc.ServiceContainer {
	repos := pgsql.NewRepositoryProvider(dbPool)

	numberingSvc := services.NewNumberingService(repos.DealRepo)
	limitSvc := services.NewLimitService(repos.LimitRepo)
	ledgerSvc := services.NewLedgerService(repos.LedgerRepo, repos.AccountRepo)
	couponSvc := services.NewCouponService(repos.CouponRepo)

	return &portssvc.ServiceContainer{
		Auth:        services.NewAuthService(repos.UserRepo, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiryDuration),
		Deal:        services.NewDealService(repos.DealRepo, numberingSvc, limitSvc, ledgerSvc),
		Gsec:        services.NewGsecService(repos.GsecRepo, numberingSvc, limitSvc, ledgerSvc, couponSvc),
		MoneyMarket: services.NewMoneyMarketService(repos.MoneyMarketRepo, numberingSvc, limitSvc, ledgerSvc),
		Ledger:      ledgerSvc,
		Limit:       limitSvc,
		Coupon:      couponSvc,
		Eod:         services.NewEodService(repos.SystemDayRepo, repos.MoneyMarketRepo, repos.GsecRepo, ledgerSvc),
	}
}

// runMigrations applies all pending up migrations using a temporary
// database/sql connection.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer migrationDB.Close()

	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	if sourceErr, dbErr := m.Close(); sourceErr != nil {
		return sourceErr
	} else if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied")
	}
	return nil
}
