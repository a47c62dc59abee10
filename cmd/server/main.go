package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"github.com/ledgerbook/backend/internal/infrastructure/cache"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/ledgerbook/backend/internal/infrastructure/logger"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence"
	"github.com/ledgerbook/backend/internal/infrastructure/scheduler"
	"github.com/ledgerbook/backend/internal/interfaces/http/handler"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
	"github.com/ledgerbook/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledgerbook backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed gorm logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Schema bootstrap for sqlite and local development. Postgres
	// deployments run versioned migrations through cmd/migrate instead.
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}

	// Unit of work over the shared connection
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Replay guard: Redis when configured, in-memory otherwise
	var replay appledger.ReplayGuard
	if cfg.Redis.Enabled {
		redisGuard, err := cache.NewRedisReplayGuard(cfg.Redis, 0)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		replay = redisGuard
		log.Info("Recurring replay guard backed by Redis")
	} else {
		memGuard := cache.NewInMemoryReplayGuard(0)
		defer memGuard.Close()
		replay = memGuard
	}

	// Application services
	guard := appledger.NewPeriodGuard(uow.FinancialYears(), cfg.Ledger.EnforceFinancialYear)
	activity := appledger.NewActivityService(uow.ActivityLogs(), log)
	postingService := appledger.NewPostingService(uow, guard, appledger.NoopCurrencyRecorder{}, activity, log)
	invoiceService := appledger.NewInvoiceService(uow, guard, nil, activity, log)
	saleReturnService := appledger.NewSaleReturnService(uow, guard, activity, log)
	accountService := appledger.NewAccountService(uow, activity, log)
	bankService := appledger.NewBankService(uow, activity, log)
	financialYearService := appledger.NewFinancialYearService(uow, log)
	recurringService := appledger.NewRecurringService(uow, postingService, invoiceService, replay, activity, log)

	// Recurring transaction scheduler
	if cfg.Scheduler.Enabled {
		trigger := scheduler.NewRecurringTrigger(scheduler.RecurringTriggerConfig{
			PollInterval: cfg.Scheduler.PollInterval,
		}, recurringService, log)
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start recurring scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := trigger.Stop(stopCtx); err != nil {
				log.Warn("Recurring scheduler did not stop cleanly", zap.Error(err))
			}
		}()
		log.Info("Recurring scheduler started", zap.Duration("poll_interval", cfg.Scheduler.PollInterval))
	}

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Handlers
	voucherHandler := handler.NewVoucherHandler(postingService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	saleReturnHandler := handler.NewSaleReturnHandler(saleReturnService)
	accountHandler := handler.NewAccountHandler(accountService)
	bankHandler := handler.NewBankHandler(bankService)
	financialYearHandler := handler.NewFinancialYearHandler(financialYearService)
	recurringHandler := handler.NewRecurringHandler(recurringService)
	activityHandler := handler.NewActivityHandler(activity)
	systemHandler := handler.NewSystemHandler(db)

	// Gin engine and middleware stack
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		writeLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitWrites, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.WriteRateLimit(writeLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Int("writes", cfg.HTTP.RateLimitWrites),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check outside API versioning
	engine.GET("/health", systemHandler.Health)

	// Versioned API routes behind authentication
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))
	r.Use(middleware.TenantMiddleware(middleware.TenantMiddlewareConfig{
		Required: true,
		Logger:   log,
	}))

	accountRoutes := router.NewDomainGroup("accounts", "/accounts")
	accountRoutes.POST("", accountHandler.CreateAccount)
	accountRoutes.GET("", accountHandler.ListAccounts)
	accountRoutes.GET("/:id", accountHandler.GetAccount)
	accountRoutes.PUT("/:id/name", accountHandler.RenameAccount)
	accountRoutes.DELETE("/:id", accountHandler.DeleteAccount)
	accountRoutes.GET("/:id/ledger", accountHandler.GetLedger)
	accountRoutes.GET("/:id/balance", accountHandler.GetBalance)

	voucherRoutes := router.NewDomainGroup("vouchers", "/vouchers")
	voucherRoutes.POST("/cash-payments", voucherHandler.CreateCashPayment)
	voucherRoutes.POST("/cash-receipts", voucherHandler.CreateCashReceipt)
	voucherRoutes.POST("/journals", voucherHandler.CreateJournal)
	voucherRoutes.PUT("/journals/:id", voucherHandler.UpdateJournal)
	voucherRoutes.PUT("/cash/:id", voucherHandler.UpdateCashVoucher)
	voucherRoutes.GET("", voucherHandler.ListVouchers)
	voucherRoutes.GET("/:id", voucherHandler.GetVoucher)
	voucherRoutes.DELETE("/:id", voucherHandler.DeleteVoucher)

	invoiceRoutes := router.NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.POST("/sales", invoiceHandler.CreateSalesInvoice)
	invoiceRoutes.POST("/purchases", invoiceHandler.CreatePurchaseInvoice)
	invoiceRoutes.GET("/sales", invoiceHandler.ListSalesInvoices)
	invoiceRoutes.GET("/purchases", invoiceHandler.ListPurchaseInvoices)
	invoiceRoutes.GET("/:id", invoiceHandler.GetInvoice)
	invoiceRoutes.DELETE("/:id", invoiceHandler.DeleteInvoice)

	saleReturnRoutes := router.NewDomainGroup("sale-returns", "/sale-returns")
	saleReturnRoutes.POST("", saleReturnHandler.CreateSaleReturn)
	saleReturnRoutes.GET("", saleReturnHandler.ListSaleReturns)
	saleReturnRoutes.GET("/:id", saleReturnHandler.GetSaleReturn)
	saleReturnRoutes.DELETE("/:id", saleReturnHandler.DeleteSaleReturn)

	bankRoutes := router.NewDomainGroup("banks", "/bank-accounts")
	bankRoutes.POST("/resolve", bankHandler.ResolveBankAccount)
	bankRoutes.GET("", bankHandler.ListBankAccounts)
	bankRoutes.GET("/:id", bankHandler.GetBankAccount)
	bankRoutes.GET("/:id/derived-balance", bankHandler.GetDerivedBalance)
	bankRoutes.GET("/:id/statements", bankHandler.ListStatements)
	bankRoutes.POST("/statements/reconcile", bankHandler.ReconcileStatements)

	yearRoutes := router.NewDomainGroup("financial-years", "/financial-years")
	yearRoutes.POST("", financialYearHandler.CreateFinancialYear)
	yearRoutes.GET("", financialYearHandler.ListFinancialYears)
	yearRoutes.POST("/:id/close", financialYearHandler.CloseFinancialYear)
	yearRoutes.POST("/:id/reopen", financialYearHandler.ReopenFinancialYear)

	recurringRoutes := router.NewDomainGroup("recurring", "/recurring-transactions")
	recurringRoutes.POST("", recurringHandler.CreateRecurring)
	recurringRoutes.GET("", recurringHandler.ListRecurring)
	recurringRoutes.PATCH("/:id/active", recurringHandler.SetActive)
	recurringRoutes.DELETE("/:id", recurringHandler.DeleteRecurring)
	recurringRoutes.POST("/process", recurringHandler.ProcessDue)

	activityRoutes := router.NewDomainGroup("activity", "/activity-logs")
	activityRoutes.GET("", activityHandler.ListActivity)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.Register(accountRoutes).
		Register(voucherRoutes).
		Register(invoiceRoutes).
		Register(saleReturnRoutes).
		Register(bankRoutes).
		Register(yearRoutes).
		Register(recurringRoutes).
		Register(activityRoutes).
		Register(systemRoutes)

	r.Setup()

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
