package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/sangkips/trademate-console/internal/application/poller"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/config"
	domainRepo "github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/infrastructure/backend"
	"github.com/sangkips/trademate-console/internal/infrastructure/database"
	"github.com/sangkips/trademate-console/internal/infrastructure/repository"
	"github.com/sangkips/trademate-console/internal/infrastructure/session"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/internal/presentation/http/handler"
	"github.com/sangkips/trademate-console/internal/presentation/http/middleware"
	"github.com/sangkips/trademate-console/internal/presentation/http/routes"
	"github.com/sangkips/trademate-console/internal/presentation/web"
	"github.com/sangkips/trademate-console/pkg/money"
	"github.com/sangkips/trademate-console/pkg/printer"
)

const idempotencyCleanupInterval = time.Hour

func main() {
	// Load configuration
	fs := pflag.NewFlagSet("console", pflag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	cfg := config.Load(fs)

	logger := logging.New(cfg.App.LogLevel)
	slog.SetDefault(logger)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Idempotency store
	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Terminal store
	terminalRepo := repository.NewMemoryTerminalRepository()
	if cfg.Redis.URL != "" {
		rdb, err := repository.NewRedisClient(context.Background(), cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		terminalRepo = repository.NewRedisTerminalRepository(rdb, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
		logger.Info("terminals stored in redis", "prefix", cfg.Redis.KeyPrefix)
	}

	// Backend repositories
	client := backend.NewClient(&cfg.Backend)
	authRepo := backend.NewAuthRepository(client)
	productRepo := backend.NewProductRepository(client)
	categoryRepo := backend.NewCategoryRepository(client)
	saleRepo := backend.NewSaleRepository(client)
	dashboardRepo := backend.NewDashboardRepository(client)
	staffRepo := backend.NewStaffRepository(client)
	shopRepo := backend.NewShopRepository(client)

	registry := poller.NewRegistry(poller.RegistryConfig{
		IdleTimeout: cfg.Polling.IdleTimeout,
	}, logger)

	formatter, err := money.NewFormatter(cfg.Receipt.Currency, cfg.Receipt.Locale, cfg.Receipt.Symbol)
	if err != nil {
		log.Fatalf("Invalid receipt currency settings: %v", err)
	}
	receiptRenderer := service.NewReceiptRenderer(formatter, cfg.Receipt, cfg.Printer.CharWidth)

	// Initialize receipt printer
	receiptPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.SpoolDir)
	if err != nil {
		logger.Warn("failed to initialize printer, receipts will not be printed", "error", err)
		receiptPrinter = printer.NewNullPrinter()
	}
	printerService := service.NewPrinterService(receiptPrinter, receiptRenderer, cfg.Printer.Type)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, terminalRepo, registry, cfg.Polling.CatalogInterval)
	dashboardService := service.NewDashboardService(dashboardRepo, productRepo, registry, cfg.Polling.DashboardInterval)
	authService := service.NewAuthService(authRepo, terminalRepo, registry, catalogService, dashboardService)
	checkoutService := service.NewCheckoutService(terminalRepo, saleRepo, catalogService, printerService)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	staffService := service.NewStaffService(staffRepo)
	receiptService := service.NewReceiptService(saleRepo, productRepo, staffRepo, shopRepo, printerService)

	sessions, err := session.NewStore(&cfg.Session)
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	renderer, err := web.NewRenderer(handler.FuncMap(formatter))
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	// Initialize handlers
	base := handler.NewBase(sessions, authService)
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(base, authService, cfg.Backend.BaseURL),
		Store:     handler.NewStoreHandler(base, catalogService, checkoutService, cfg.Polling.CatalogInterval),
		Dashboard: handler.NewDashboardHandler(base, dashboardService, cfg.Polling.DashboardInterval),
		Product:   handler.NewProductHandler(base, productService),
		Category:  handler.NewCategoryHandler(base, categoryService),
		Staff:     handler.NewStaffHandler(base, staffService),
		Receipt:   handler.NewReceiptHandler(base, receiptService),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Logger:          logger,
		Sessions:        sessions,
		Renderer:        renderer,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		OnSessionExpired: func(c *gin.Context, sessionID string) {
			authService.EndSession(c.Request.Context(), sessionID)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupIdempotencyKeys(ctx, idempotencyRepo, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting console", "name", cfg.App.Name, "port", cfg.App.Port, "env", cfg.App.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	registry.Close()
	rateLimiter.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func cleanupIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, logger *slog.Logger) {
	ticker := time.NewTicker(idempotencyCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				logger.Warn("failed to delete expired idempotency keys", "error", err)
			}
		}
	}
}
