// Command server runs the eshop HTTP API together with the background task queue.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/sisl/eshop/internal/application/catalog"
	tradeapp "github.com/sisl/eshop/internal/application/trade"
	"github.com/sisl/eshop/internal/domain/integration"
	"github.com/sisl/eshop/internal/infrastructure/accounting"
	"github.com/sisl/eshop/internal/infrastructure/auth"
	"github.com/sisl/eshop/internal/infrastructure/cache"
	"github.com/sisl/eshop/internal/infrastructure/config"
	"github.com/sisl/eshop/internal/infrastructure/event"
	"github.com/sisl/eshop/internal/infrastructure/logger"
	"github.com/sisl/eshop/internal/infrastructure/notification"
	"github.com/sisl/eshop/internal/infrastructure/persistence"
	"github.com/sisl/eshop/internal/infrastructure/printing"
	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"github.com/sisl/eshop/internal/infrastructure/storage"
	"github.com/sisl/eshop/internal/infrastructure/telemetry"
	"github.com/sisl/eshop/internal/interfaces/http/handler"
	"github.com/sisl/eshop/internal/interfaces/http/middleware"
	"github.com/sisl/eshop/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting eshop",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	meter := tel.Meter.Meter("github.com/sisl/eshop")
	metrics, err := telemetry.NewShopMetrics(meter)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		}, log); err != nil {
			return fmt.Errorf("database tracing: %w", err)
		}
	}
	log.Info("Database connected", zap.String("database", cfg.Database.DBName))

	objects, err := storage.New(ctx, cfg.Storage, cfg.Media, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	locker, closeLocker, err := cache.NewLockerFactory(cfg.Lock, cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		return fmt.Errorf("confirmation lock: %w", err)
	}
	defer func() { _ = closeLocker() }()

	renderer, err := printing.NewRenderer(cfg.Printing, log)
	if err != nil {
		return fmt.Errorf("pdf renderer: %w", err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Warn("Error closing renderer", zap.Error(err))
		}
	}()
	documents, err := printing.NewQuotationDocumentBuilder(renderer, printing.NewTemplateEngine(), log)
	if err != nil {
		return fmt.Errorf("document builder: %w", err)
	}

	mailer, err := notification.New(cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	accountingClient, err := accounting.NewClient(cfg.Accounting, log)
	if err != nil {
		return fmt.Errorf("accounting client: %w", err)
	}
	bridge := integration.NewAccountingBridge(accountingClient, cfg.Accounting.ForwardContactDetails)

	queue := scheduler.NewQueue(scheduler.Config{
		Workers:        cfg.Tasks.Workers,
		QueueSize:      cfg.Tasks.QueueSize,
		MaxAttempts:    cfg.Tasks.MaxAttempts,
		InitialBackoff: cfg.Tasks.InitialBackoff,
		MaxBackoff:     cfg.Tasks.MaxBackoff,
		TaskTimeout:    cfg.Tasks.TaskTimeout,
	}, log, scheduler.WithObserver(metrics.ObserveTask))

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	brandRepo := persistence.NewGormBrandRepository(db.DB)
	bannerRepo := persistence.NewGormBannerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)

	// Application services
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	brandService := catalogapp.NewBrandService(brandRepo, productRepo, objects, log)
	bannerService := catalogapp.NewBannerService(bannerRepo, objects, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, brandRepo, quotationRepo, objects, log)
	storefrontService := catalogapp.NewStorefrontService(categoryRepo, brandRepo, bannerRepo, productRepo, cfg.Storefront)
	quotationService := tradeapp.NewQuotationService(quotationRepo, productRepo, objects, log,
		tradeapp.WithMetrics(metrics))
	confirmationService := tradeapp.NewConfirmationService(quotationRepo, bridge, locker, queue, log,
		tradeapp.WithMetrics(metrics))

	tradeapp.NewQuotationTasks(quotationRepo, documents, objects, mailer, cfg.Mail.OperationsMailbox,
		confirmationService, queue, log).Register(queue)

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(tradeapp.NewQuotationSubmittedHandler(queue, log))
	productService.SetEventPublisher(eventBus)
	quotationService.SetEventPublisher(eventBus)
	confirmationService.SetEventPublisher(eventBus)
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("event bus: %w", err)
	}

	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("task queue: %w", err)
	}

	// HTTP
	middleware.SetupValidator()
	jwtService := auth.NewJWTService(cfg.JWT)
	handlers := router.Handlers{
		System:         handler.NewSystemHandler(version, db, queue),
		Category:       handler.NewCategoryHandler(categoryService),
		Brand:          handler.NewBrandHandler(brandService, cfg.HTTP.MaxUploadSize),
		Banner:         handler.NewBannerHandler(bannerService, cfg.HTTP.MaxUploadSize),
		Product:        handler.NewProductHandler(productService, cfg.HTTP.MaxUploadSize),
		Storefront:     handler.NewStorefrontHandler(storefrontService, categoryService),
		Quotation:      handler.NewQuotationHandler(quotationService),
		AdminQuotation: handler.NewAdminQuotationHandler(quotationService, confirmationService),
	}

	engineCfg := router.EngineConfig{
		Env:         cfg.App.Env,
		ServiceName: cfg.Telemetry.ServiceName,
		HTTP:        cfg.HTTP,
		Tracing:     cfg.Telemetry.Enabled,
		Meter:       meter,
	}
	if cfg.Storage.Backend != "s3" {
		engineCfg.MediaRoot = cfg.Media.Root
		engineCfg.MediaURL = cfg.Media.URL
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Close()
		engineCfg.RateLimiter = limiter
	}
	engine := router.NewEngine(engineCfg, log, handlers, router.Auth{
		Staff:    middleware.StaffAuth(jwtService, log),
		Optional: middleware.OptionalJWTAuthMiddleware(jwtService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	// HTTP first, then the queue so in-flight requests can still enqueue.
	// Renderer and database close through the deferred calls above.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("task queue shutdown: %w", err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("event bus shutdown: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}
