package main

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs --parseInternal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ferreteria/backend/docs"
	cashapp "github.com/ferreteria/backend/internal/application/cash"
	"github.com/ferreteria/backend/internal/domain/cash"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/ferreteria/backend/internal/infrastructure/auth"
	"github.com/ferreteria/backend/internal/infrastructure/cache"
	"github.com/ferreteria/backend/internal/infrastructure/config"
	"github.com/ferreteria/backend/internal/infrastructure/event"
	"github.com/ferreteria/backend/internal/infrastructure/logger"
	"github.com/ferreteria/backend/internal/infrastructure/migration"
	"github.com/ferreteria/backend/internal/infrastructure/persistence"
	"github.com/ferreteria/backend/internal/infrastructure/telemetry"
	"github.com/ferreteria/backend/internal/interfaces/http/handler"
	"github.com/ferreteria/backend/internal/interfaces/http/middleware"
	"github.com/ferreteria/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Ferretería Cash API
//	@version		1.0
//	@description	Cash sessions, ledger, credit installments and arqueo reconciliation for hardware stores

//	@contact.name	Ferretería backend team

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: timeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer tel.shutdown(log)

	// Once the OTLP log bridge is up every entry goes to both outputs
	if tel.logs.IsEnabled() {
		level, _ := zapcore.ParseLevel(cfg.Log.Level)
		if bridged, err := logger.New(logCfg, tel.logs.ZapCore(cfg.Telemetry.ServiceName, level)); err == nil {
			log = bridged
		} else {
			log.Warn("OTLP log bridge unavailable, keeping local logger", zap.Error(err))
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ferretería backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("ledger_policy", cfg.Cash.LedgerPolicy),
		zap.String("payment_mode", cfg.Cash.PaymentMode),
	)

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:          cfg.Database.DBName,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migrate(db, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Repositories
	registerRepo := persistence.NewGormCashRegisterRepository(db.DB)
	sessionRepo := persistence.NewGormCashSessionRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	creditRepo := persistence.NewGormCreditSaleRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	transferRepo := persistence.NewGormCashTransferRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	bus := event.NewInMemoryEventBus(log)
	cashMetrics, err := telemetry.NewCashMetrics(tel.metrics.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to create cash metrics", zap.Error(err))
	}
	for _, h := range []shared.EventHandler{
		cashapp.NewMetricsHandler(cashMetrics),
		cashapp.NewDiscrepancyHandler(log),
	} {
		bus.Subscribe(h, h.EventTypes()...)
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Services
	opts := cashOptions(cfg.Cash)
	registerService := cashapp.NewRegisterService(registerRepo, sessionRepo, log)
	sessionService := cashapp.NewSessionService(scope, sessionRepo, ledgerRepo, opts, log)
	ledgerService := cashapp.NewLedgerService(scope, ledgerRepo, opts, log)
	creditService := cashapp.NewCreditService(scope, creditRepo, opts, log)
	expenseService := cashapp.NewExpenseService(scope, expenseRepo, opts, log)
	transferService := cashapp.NewTransferService(scope, transferRepo, log)
	reportService := cashapp.NewReportService(sessionRepo, ledgerRepo, opts, log)

	registerService.SetEventPublisher(bus)
	sessionService.SetEventPublisher(bus)
	ledgerService.SetEventPublisher(bus)
	creditService.SetEventPublisher(bus)
	expenseService.SetEventPublisher(bus)
	transferService.SetEventPublisher(bus)
	reportService.SetEventPublisher(bus)

	// Idempotency-Key store
	var idempotent gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cfg.Idempotency,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.IsProduction()),
		).CreateStore(ctx)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("Error closing idempotency store", zap.Error(err))
			}
		}()
		idempotent = middleware.Idempotency(middleware.IdempotencyConfig{
			Store: store,
			TTL:   cfg.Idempotency.TTL,
		})
	}

	engine, err := newEngine(cfg, log, tel)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	engine.GET("/health", handler.NewHealthHandler(db, telemetry.ServiceVersion).Health)

	if cfg.Swagger.Enabled {
		docs.SwaggerInfo.BasePath = "/api/v1"
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:    cfg.Swagger.Enabled,
				AllowedIPs: cfg.Swagger.AllowedIPs,
			}),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
		log.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(
			middleware.JWTAuthMiddleware(jwtService),
			middleware.TracingAttributeInjector(),
			middleware.Profiling(cfg.Telemetry.ProfilingEnabled),
		),
	)
	r.Register(router.CashRoutes(router.CashHandlers{
		Register: handler.NewRegisterHandler(registerService),
		Session:  handler.NewSessionHandler(sessionService),
		Ledger:   handler.NewLedgerHandler(ledgerService),
		Report:   handler.NewReportHandler(reportService),
		Credit:   handler.NewCreditHandler(creditService),
		Expense:  handler.NewExpenseHandler(expenseService),
		Transfer: handler.NewTransferHandler(transferService),
	}, idempotent)...)
	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// cashOptions maps the cash section of the configuration onto service options.
// Unknown values fall back to the defaults inside the services.
func cashOptions(c config.CashConfig) cashapp.Options {
	return cashapp.Options{
		LedgerPolicy: cash.LedgerPolicy(c.LedgerPolicy),
		PaymentMode:  cash.PaymentMode(c.PaymentMode),
		Thresholds: cash.DeviationThresholds{
			WarningPct:  decimal.NewFromFloat(c.DeviationWarningPct),
			CriticalPct: decimal.NewFromFloat(c.DeviationCriticalPct),
		},
		Currency: valueobject.Currency(c.Currency),
		Locale:   c.Locale,
	}
}

func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.SQL()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool
	return m.Up()
}

// telemetryStack owns the OpenTelemetry providers and the profiler
type telemetryStack struct {
	traces   *telemetry.TracerProvider
	metrics  *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryStack, error) {
	tc := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}

	var (
		t   = &telemetryStack{}
		err error
	)
	if t.traces, err = telemetry.NewTracerProvider(ctx, tc, log); err != nil {
		return nil, err
	}
	if t.metrics, err = telemetry.NewMeterProvider(ctx, tc, log); err != nil {
		return nil, err
	}
	if t.logs, err = telemetry.NewLoggerProvider(ctx, tc, log); err != nil {
		return nil, err
	}
	if t.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log); err != nil {
		return nil, err
	}
	if t.profiler.IsEnabled() {
		t.traces.EnableSpanProfiles()
	}
	return t, nil
}

func (t *telemetryStack) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := t.profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := t.traces.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := t.metrics.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := t.logs.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}
}

// newEngine builds the gin engine with the engine-wide middleware chain
func newEngine(cfg *config.Config, log *zap.Logger, tel *telemetryStack) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	httpMetrics, err := middleware.HTTPMetrics(tel.metrics.Meter("ferreteria/http"))
	if err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tel.traces.IsEnabled(),
		}),
		middleware.SpanErrorMarker(),
		httpMetrics,
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	return engine, nil
}
