package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/rentalcore/backend/internal/infrastructure/logger"
	"github.com/rentalcore/backend/internal/infrastructure/migration"
	"github.com/rentalcore/backend/internal/infrastructure/persistence"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/rentalcore/backend/internal/interfaces/http/middleware"
	"github.com/rentalcore/backend/internal/interfaces/http/router"
	"github.com/rentalcore/backend/migrations"
	"go.uber.org/zap"

	_ "github.com/rentalcore/backend/docs"
)

const version = "1.0.0"

//	@title			Rental Core API
//	@version		1.0
//	@description	Inventory, rental and sale transactions, returns and inspections for a rental business.

//	@contact.name	API Support
//	@contact.url	https://github.com/rentalcore/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Log export needs a logger of its own first; once the provider is up
	// the application logger is rebuilt with the export core attached.
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		exported, err := logger.New(logCfg, logProvider.Core(cfg.Telemetry.ServiceName))
		if err != nil {
			log.Fatal("Failed to attach log export", zap.Error(err))
		}
		log = exported
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Rental Core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meters, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracer.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Database tracing not registered", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meters, cfg.Telemetry, log)
	if err != nil {
		log.Warn("Database metrics not registered", zap.Error(err))
	}

	app, err := buildApplication(ctx, cfg, db, meters, log)
	if err != nil {
		log.Fatal("Failed to wire application", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}

	engine, err := router.NewEngine(engineConfig(cfg, meters, app, limiter, log), app.handlers)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

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

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Requests are drained; stop the consumers of their side effects next,
	// then the exporters so the last spans and metrics still go out.
	app.close(shutdownCtx)
	if dbMetrics != nil {
		if err := dbMetrics.Stop(); err != nil {
			log.Warn("Error stopping database metrics", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meters.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// applyMigrations runs the embedded migrations up to the latest version
func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool, so it is left open.
	return m.Up()
}

// engineConfig maps configuration onto the HTTP stack
func engineConfig(cfg *config.Config, meters *telemetry.MeterProvider, app *application, limiter *middleware.RateLimiter, log *zap.Logger) router.EngineConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"

	// a nil *JWTService must not reach the interface
	var verifier middleware.TokenVerifier
	if app.tokens != nil {
		verifier = app.tokens
	}

	return router.EngineConfig{
		Logger:         log,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing: middleware.TracingConfig{
			ServiceName:      cfg.Telemetry.ServiceName,
			Enabled:          cfg.Telemetry.Enabled,
			SkipPathPrefixes: []string{"/health", "/swagger"},
		},
		Metrics:     meters,
		CORS:        cors,
		Security:    security,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		Auth:        middleware.DefaultAuthConfig(verifier, log),
		RateLimiter: limiter,
		Profiling:   cfg.Telemetry.ProfilingEnabled,
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
	}
}
