package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/infrastructure/logger"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/rentalcore/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// EngineConfig collects everything the HTTP stack is assembled from
type EngineConfig struct {
	Logger         *zap.Logger
	TrustedProxies []string
	Tracing        middleware.TracingConfig
	// Metrics may be nil or disabled
	Metrics     *telemetry.MeterProvider
	CORS        middleware.CORSConfig
	Security    middleware.SecurityConfig
	MaxBodySize int64
	Auth        middleware.AuthConfig
	// RateLimiter nil disables rate limiting
	RateLimiter *middleware.RateLimiter
	Profiling   bool
	Swagger     middleware.SwaggerConfig
}

// NewEngine builds the gin engine: the middleware stack, the health and
// docs endpoints and every API group.
//
// Order matters. Recovery wraps everything, the request id precedes the
// logger, tracing precedes metrics so both see the route, and the actor
// is resolved before span attributes, rate limiting and profiling labels
// read it.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.HTTPMetrics(cfg.Metrics, log))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	engine.Use(middleware.ActorAuth(cfg.Auth))
	engine.Use(middleware.IdempotencyKey())
	engine.Use(middleware.SpanAttributes())
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	engine.Use(middleware.Profiling(cfg.Profiling))

	engine.GET("/health", h.Health.Check)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1"))
	groups := APIGroups(h)
	for _, g := range groups {
		r.Register(g)
	}
	r.Setup()

	routes := 0
	for _, g := range groups {
		routes += len(g.Routes(r.BasePath()))
	}
	log.Info("HTTP routes registered",
		zap.String("base_path", r.BasePath()),
		zap.Int("groups", len(groups)),
		zap.Int("routes", routes),
		zap.Bool("rate_limit", cfg.RateLimiter != nil),
		zap.Bool("swagger", cfg.Swagger.Enabled),
	)
	return engine, nil
}
