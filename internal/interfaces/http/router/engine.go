package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sisl/eshop/internal/infrastructure/config"
	"github.com/sisl/eshop/internal/infrastructure/logger"
	"github.com/sisl/eshop/internal/interfaces/http/dto"
	"github.com/sisl/eshop/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Paths outside the versioned API
const (
	HealthPath = "/health"
)

// EngineConfig carries what the gin engine needs besides the handlers
type EngineConfig struct {
	Env         string
	ServiceName string
	HTTP        config.HTTPConfig
	// MediaRoot is served under MediaURL when set (local storage backend only)
	MediaRoot string
	MediaURL  string
	// Tracing enables otelgin spans
	Tracing bool
	// Meter records HTTP metrics when non-nil
	Meter       metric.Meter
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the middleware stack, the health probe,
// static media and every API route.
//
// Middleware order:
//  1. RequestID, so every later layer can log it
//  2. Recovery and the request logger
//  3. security headers and CORS
//  4. body size and rate limits
//  5. tracing, metrics and the request deadline
func NewEngine(cfg EngineConfig, log *zap.Logger, h Handlers, auth Auth) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	skipPrefixes := []string{HealthPath}
	if cfg.MediaURL != "" {
		skipPrefixes = append(skipPrefixes, cfg.MediaURL)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, skipPrefixes...))
	engine.Use(middleware.SecureWithConfig(middleware.SecurityConfigFor(cfg.Env)))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
		SkipPaths:   []string{HealthPath},
	})...)
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	}
	engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))

	engine.GET(HealthPath, h.System.Health)
	if cfg.MediaRoot != "" && cfg.MediaURL != "" {
		engine.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", c.GetString(middleware.RequestIDKey)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBadRequest, "Method not allowed", c.GetString(middleware.RequestIDKey)))
	})

	Mount(NewRouter(engine), h, auth)
	return engine
}
