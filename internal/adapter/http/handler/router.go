package handler

import (
	"receipt-generator/internal/adapter/http/middleware"
	"receipt-generator/internal/core/ports"
	"receipt-generator/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ReceiptSvc     ports.ReceiptService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	RateLimit      middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer // nil = no /metrics endpoint
	Version        string
	RendererName   string
	MaxBodyBytes   int64
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
// The gin mode is chosen by the caller.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 64 << 10
	}
	r.Use(middleware.MaxBodySize(maxBody))

	// Rate limiting applies to the endpoints that consume identifiers.
	rl := func(c *gin.Context) { c.Next() }
	if deps.RateLimitStore != nil && deps.RateLimit.Limit > 0 {
		rl = middleware.RateLimiter(deps.RateLimitStore, "generate", deps.RateLimit, deps.Metrics, deps.Logger)
	}

	receipts := NewReceiptHandler(deps.ReceiptSvc)
	health := HealthCheck(deps.Version, deps.HealthCheckers...)

	r.GET("/", Info(deps.Version, deps.RendererName))
	r.GET("/health", health)
	r.POST("/generate", rl, receipts.Generate)
	r.POST("/preview", rl, receipts.Preview)
	r.POST("/validate", receipts.Validate)

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.POST("/generate", rl, receipts.Generate)
		api.POST("/preview", rl, receipts.Preview)
		api.POST("/validate", receipts.Validate)
	}

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	return r
}
