package handler

import (
	"cross-asset-gateway/internal/adapter/http/middleware"
	redisStore "cross-asset-gateway/internal/adapter/storage/redis"
	"cross-asset-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ValuationSvc   ports.ValuationService
	RouteSvc       ports.RouteService
	PayoutSvc      ports.PayoutService
	PaymentSvc     ports.PaymentService
	EscrowSvc      ports.EscrowService
	QuerySvc       ports.QueryService
	ReportingSvc   ports.ReportingService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis when configured)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Asset configuration and pricing ---
	assetHandler := NewAssetHandler(deps.ValuationSvc)
	assets := v1.Group("/assets")
	{
		assets.PUT("", rl("admin"), assetHandler.SetAsset)
		assets.GET("", rl("admin"), assetHandler.ListAssets)
		assets.GET("/:address", rl("admin"), assetHandler.GetAsset)
		assets.DELETE("/:address", rl("admin"), assetHandler.RemoveAsset)
		assets.GET("/:address/price", rl("reporting"), assetHandler.GetPrice)
	}

	// --- Swap route configuration ---
	routeHandler := NewRouteHandler(deps.RouteSvc)
	paths := v1.Group("/paths")
	{
		paths.PUT("/to-reference", rl("admin"), routeHandler.SetPathToReference)
		paths.PUT("/from-reference", rl("admin"), routeHandler.SetPathFromReference)
		paths.GET("/:direction/:address", rl("admin"), routeHandler.GetPath)
	}
	v1.GET("/routes", rl("admin"), routeHandler.ComposeRoute)

	// --- Merchant payout configuration ---
	merchantHandler := NewMerchantHandler(deps.PayoutSvc)
	merchants := v1.Group("/merchants")
	{
		merchants.PUT("", rl("admin"), merchantHandler.SetConfig)
		merchants.GET("/:address", rl("admin"), merchantHandler.GetConfig)
		merchants.PUT("/:address/floors", rl("admin"), merchantHandler.SetItemFloor)
		merchants.GET("/:address/floors/:item_id", rl("admin"), merchantHandler.GetItemFloor)
	}

	// --- Settlement flows ---
	paymentHandler := NewPaymentHandler(deps.PaymentSvc, deps.EscrowSvc)
	payments := v1.Group("/payments")
	{
		payments.POST("", rl("payments"), paymentHandler.ProcessImmediate)
		payments.POST("/escrow", rl("payments"), paymentHandler.AuthorizeEscrow)
		payments.POST("/escrow/settle", rl("payments"), paymentHandler.SettleEscrow)
		payments.GET("/escrow/:hash", rl("payments"), paymentHandler.GetEscrowNonce)
	}

	// --- Query payment lifecycle ---
	queryHandler := NewQueryHandler(deps.QuerySvc)
	queries := v1.Group("/queries")
	{
		queries.POST("", rl("queries"), queryHandler.Submit)
		queries.GET("/:hash", rl("queries"), queryHandler.Get)
		queries.POST("/:hash/cancel", rl("queries"), queryHandler.Cancel)
		queries.POST("/:hash/fulfill", rl("queries"), queryHandler.Fulfill)
	}

	// --- Journal / reporting ---
	reportingHandler := NewReportingHandler(deps.ReportingSvc)
	settlements := v1.Group("/settlements")
	{
		settlements.GET("", rl("reporting"), reportingHandler.ListSettlements)
		settlements.GET("/:id", rl("reporting"), reportingHandler.GetSettlement)
	}
	v1.GET("/stats", rl("reporting"), reportingHandler.GetStats)

	return r
}
