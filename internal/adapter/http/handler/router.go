package handler

import (
	"bitcoin-wallet-ledger/internal/adapter/http/middleware"
	redisStore "bitcoin-wallet-ledger/internal/adapter/storage/redis"
	"bitcoin-wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	UserSvc        ports.UserService
	LedgerSvc      ports.LedgerService
	StatsSvc       ports.StatisticsService
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

	// Health check (deep — verifies PostgreSQL + Redis)
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

	// --- Public routes (no auth) ---
	userHandler := NewUserHandler(deps.UserSvc)
	v1.POST("/users", rl("register"), userHandler.Register)

	// --- API-key-authenticated routes ---
	auth := middleware.APIKeyAuth(deps.UserSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.LedgerSvc)
	transferHandler := NewTransferHandler(deps.LedgerSvc)
	statsHandler := NewStatsHandler(deps.StatsSvc)

	wallets := v1.Group("/wallets", auth)
	{
		wallets.POST("", rl("wallets"), walletHandler.Create)
		wallets.GET("", rl("queries"), walletHandler.List)
		wallets.GET("/:address", rl("queries"), walletHandler.Get)
		wallets.POST("/:address/deposit", rl("transfers"), walletHandler.Deposit)
		wallets.POST("/:address/withdraw", rl("transfers"), walletHandler.Withdraw)
		wallets.GET("/:address/transactions", rl("queries"), walletHandler.Transactions)
	}

	transfers := v1.Group("", auth)
	{
		transfers.POST("/transfers", rl("transfers"), transferHandler.Transfer)
		transfers.GET("/transactions", rl("queries"), transferHandler.UserTransactions)
		transfers.GET("/statistics", rl("queries"), statsHandler.Statistics)
	}

	return r
}
