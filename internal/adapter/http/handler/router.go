package handler

import (
	"ewallet-backend/internal/adapter/http/middleware"
	redisStore "ewallet-backend/internal/adapter/storage/redis"
	"ewallet-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc          ports.AuthService
	AccountSvc       ports.AccountService
	TransferSvc      ports.TransferService
	DirectorySvc     ports.DirectoryService
	SettlementSvc    ports.SettlementService
	ReportingSvc     ports.ReportingService
	TokenSvc         ports.TokenService
	SigSvc           ports.SignatureService
	SettlementSecret string
	RateLimitStore   *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers   []ports.HealthChecker
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
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
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Settlement events (HMAC-signed by the payment processor) ---
	settlementHandler := NewSettlementHandler(deps.SettlementSvc, deps.SigSvc, deps.SettlementSecret, deps.Logger)
	settlements := v1.Group("/settlements")
	{
		settlements.POST("/events", rl("settlement"), settlementHandler.HandleEvent)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	accountHandler := NewAccountHandler(deps.AccountSvc)
	accounts := v1.Group("/accounts", jwtAuth)
	{
		accounts.GET("/me", rl("reporting"), accountHandler.GetProfile)
		accounts.PUT("/me", rl("reporting"), accountHandler.UpdateProfile)
	}

	transferHandler := NewTransferHandler(deps.TransferSvc, deps.DirectorySvc)
	transfers := v1.Group("/transfers", jwtAuth)
	{
		transfers.POST("/send", rl("transfers"), transferHandler.SendMoney)
	}

	payments := v1.Group("/payments", jwtAuth)
	{
		payments.POST("/bank-withdrawal", rl("transfers"), transferHandler.Withdraw)
		payments.POST("/tuition", rl("transfers"), transferHandler.PayTuition)
		payments.POST("/mobile-topup", rl("transfers"), transferHandler.MobileTopup)
		payments.POST("/bills", rl("transfers"), transferHandler.PayBill)
		payments.POST("/merchant", rl("transfers"), transferHandler.PayMerchant)
	}

	walletHandler := NewWalletHandler(deps.ReportingSvc)
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("/balance", rl("reporting"), walletHandler.GetBalance)
		wallet.GET("/stats", rl("reporting"), walletHandler.GetStats)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("reporting"), walletHandler.ListTransactions)
	}

	return r
}
