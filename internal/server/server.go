package server

import (
	"context"
	"net/http"

	"tradeforce/internal/analytics"
	"tradeforce/internal/auth"
	"tradeforce/internal/config"
	"tradeforce/internal/notify"
	"tradeforce/internal/user"
	"tradeforce/internal/verification"
	"tradeforce/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service, cache *redis.Client) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	verificationRepo := verification.NewRepository(db)
	analyticsRepo := analytics.NewRepository(db)

	walletService := wallet.NewService(walletRepo, userRepo, notifier)
	verificationService := verification.NewService(verificationRepo, notifier)
	userService := user.NewService(userRepo, walletRepo, cfg.JWTSecret)
	analyticsService := analytics.NewService(analyticsRepo, cache)

	userHandler := user.NewHandler(userService)
	walletHandler := wallet.NewHandler(walletService, cfg.SupportContact)
	verificationHandler := verification.NewHandler(verificationService)
	analyticsHandler := analytics.NewHandler(analyticsService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/wallet", walletHandler.GetBalance)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
		protected.POST("/wallet/transactions", walletHandler.SubmitTransaction)
		protected.POST("/verification", verificationHandler.Submit)
		protected.GET("/verification", verificationHandler.GetMine)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/users", userHandler.ListUsers)
		admin.POST("/users/:id/active", userHandler.SetActive)
		admin.POST("/users/:id/role", userHandler.SetRole)
		admin.GET("/transactions/pending", walletHandler.ListPending)
		admin.POST("/transactions/:id/approve", walletHandler.Approve)
		admin.POST("/transactions/:id/reject", walletHandler.Reject)
		admin.POST("/transactions/:id/fail", walletHandler.Fail)
		admin.GET("/verifications/pending", verificationHandler.ListPending)
		admin.POST("/verifications/:id/review", verificationHandler.Review)
		admin.GET("/analytics", analyticsHandler.GetDashboard)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
