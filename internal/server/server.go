package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"analytics-api/internal/cache"
	"analytics-api/internal/config"
	"analytics-api/internal/handler"
	"analytics-api/internal/middleware"
	"analytics-api/internal/ratelimit"
	"analytics-api/internal/repository"
	"analytics-api/internal/service"
	"analytics-api/internal/storage"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router           *gin.Engine
	config           *config.Config
	redis            *storage.RedisClient
	postgres         *storage.Postgres
	appService       *service.AppService
	authHandler      *handler.AuthHandler
	analyticsHandler *handler.AnalyticsHandler
	adminHandler     *handler.AdminHandler
	authService      *service.AuthService
	requestLogger    *middleware.RequestLogger
	collectLimiter   ratelimit.Limiter
	queryLimiter     ratelimit.Limiter
	httpServer       *http.Server
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	appRepo := repository.NewAppRepository(postgres)
	eventRepo := repository.NewEventRepository(postgres)
	userRepo := repository.NewUserRepository(postgres)
	logRepo := repository.NewRequestLogRepository(postgres)

	responseCache := cache.New(redis, time.Duration(cfg.Cache.TTLSeconds)*time.Second)

	appService := service.NewAppService(appRepo, redis)
	analyticsService := service.NewAnalyticsService(eventRepo, responseCache)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	s := &Server{
		router:           router,
		config:           cfg,
		redis:            redis,
		postgres:         postgres,
		appService:       appService,
		authService:      authService,
		authHandler:      handler.NewAuthHandler(appService),
		analyticsHandler: handler.NewAnalyticsHandler(analyticsService),
		adminHandler:     handler.NewAdminHandler(authService, appService, logRepo),
		requestLogger:    middleware.NewRequestLogger(logRepo, 1000),
		collectLimiter: ratelimit.NewLimiter(redis, cfg.RateLimit.Algorithm,
			cfg.RateLimit.Collect.Limit,
			time.Duration(cfg.RateLimit.Collect.WindowSeconds)*time.Second),
		queryLimiter: ratelimit.NewLimiter(redis, cfg.RateLimit.Algorithm,
			cfg.RateLimit.Query.Limit,
			time.Duration(cfg.RateLimit.Query.WindowSeconds)*time.Second),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	s.router.Use(s.requestLogger.Middleware())
}

// Each analytics route runs authenticator -> rate limiter -> handler;
// the handlers consult the response cache before aggregating.
func (s *Server) setupRoutes() {
	s.router.GET("/", s.root)
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.authHandler.Register)
		auth.GET("/api-key", s.authHandler.GetAPIKey)
		auth.POST("/revoke", s.authHandler.Revoke)
	}

	analytics := api.Group("/analytics")
	analytics.Use(middleware.APIKeyAuth(s.appService))
	{
		analytics.POST("/collect", middleware.RateLimit(s.collectLimiter), s.analyticsHandler.Collect)
		analytics.GET("/event-summary", middleware.RateLimit(s.queryLimiter), s.analyticsHandler.EventSummary)
		analytics.GET("/user-stats", middleware.RateLimit(s.queryLimiter), s.analyticsHandler.UserStats)
	}

	admin := s.router.Group("/admin")
	{
		admin.POST("/auth/register", s.adminHandler.Register)
		admin.POST("/auth/login", s.adminHandler.Login)

		protected := admin.Group("")
		protected.Use(middleware.RequireAuth(s.authService))
		{
			protected.GET("/apps", s.adminHandler.ListApps)
			protected.GET("/logs", s.adminHandler.GetLogs)
		}
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Website Analytics API is running"})
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	redisHealthy := true
	if err := s.redis.Ping(ctx); err != nil {
		redisHealthy = false
		log.Printf("Redis health check failed: %v", err)
	}

	dbHealthy := true
	if err := s.postgres.Ping(ctx); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	status := "healthy"
	statusCode := http.StatusOK

	if !redisHealthy || !dbHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "analytics-api",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":    redisHealthy,
			"database": dbHealthy,
		},
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.Printf("Starting analytics API on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer s.requestLogger.Close()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}
