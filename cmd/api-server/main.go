package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"bookhub/database"
	"bookhub/internal/api/handler"
	"bookhub/internal/api/middleware"
	"bookhub/internal/api/repository"
	"bookhub/internal/api/service"
	"bookhub/internal/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		logger.Info("Connected to the session store")
	} else {
		logger.Warn("REDIS_URL not set; logout will not revoke session tokens")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	sessionStore := repository.NewSessionStore(redisClient)

	// Services
	authService := service.NewAuthService(userRepo, sessionStore, cfg)
	bookService := service.NewBookService(bookRepo)
	loanService := service.NewLoanService(loanRepo, bookRepo, cfg.LoanPeriod)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.SessionTTL, cfg.IsProduction(), cfg.StorageTimeout)
	bookHandler := handler.NewBookHandler(bookService, cfg.StorageTimeout)
	loanHandler := handler.NewLoanHandler(loanService, cfg.StorageTimeout)
	adminHandler := handler.NewAdminHandler(loanService, authService, cfg.StorageTimeout)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authn := middleware.SessionAuth(authService)
	admin := middleware.RequireAdmin()

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.RateLimit(rate.Limit(5), 10)) // 5 req/s with burst of 10 per IP
		authHandler.RegisterRoutes(authGroup)

		bookHandler.RegisterRoutes(api, authn, admin)
		loanHandler.RegisterRoutes(api, authn)
		adminHandler.RegisterRoutes(api.Group("/admin"), authn, admin)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
