package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodonline-api/accounts"
	"foodonline-api/config"
	"foodonline-api/handlers"
	"foodonline-api/logger"
	"foodonline-api/mailer"
	"foodonline-api/metrics"
	"foodonline-api/middleware"
	"foodonline-api/orders"
	"foodonline-api/routes"
	"foodonline-api/session"
	"foodonline-api/tokens"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		bootLog := logger.New("info", "debug")
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}
	gin.SetMode(cfg.GinMode)
	log := logger.New(cfg.LogLevel, cfg.GinMode)

	if cfg.UsingDevSecret() {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
	}

	db, err := config.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to open database")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("Database connected and migrated")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to redis")
	}
	cancel()
	defer rdb.Close()

	sessions := session.NewStore(rdb)
	m := metrics.New()
	h := handlers.New(handlers.Deps{
		DB:       db,
		Config:   cfg,
		Accounts: accounts.NewStore(db, cfg.BcryptCost, log, time.Now),
		Tokens:   tokens.NewService(cfg.JWTSecret, cfg.TokenTTL, time.Now),
		Sessions: sessions,
		Ledger:   orders.NewLedger(db, time.Now),
		Mailer:   mailer.New(cfg.Email, log),
		Metrics:  m,
		Logger:   log,
		Now:      time.Now,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(), m.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "FoodOnline Marketplace API",
			"version": "1.0.0",
		})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Welcome to the FoodOnline Marketplace API",
			"marketplace": "/api/marketplace",
			"health":      "/health",
			"roles":       []string{"customer", "vendor"},
		})
	})
	r.GET("/metrics", m.Handler())
	r.Static("/media", cfg.MediaRoot)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	routes.SetupRoutes(r, h, middleware.AuthRequired(cfg.JWTSecret, sessions, log), limiter.Middleware())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	ctx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
