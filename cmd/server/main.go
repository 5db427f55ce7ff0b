package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wotmaps-api/internal/auth"
	"wotmaps-api/internal/cache"
	"wotmaps-api/internal/config"
	"wotmaps-api/internal/database"
	"wotmaps-api/internal/handlers"
	"wotmaps-api/internal/metrics"
	"wotmaps-api/internal/openid"
	"wotmaps-api/internal/region"
	"wotmaps-api/internal/wotapi"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title       WoT Current Maps API
// @version     1.0
// @description Reports and queries the maps currently played on World of Tanks servers.
// @BasePath    /
func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	logger.Info("Starting maps service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	// Initialize database
	ctx := context.Background()
	repo, err := database.NewRepository(ctx, cfg.DatabaseURL, logger, cfg.DBConnectAttempts, cfg.DBConnectInterval)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	if err := database.RunMigrations(ctx, repo.DB(), logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize cache
	cacheClient, err := cache.NewCache(ctx, cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer cacheClient.Close()

	tokens, err := auth.NewTokenService(cfg.ServerSecret, cfg.TokenExpiry)
	if err != nil {
		logger.Fatal("Failed to initialize token service", zap.Error(err))
	}

	regions := region.DefaultRegistry()
	upstream := &http.Client{Timeout: cfg.UpstreamTimeout}

	var accountOpts []wotapi.Option
	if cfg.AccountAPIRate > 0 {
		accountOpts = append(accountOpts, wotapi.WithRequestRate(float64(cfg.AccountAPIRate), cfg.AccountAPIRate))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		regions,
		openid.NewClient(upstream, recorder, logger),
		wotapi.NewClient(regions, upstream, recorder, logger, accountOpts...),
		cacheClient,
		tokens,
		handlers.AuthSettings{
			AppID:           wotapi.AppID(cfg.AppID),
			RequiredBattles: cfg.RequiredBattles,
			NonceTTL:        cfg.NonceTTL,
		},
		recorder,
		logger,
	)
	mapsHandler := handlers.NewMapsHandler(repo, cfg.ActivityWindow, recorder, logger)
	healthHandler := handlers.NewHealthHandler(repo, cacheClient, logger)

	router := SetupRouter(RouterConfig{
		Auth:           authHandler,
		Maps:           mapsHandler,
		Health:         healthHandler,
		Tokens:         tokens,
		Limiter:        cacheClient,
		Metrics:        registry,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRateLimit:  cfg.AuthRateLimit,
	}, logger)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + 2*cfg.UpstreamTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
