package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nravish/kanakam-backend/config"
	"github.com/nravish/kanakam-backend/internal/app/controller"
	"github.com/nravish/kanakam-backend/internal/app/repository"
	"github.com/nravish/kanakam-backend/internal/app/service"
	"github.com/nravish/kanakam-backend/internal/db"
	"github.com/nravish/kanakam-backend/internal/middleware"
	"github.com/nravish/kanakam-backend/internal/pricing"
	"github.com/nravish/kanakam-backend/internal/router"
	"github.com/nravish/kanakam-backend/internal/scheduler"
	"github.com/nravish/kanakam-backend/pkg/logger"
	"github.com/nravish/kanakam-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting KANAKAM Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Rate cache is best effort: pricing falls back to the database when
	// redis is unavailable.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, rate caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	rateRepo := repository.NewMetalRateRepository(db.GetDB())

	// Initialize services
	engine := pricing.NewEngine(pricing.MarginPolicy{
		MRPMargin:  cfg.Pricing.MRPMargin,
		CostMargin: cfg.Pricing.CostMargin,
	})
	rateFeed := service.NewGoldFeedClient(cfg.RateFeed.BaseURL, cfg.RateFeed.APIKey)
	rateService := service.NewMetalRateService(rateRepo, rateFeed, cfg.RateFeed.CacheTTL)
	productService := service.NewProductService(productRepo, rateService, engine, cfg.Pricing.DefaultTaxPercent)

	// Initialize controllers
	productController := controller.NewProductController(productService)
	rateController := controller.NewMetalRateController(rateService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Scheduled rate refresh
	rateScheduler := scheduler.NewMetalRateScheduler(rateService, cfg.RateFeed.RefreshCron)
	if err := rateScheduler.Start(); err != nil {
		logger.Fatal("Failed to start metal rate scheduler", err)
	}
	defer rateScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		productController,
		rateController,
		authMiddleware,
		cfg,
	)
	engineHTTP := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engineHTTP.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
