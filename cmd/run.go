package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"sportsbook/cache"
	"sportsbook/config"
	"sportsbook/database"
	"sportsbook/events"
	"sportsbook/metrics"
	"sportsbook/repository"
	"sportsbook/server"
	"sportsbook/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	setupLogging(cfg)
	log.Info("Starting sportsbook API...")

	// Database
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Event bus with metrics subscribers
	eventBus := events.NewBus()
	metrics.Register(eventBus)

	// Unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Optional redis-backed open events cache
	var openEventsCache service.OpenEventsCache
	if cfg.RedisURL != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			// The cache is an accelerator, not a dependency
			log.WithError(err).Warn("Redis unavailable, open events cache disabled")
		} else {
			defer rdb.Close()
			openEventsCache = cache.NewOpenEventsCache(rdb)
			log.Info("Open events cache enabled")
		}
	}

	// Services
	userService := service.NewUserService(uowFactory)
	balanceService := service.NewBalanceService(uowFactory)
	eventService := service.NewEventService(uowFactory, openEventsCache)
	betService := service.NewBetService(uowFactory)
	settlementService := service.NewSettlementService(uowFactory)

	// Metrics and health sidecar
	metricsServer := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return db.Ping(ctx)
	})
	log.WithField("port", cfg.MetricsPort).Info("Metrics server started")

	// HTTP API
	tokens := server.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	api := server.New(
		userService,
		balanceService,
		eventService,
		betService,
		settlementService,
		repository.NewBalanceHistoryRepository(db),
		tokens,
	)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
		}).Info("API server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("API server shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics server shutdown failed")
	}

	log.Info("Shutdown completed")
	return nil
}

func setupLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}
}
