// Package main is the entry point for the forestech inventory API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"forestech/internal/config"
	"forestech/internal/domain/movement"
	"forestech/internal/domain/stock"
	"forestech/internal/infrastructure/clients"
	v1 "forestech/internal/infrastructure/http/v1"
	"forestech/internal/infrastructure/storage/postgres"
	"forestech/internal/infrastructure/storage/postgres/movement_repo"
	"forestech/pkg/logger"
)

func main() {
	// Local development convenience; ignored when the file is absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting forestech inventory server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.PoolMaxCons
	poolCfg.MinConns = cfg.PoolMinCons

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- External reference services ---
	catalogClient := clients.NewCatalogClient(cfg.CatalogURL)
	fleetClient := clients.NewFleetClient(cfg.FleetURL)
	invoicingClient := clients.NewInvoicingClient(cfg.InvoicingURL)

	// --- Services ---
	movementRepo := movement_repo.NewMovementRepo(txManager)

	movementCfg := movement.DefaultServiceConfig()
	movementCfg.AllocationRetries = cfg.AllocationRetries
	movementService := movement.NewService(
		movementRepo,
		txManager,
		catalogClient,
		fleetClient,
		invoicingClient,
		movementCfg,
	)

	stockService := stock.NewService(movementRepo, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		MovementService: movementService,
		StockService:    stockService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
