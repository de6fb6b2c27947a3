package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kamilakurskaa/TrustFlow/internal/adapter"
	"github.com/kamilakurskaa/TrustFlow/internal/api/server"
	"github.com/kamilakurskaa/TrustFlow/internal/auth"
	"github.com/kamilakurskaa/TrustFlow/internal/config"
	"github.com/kamilakurskaa/TrustFlow/internal/datagen"
	"github.com/kamilakurskaa/TrustFlow/internal/ledger"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
	"github.com/kamilakurskaa/TrustFlow/internal/store"
	"github.com/kamilakurskaa/TrustFlow/internal/workflow"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting TrustFlow API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Migrate schema
	if err := store.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Construct the ledger client; mock mode when no RPC URL is configured
	clock := adapter.NewClock()
	ledgerClient := ledger.New(ctx, cfg.Ledger, adapter.NewEthClientDialer(), clock)
	logger.Info("Ledger client ready", zap.String("mode", ledgerClient.Mode()))

	// Token issuer
	issuer := auth.NewTokenIssuer(cfg.Auth.TokenSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	// Data generation client
	datagenClient := datagen.NewClient(cfg.Datagen)
	if !datagenClient.Healthy(ctx) {
		logger.Warn("Data generation service is unreachable, scoring requests will fail until it comes up",
			zap.String("base_url", cfg.Datagen.BaseURL))
	}

	// Scoring engine with its worker pool
	engine := workflow.NewEngine(workflow.Config{
		PoolSize:        cfg.Worker.PoolSize,
		QueueSize:       cfg.Worker.QueueSize,
		ContractAddress: cfg.Ledger.ContractAddress,
	}, dataStore, ledgerClient, datagenClient, workflow.NewReferenceScorer(), clock)

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Upload:         cfg.Upload,
	}

	// Create and start server
	srv := server.New(serverConfig, dataStore, engine, ledgerClient, issuer)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down server...")

	// Shutdown server first so no new work arrives, then drain the engine
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	engine.Shutdown()

	logger.Info("API server stopped")
}
