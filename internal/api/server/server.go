package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kamilakurskaa/TrustFlow/internal/api/middleware"
	"github.com/kamilakurskaa/TrustFlow/internal/api/rest"
	"github.com/kamilakurskaa/TrustFlow/internal/auth"
	"github.com/kamilakurskaa/TrustFlow/internal/config"
	"github.com/kamilakurskaa/TrustFlow/internal/ledger"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
	"github.com/kamilakurskaa/TrustFlow/internal/store"
	"github.com/kamilakurskaa/TrustFlow/internal/workflow"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// AllowedOrigins restricts CORS; empty allows every origin
	AllowedOrigins []string
	Upload         config.UploadConfig
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	engine     *workflow.Engine
	ledger     ledger.Ledger
	issuer     *auth.TokenIssuer
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, s store.Store, engine *workflow.Engine, l ledger.Ledger, issuer *auth.TokenIssuer) *Server {
	return &Server{
		config: cfg,
		store:  s,
		engine: engine,
		ledger: l,
		issuer: issuer,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(s.config.AllowedOrigins))

	// Create REST handler
	restHandler := rest.NewHandler(s.store, s.engine, s.ledger, s.issuer, s.config.Upload)

	// Setup REST routes
	rest.SetupRoutes(router, restHandler, middleware.Auth(s.issuer, s.store))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
