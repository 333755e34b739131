package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/raksha-safety/raksha-backend/config"
	apimw "github.com/raksha-safety/raksha-backend/internal/api/http/middleware"
	"github.com/raksha-safety/raksha-backend/internal/auth"
	"github.com/raksha-safety/raksha-backend/internal/bootstrap"
	"github.com/raksha-safety/raksha-backend/internal/logging"
	"github.com/raksha-safety/raksha-backend/internal/metrics"
	"github.com/raksha-safety/raksha-backend/internal/outbound"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(&cfg.App)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase", zap.Error(err))
	}
	identity, err := auth.NewFirebaseIdentity(ctx, app)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase Auth", zap.Error(err))
	}

	store, err := bootstrap.OpenStore(ctx, cfg, app)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Store close failed", zap.Error(err))
		}
	}()
	logger.Info("Store ready", zap.String("backend", cfg.Store.Backend))

	var limiter *apimw.IPRateLimiter
	if cfg.RateLimit.AuthRPS > 0 {
		limiter = apimw.NewIPRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		Logger:         logger,
		Metrics:        metrics.New(prometheus.DefaultRegisterer),
		Gatherer:       prometheus.DefaultGatherer,
		Store:          store,
		Identity:       identity,
		Policy:         outbound.NewPolicy(cfg.Store.OutboundTimeout),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthLimiter:    limiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", server.Addr), zap.String("env", cfg.App.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
