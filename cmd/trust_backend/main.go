package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/trust_desk_app/internal/adapters/database/memory"
	"github.com/SscSPs/trust_desk_app/internal/adapters/database/pgsql"
	"github.com/SscSPs/trust_desk_app/internal/adapters/database/seed"
	"github.com/SscSPs/trust_desk_app/internal/adapters/extraction/openai"
	portsrepo "github.com/SscSPs/trust_desk_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/core/services"
	"github.com/SscSPs/trust_desk_app/internal/handlers"
	"github.com/SscSPs/trust_desk_app/internal/middleware"
	"github.com/SscSPs/trust_desk_app/internal/platform/config"
	"github.com/SscSPs/trust_desk_app/internal/platform/metrics"
	"github.com/SscSPs/trust_desk_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

const shutdownTimeout = 10 * time.Second

// @title Trust Desk API
// @version 1.0
// @description Backend for the trust officer dashboard: ledger, distribution requests, policy checks and approvals.

// @host localhost:8080
// @BasePath /
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStorage, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	extractor := openai.New(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel,
		openai.WithTimeout(cfg.AITimeout),
		openai.WithRules(services.NewPolicyEngine(cfg).Rules()),
	)

	container := services.NewServiceContainer(cfg, services.Dependencies{
		Repos:     repos,
		Extractor: extractor,
		Seed:      seed.Load,
		Metrics:   appMetrics,
	})

	if err := seedIfEmpty(ctx, repos, container, logger); err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, metrics, recovery, CORS)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		middleware.MetricsMiddleware(appMetrics),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:  []string{cfg.FrontendBaseURL},
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			MaxAge:        12 * time.Hour,
		}),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	rateLimiter := limiter.New(limitermemory.NewStore(), cfg.RateLimit)
	handlers.RegisterRoutes(r, cfg, container, rateLimiter,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", string(cfg.StorageDriver)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to run: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// setupStorage builds the repositories for the configured driver. The
// returned func releases whatever the driver holds open.
func setupStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("initialize database pool: %w", err)
		}
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			database.ClosePgxPool(dbPool, logger)
			return portsrepo.RepositoryProvider{}, nil, err
		}
		return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool, logger) }, nil

	default:
		store := memory.NewStore(memory.WithSnapshotDir(cfg.DataDir), memory.WithLogger(logger))
		loaded, err := store.Load()
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("load snapshot from %s: %w", cfg.DataDir, err)
		}
		if loaded {
			logger.Info("Restored in-memory store from snapshot", slog.String("data_dir", cfg.DataDir))
		}
		return portsrepo.RepositoryProvider{LedgerRepo: store, RequestRepo: store}, func() {}, nil
	}
}

// seedIfEmpty loads the seed data on first start.
func seedIfEmpty(ctx context.Context, repos portsrepo.RepositoryProvider, container *portssvc.ServiceContainer, logger *slog.Logger) error {
	entries, err := repos.LedgerRepo.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("inspect ledger: %w", err)
	}
	requests, err := repos.RequestRepo.ListRequests(ctx)
	if err != nil {
		return fmt.Errorf("inspect requests: %w", err)
	}
	if len(entries) > 0 || len(requests) > 0 {
		return nil
	}

	logger.Info("Store is empty, loading seed data")
	if err := container.Data.Reset(middleware.WithLogger(ctx, logger)); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	return nil
}
