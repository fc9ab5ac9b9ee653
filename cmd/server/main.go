package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/smartlink/internal/adapter/http"
	"github.com/iho/smartlink/internal/adapter/http/handler"
	"github.com/iho/smartlink/internal/adapter/http/middleware"
	"github.com/iho/smartlink/internal/app"
	"github.com/iho/smartlink/internal/infrastructure/config"
	"github.com/iho/smartlink/internal/infrastructure/logger"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
	"github.com/iho/smartlink/internal/infrastructure/postgres"
	"github.com/iho/smartlink/internal/infrastructure/scheduler"
)

const (
	serviceName = "smartlink-server"

	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
	poolStatsInterval      = 15 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Service: serviceName})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	m := metrics.New()
	a, err := app.New(ctx, cfg, serviceName, m, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer a.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	router := httpAdapter.NewRouter(routerConfig(a, rateLimiter))

	// Background jobs
	jobs := scheduler.New(a.Locker, cfg.JobLockTTL, m, log)
	if err := jobs.Add(scheduler.JobBudgetScan, cfg.BudgetScanSchedule, scheduler.BudgetScan(a.Campaigns, log)); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule budget scan")
	}
	jobs.Start(ctx)
	defer jobs.Stop()

	go cleanupLimiters(ctx, rateLimiter, log)
	go reportPoolStats(ctx, a.Pool, m)

	server := newHTTPServer(cfg, router)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func routerConfig(a *app.App, rateLimiter *middleware.RateLimiter) httpAdapter.RouterConfig {
	rc := httpAdapter.RouterConfig{
		HealthHandler:     handler.NewHealthHandler(a.Pool, a.Redis),
		CampaignHandler:   handler.NewCampaignHandler(a.Campaigns),
		AdSlotHandler:     handler.NewAdSlotHandler(a.AdSlots, a.AdServing),
		DepositHandler:    handler.NewDepositHandler(a.Deposits, a.Logger),
		WithdrawalHandler: handler.NewWithdrawalHandler(a.Withdrawals),
		ReportHandler:     handler.NewReportHandler(a.TransactionLogs, a.Referrals, a.Analytics, a.Ledger),
		IdempotencyStore:  a.Idempotency,
		IdempotencyTTL:    a.Config.IdempotencyTTL,
		RateLimiter:       rateLimiter,
		Metrics:           a.Metrics,
		Logger:            a.Logger,
	}

	if a.Config.AuthEnabled {
		rc.TokenVerifier = a.Tokens
	} else {
		a.Logger.Warn().Msg("token authentication disabled; trusting " + middleware.UserIDHeader + " headers")
	}
	return rc
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterMaxIdle); n > 0 {
				log.Debug().Int("removed", n).Msg("pruned idle rate limiters")
			}
		}
	}
}

func reportPoolStats(ctx context.Context, pool *pgxpool.Pool, m *metrics.Metrics) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		m.DBConnections.Set(float64(pool.Stat().TotalConns()))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
