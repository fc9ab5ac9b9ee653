package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/smartlink/internal/adapter/http/handler"
	"github.com/iho/smartlink/internal/adapter/http/middleware"
	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
	"github.com/iho/smartlink/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	HealthHandler     *handler.HealthHandler
	CampaignHandler   *handler.CampaignHandler
	AdSlotHandler     *handler.AdSlotHandler
	DepositHandler    *handler.DepositHandler
	WithdrawalHandler *handler.WithdrawalHandler
	ReportHandler     *handler.ReportHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// TokenVerifier authenticates bearer tokens. When nil the API trusts the
	// X-User-ID and X-User-Role headers, which is only suitable for development.
	TokenVerifier middleware.TokenVerifier
	RateLimiter   *middleware.RateLimiter
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewRecovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	authenticate := middleware.DevAuth
	if cfg.TokenVerifier != nil {
		authenticate = middleware.Authenticate(cfg.TokenVerifier, cfg.Metrics)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Called by publisher pages and the payment gateway, not by account holders.
		r.Get("/ad-slots/{id}/ad", cfg.AdSlotHandler.Serve)
		r.Post("/deposit/payeer-webhook", cfg.DepositHandler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			// Idempotency middleware for mutating requests
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
			}

			// Campaigns
			r.Post("/campaigns", cfg.CampaignHandler.Create)
			r.Get("/campaigns", cfg.CampaignHandler.List)
			r.Get("/campaigns/{id}", cfg.CampaignHandler.Get)
			r.Put("/campaigns/{id}", cfg.CampaignHandler.Update)
			r.Delete("/campaigns/{id}", cfg.CampaignHandler.Delete)
			r.Post("/campaigns/{id}/budget", cfg.CampaignHandler.AllocateBudget)
			r.Post("/campaigns/{id}/budget/release", cfg.CampaignHandler.ReleaseBudget)
			r.Get("/campaigns/{id}/budget/check", cfg.CampaignHandler.CheckBudget)
			r.Post("/campaigns/{id}/activate", cfg.CampaignHandler.Activate)
			r.Post("/campaigns/{id}/deactivate", cfg.CampaignHandler.Deactivate)

			// Ad slots
			r.Get("/ad-slots/{id}", cfg.AdSlotHandler.Get)
			r.Post("/ad-slots/{id}/campaigns/{campaignID}", cfg.AdSlotHandler.AttachCampaign)
			r.Delete("/ad-slots/{id}/campaigns/{campaignID}", cfg.AdSlotHandler.DetachCampaign)

			// Balance and money movement
			r.Get("/balance", cfg.DepositHandler.Balance)
			r.Post("/deposits/payeer", cfg.DepositHandler.Initiate)
			r.Post("/withdrawals", cfg.WithdrawalHandler.Create)
			r.Get("/withdrawals", cfg.WithdrawalHandler.List)
			r.Get("/withdrawals/{id}", cfg.WithdrawalHandler.Get)

			// Reporting
			r.Get("/transactions", cfg.ReportHandler.Transactions)
			r.Get("/referrals/earnings", cfg.ReportHandler.ReferralEarnings)
			r.Get("/analytics", cfg.ReportHandler.AnalyticsEvents)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))

				r.Post("/deposits", cfg.DepositHandler.Manual)
				r.Post("/withdrawals/{id}/approve", cfg.WithdrawalHandler.Approve)
				r.Post("/withdrawals/{id}/reject", cfg.WithdrawalHandler.Reject)
				r.Post("/withdrawals/{id}/process", cfg.WithdrawalHandler.Process)
				r.Get("/ledger/consistency", cfg.ReportHandler.LedgerConsistency)
				r.Get("/analytics/related", cfg.ReportHandler.Related)
			})
		})
	})

	return r
}
