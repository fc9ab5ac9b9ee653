package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Campaign budget metrics
	BudgetAllocations    prometheus.Counter
	BudgetReleases       prometheus.Counter
	BudgetAmount         *prometheus.HistogramVec
	CampaignsDeactivated prometheus.Counter
	BudgetWarnings       prometheus.Counter

	// Ad serving metrics
	ImpressionsCharged prometheus.Counter
	ImpressionCost     prometheus.Histogram
	AdRequestFailures  *prometheus.CounterVec

	// Financial metrics
	WithdrawalTransitions *prometheus.CounterVec
	DepositsCompleted     *prometheus.CounterVec
	WebhookRejections     *prometheus.CounterVec
	ReferralEarnings      prometheus.Counter

	// Operation metrics
	OperationDuration *prometheus.HistogramVec
	Notifications     *prometheus.CounterVec
	ScheduledRuns     *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Database metrics
	DBConnections prometheus.Gauge
	DBRetries     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all Prometheus metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		// Campaign budget metrics
		BudgetAllocations: f.NewCounter(prometheus.CounterOpts{
			Name: "smartlink_budget_allocations_total",
			Help: "Total number of budget allocations",
		}),
		BudgetReleases: f.NewCounter(prometheus.CounterOpts{
			Name: "smartlink_budget_releases_total",
			Help: "Total number of budget releases that returned funds",
		}),
		BudgetAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartlink_budget_amount",
				Help:    "Allocated and released budget amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
			},
			[]string{"operation"},
		),
		CampaignsDeactivated: f.NewCounter(prometheus.CounterOpts{
			Name: "smartlink_campaigns_deactivated_total",
			Help: "Total number of campaigns deactivated by the budget scan",
		}),
		BudgetWarnings: f.NewCounter(prometheus.CounterOpts{
			Name: "smartlink_budget_warnings_total",
			Help: "Total number of low budget warnings sent",
		}),

		// Ad serving metrics
		ImpressionsCharged: f.NewCounter(prometheus.CounterOpts{
			Name: "smartlink_impressions_charged_total",
			Help: "Total number of charged impressions",
		}),
		ImpressionCost: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartlink_impression_cost",
			Help:    "Price charged per impression",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		}),
		AdRequestFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_ad_request_failures_total",
				Help: "Total number of ad requests that served nothing, by reason",
			},
			[]string{"reason"},
		),

		// Financial metrics
		WithdrawalTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_withdrawal_transitions_total",
				Help: "Total withdrawal state transitions by resulting status",
			},
			[]string{"status"},
		),
		DepositsCompleted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_deposits_completed_total",
				Help: "Total completed deposits by source",
			},
			[]string{"source"},
		),
		WebhookRejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_webhook_rejections_total",
				Help: "Total rejected payment webhooks by reason",
			},
			[]string{"reason"},
		),
		ReferralEarnings: f.NewCounter(prometheus.CounterOpts{
			Name: "smartlink_referral_earnings_total",
			Help: "Total referral earnings distributed",
		}),

		// Operation metrics
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartlink_operation_duration_seconds",
				Help:    "Duration of money-moving operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_notifications_total",
				Help: "Total notifications by kind and status",
			},
			[]string{"kind", "status"},
		),
		ScheduledRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_scheduled_runs_total",
				Help: "Total scheduled job runs by job and status",
			},
			[]string{"job", "status"},
		),

		// API metrics
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartlink_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "smartlink_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Database metrics
		DBConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "smartlink_db_connections",
			Help: "Number of open database connections",
		}),
		DBRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_db_retries_total",
				Help: "Total units of work retried after a transient Postgres error, by SQLSTATE",
			},
			[]string{"code"},
		),

		// Authentication metrics
		AuthAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_auth_failures_total",
				Help: "Total authentication failures by reason",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_rate_limit_hits_total",
				Help: "Total requests rejected by the rate limiter",
			},
			[]string{"method"},
		),
	}
}
