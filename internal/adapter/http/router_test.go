package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/smartlink/internal/adapter/http/handler"
	apimiddleware "github.com/iho/smartlink/internal/adapter/http/middleware"
	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/auth"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
	"github.com/iho/smartlink/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointMountedWithMetrics(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewRouter(newRouterConfig()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected /metrics to be absent without metrics, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareReleasesFailedRequests(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	var checkedKey string
	store.CheckAndSetFunc = func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
		checkedKey = key
		return false, nil, nil
	}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	req.Header.Set(apimiddleware.UserIDHeader, "7")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if checkedKey != "7:key-123" {
		t.Fatalf("expected idempotency store to be used with a user scoped key, got %q", checkedKey)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected validation failure, got %d", rec.Code)
	}
	if _, ok := store.Stored("7:key-123"); ok {
		t.Fatal("expected key to be released after a failed request")
	}
}

func TestNewRouter_IdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	_ = store.Update(context.Background(), "7:key-123", []byte(`{"id":1}`), time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", strings.NewReader(`{"name":"x"}`))
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	req.Header.Set(apimiddleware.UserIDHeader, "7")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Header().Get(apimiddleware.IdempotencyReplayHeader) != "true" {
		t.Fatal("expected replayed response")
	}
	if rec.Body.String() != `{"id":1}` {
		t.Fatalf("unexpected replay body %q", rec.Body.String())
	}
}

func TestNewRouter_AuthenticatedRoutesRequirePrincipal(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without dev auth headers, got %d", rec.Code)
	}
}

func TestNewRouter_TokenVerifierReplacesDevAuth(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.TokenVerifier = auth.NewJWTManager("router-secret", time.Hour)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil)
	req.Header.Set(apimiddleware.UserIDHeader, "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected dev headers to be ignored when tokens are required, got %d", rec.Code)
	}
}

func TestNewRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/deposits", strings.NewReader(`{"user_id":1,"amount":"5"}`))
	req.Header.Set(apimiddleware.UserIDHeader, "7")
	req.Header.Set(apimiddleware.UserRoleHeader, string(domain.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/ad-slots/{id}/ad",
		"POST /api/v1/deposit/payeer-webhook",
		"POST /api/v1/campaigns",
		"GET /api/v1/campaigns/{id}",
		"POST /api/v1/campaigns/{id}/budget",
		"POST /api/v1/campaigns/{id}/budget/release",
		"GET /api/v1/campaigns/{id}/budget/check",
		"POST /api/v1/ad-slots/{id}/campaigns/{campaignID}",
		"GET /api/v1/balance",
		"POST /api/v1/deposits/payeer",
		"POST /api/v1/withdrawals",
		"GET /api/v1/transactions",
		"POST /api/v1/admin/deposits",
		"POST /api/v1/admin/withdrawals/{id}/approve",
		"GET /api/v1/admin/ledger/consistency",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:     handler.NewHealthHandler(nil, nil),
		CampaignHandler:   handler.NewCampaignHandler(nil),
		AdSlotHandler:     handler.NewAdSlotHandler(nil, nil),
		DepositHandler:    handler.NewDepositHandler(nil, zerolog.Nop()),
		WithdrawalHandler: handler.NewWithdrawalHandler(nil),
		ReportHandler:     handler.NewReportHandler(nil, nil, nil, nil),
		IdempotencyTTL:    time.Minute,
		Logger:            zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
