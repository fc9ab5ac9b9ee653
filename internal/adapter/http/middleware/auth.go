package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

// Headers trusted by DevAuth when token auth is disabled.
const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// TokenVerifier validates a bearer token and returns its principal.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// Authenticate requires a valid bearer token and stores its principal in the request context.
func Authenticate(verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, reason := bearerToken(r)
			if reason != "" {
				observeAuth(m, reason)
				writeJSONError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			p, err := verifier.Verify(token)
			if err != nil {
				reason = "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
				observeAuth(m, reason)
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			observeAuth(m, "")
			next.ServeHTTP(w, r.WithContext(domain.ContextWithPrincipal(r.Context(), p)))
		})
	}
}

// DevAuth trusts X-User-ID and X-User-Role. It is only mounted when token auth is disabled.
func DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get(UserIDHeader), 10, 64)
		if err != nil || id <= 0 {
			writeJSONError(w, http.StatusUnauthorized, "missing "+UserIDHeader+" header")
			return
		}

		role := domain.Role(r.Header.Get(UserRoleHeader))
		if role == "" {
			role = domain.RoleUser
		}
		if !role.IsValid() {
			writeJSONError(w, http.StatusUnauthorized, "invalid "+UserRoleHeader+" header")
			return
		}

		p := domain.Principal{UserID: id, Role: role}
		next.ServeHTTP(w, r.WithContext(domain.ContextWithPrincipal(r.Context(), p)))
	})
}

// RequireRole rejects callers whose principal does not carry role.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := domain.PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
				return
			}
			if p.Role != role {
				writeJSONError(w, http.StatusForbidden, domain.ErrInsufficientRole.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing_header"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", "malformed_header"
	}
	return parts[1], ""
}

func observeAuth(m *metrics.Metrics, failure string) {
	if m == nil {
		return
	}
	if failure == "" {
		m.AuthAttempts.WithLabelValues("success").Inc()
		return
	}
	m.AuthAttempts.WithLabelValues("failure").Inc()
	m.AuthFailures.WithLabelValues(failure).Inc()
}
