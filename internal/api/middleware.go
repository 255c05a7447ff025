package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ovotech/deployment-tracker/internal/auth"
	"github.com/ovotech/deployment-tracker/pkg/logger"
)

// SessionAuth gates interactive routes: it asks the verifier for the
// request's identity and attaches it to the context for this request
// only. Verification failure is reported to the caller, never retried;
// the caller re-authenticates via /login.
func SessionAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.Verify(r)
			if err != nil {
				if l := GetLogger(r.Context()); l != nil {
					l.Warn("authentication failed: invalid or missing session", "error", err)
				}
				respondError(w, r, http.StatusUnauthorized, "authentication required, sign in at /login")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyAuth gates machine-callable routes. A correct key marks the
// request as a trusted automation caller; it never yields an identity,
// so admin-gated sub-operations stay out of reach.
func APIKeyAuth(gate *auth.APIKeyGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Authorize(presentedKey(r)); err != nil {
				if l := GetLogger(r.Context()); l != nil {
					l.Warn("authentication failed: invalid or missing api key")
				}
				respondError(w, r, http.StatusUnauthorized, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyAutomation, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// presentedKey extracts the API key from the X-API-Key header, falling
// back to a bearer token.
func presentedKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AdminOnly guards privileged mutations. It requires a verified identity
// on the allow-list; automation callers have no identity and are always
// rejected.
func AdminOnly(policy *auth.AdminPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if !policy.IsAdmin(identity) {
				if l := GetLogger(r.Context()); l != nil {
					email := ""
					if identity != nil {
						email = identity.Email
					}
					l.Warn("authorization failed: admin required",
						"email", email,
						"automation", IsAutomation(r.Context()))
				}
				respondError(w, r, http.StatusForbidden, "admin privilege required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware adds structured logging to all requests
type LoggingMiddleware struct {
	logger *logger.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Handler wraps HTTP handlers with logging
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		if requestID == "" {
			requestID = "unknown"
		}

		reqLogger := m.logger.With(
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), contextKeyLogger, reqLogger)
		ctx = context.WithValue(ctx, contextKeyRequestID, requestID)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}

		start := time.Now()
		defer func() {
			duration := time.Since(start)

			switch {
			case wrapped.statusCode >= 500:
				reqLogger.Error("request completed",
					"status", wrapped.statusCode,
					"duration_ms", duration.Milliseconds())
			case wrapped.statusCode >= 400:
				reqLogger.Warn("request completed",
					"status", wrapped.statusCode,
					"duration_ms", duration.Milliseconds())
			default:
				reqLogger.Info("request completed",
					"status", wrapped.statusCode,
					"duration_ms", duration.Milliseconds())
			}
		}()

		next.ServeHTTP(wrapped, r.WithContext(ctx))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
