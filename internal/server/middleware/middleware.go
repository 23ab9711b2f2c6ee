// Package middleware provides HTTP middleware for logging, panic recovery,
// and tenant resolution for sitebuilder servers.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/tenant"
)

// TenantHeader carries the tenant identifier on every editor API request.
const TenantHeader = "X-Tenant-ID"

// Chain returns a middleware wrapper that applies logging and panic recovery around a handler.
func Chain(logger *slog.Logger, adapter *ferrors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return loggingMiddleware(logger, panicRecoveryMiddleware(logger, adapter, next))
	}
}

// Tenant resolves the tenant header against the store and attaches the
// tenant to the request context. Requests without a valid tenant are
// rejected before reaching handlers.
func Tenant(store tenant.Store, adapter *ferrors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(TenantHeader)
			if id == "" {
				adapter.WriteErrorResponse(w, r, ferrors.ValidationError("missing tenant header").
					WithContext("header", TenantHeader).Build())
				return
			}
			t, err := store.GetTenant(id)
			if err != nil {
				adapter.WriteErrorResponse(w, r, ferrors.WrapError(err, ferrors.CategoryNotFound, "unknown tenant").
					WithContext("tenant", id).Build())
				return
			}
			next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), t)))
		})
	}
}

// loggingMiddleware logs method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start)
		logger.Info("HTTP request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(wrapped.statusCode),
			slog.Duration("duration", duration))
	})
}

// panicRecoveryMiddleware recovers from panics and writes a structured error response.
func panicRecoveryMiddleware(logger *slog.Logger, adapter *ferrors.HTTPErrorAdapter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("HTTP handler panic",
					"error", err,
					logfields.Path(r.URL.Path),
					logfields.Method(r.Method))

				panicErr := ferrors.InternalError("internal server error").
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()

				adapter.WriteErrorResponse(w, r, panicErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures status codes for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
