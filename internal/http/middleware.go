package http

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/session"
	"github.com/robertarktes/airline-booking-bff/internal/tenant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const (
	sessionCookie = "sid"
	sessionHeader = "X-Session-ID"
)

func RequestIDMiddleware(next http.Handler) http.Handler {
	return middleware.RequestID(next)
}

// TenantMiddleware resolves the tenant from the Host the request was sent to.
func TenantMiddleware(defaultTenant string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := tenant.ResolveWithDefault(r.Host, defaultTenant)
			next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), id)))
		})
	}
}

func LoggerMiddleware(logger observability.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := logger.
				WithField("request_id", middleware.GetReqID(r.Context())).
				WithField("tenant", tenant.FromContext(r.Context()))
			ctx := observability.ContextWithLogger(r.Context(), entry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		tracer := otel.Tracer("http")
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.url", r.URL.String()),
			attribute.String("tenant.id", tenant.FromContext(ctx)),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RequestsTotal.WithLabelValues(route, strconv.Itoa(status), r.Method).Inc()
	})
}

type Limiter interface {
	Allow(ctx context.Context, key string, rate int, period time.Duration) bool
}

func RateLimitMiddleware(rl Limiter, perMinute int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := tenant.FromContext(r.Context()) + ":" + clientIP(r)
			if !rl.Allow(r.Context(), key, perMinute, time.Minute) {
				observability.RateLimitExceeded.Inc()
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionMiddleware attaches the caller's session. Requests without a valid
// session for the resolved tenant proceed with an anonymous one.
func SessionMiddleware(store session.Store, logger observability.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := tenant.FromContext(r.Context())
			sess := session.Anonymous(tenantID)

			if id := sessionID(r); id != "" {
				stored, err := store.Get(r.Context(), id)
				switch {
				case err == nil && stored.TenantID == tenantID:
					sess = stored
				case err == nil, errors.Is(err, session.ErrNotFound):
				default:
					observability.LoggerFrom(r.Context(), logger).WithError(err).Error("session store unavailable")
					writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "session store unavailable"})
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(sessionHeader)
}

// clientIP expects middleware.RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func currentSession(r *http.Request) session.Session {
	if s, ok := session.FromContext(r.Context()); ok {
		return s
	}
	return session.Anonymous(tenant.FromContext(r.Context()))
}
