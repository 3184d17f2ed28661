package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
)

type RouterConfig struct {
	DefaultTenant      string
	RateLimitPerMinute int
}

func SetupRouter(h *Handlers, logger observability.Logger, rl Limiter, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(TenantMiddleware(cfg.DefaultTenant))
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		if rl != nil {
			r.Use(RateLimitMiddleware(rl, cfg.RateLimitPerMinute))
		}
		r.Use(SessionMiddleware(h.Sessions, logger))

		r.Post("/v1/auth/login", h.Login)
		r.Post("/v1/auth/register", h.Register)
		r.Post("/v1/auth/logout", h.Logout)

		r.Get("/v1/session", h.GetSession)
		r.Put("/v1/session/language", h.SetLanguage)

		r.Get("/v1/forms/{name}", h.GetForm)

		r.Post("/v1/bookings/attempts", h.StartAttempt)
		r.Get("/v1/bookings/attempts/{id}", h.GetAttempt)
		r.Post("/v1/bookings/attempts/{id}/seats/{seatID}/toggle", h.ToggleSeat)
		r.Post("/v1/bookings/attempts/{id}/submit", h.SubmitAttempt)
		r.Delete("/v1/bookings/attempts/{id}", h.AbandonAttempt)

		r.Post("/v1/passengers", h.CreatePassenger)
	})

	return r
}
