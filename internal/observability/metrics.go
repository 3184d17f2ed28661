package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bff_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bff_backend_request_seconds",
			Help:    "Duration of calls to the airline backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "code"},
	)

	SeatToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bff_seat_toggles_total",
			Help: "Seat selection toggles by result",
		},
		[]string{"result"},
	)

	BookingSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bff_booking_submissions_total",
			Help: "Booking submissions by outcome",
		},
		[]string{"outcome"},
	)

	StaleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bff_stale_responses_total",
			Help: "Backend responses dropped because the booking attempt was no longer current",
		},
	)

	RateLimitExceeded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bff_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)

	EventPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bff_event_publish_failures_total",
			Help: "Domain events that could not be published",
		},
	)
)

var registerOnce sync.Once

func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			BackendRequestDuration,
			SeatToggles,
			BookingSubmissions,
			StaleResponses,
			RateLimitExceeded,
			EventPublishFailures,
		)
	})
}
