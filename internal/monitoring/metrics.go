package monitoring

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	RentalTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_status_transitions_total",
			Help: "Rental status changes by source and target status",
		},
		[]string{"from", "to"},
	)
	ApartmentReleases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apartment_releases_total",
			Help: "Apartments set back to available by the reason that released them",
		},
		[]string{"reason"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)
	LoginLockouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "login_lockouts_total",
			Help: "Identifiers locked after too many failed logins",
		},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginLocked  = "locked"
)

// InitMetrics registers the collectors with the default registry. Calling it
// twice is harmless.
func InitMetrics() {
	collectors := map[string]prometheus.Collector{
		"RentalTransitions": RentalTransitions,
		"ApartmentReleases": ApartmentReleases,
		"LoginAttempts":     LoginAttempts,
		"LoginLockouts":     LoginLockouts,
		"HTTPRequests":      HTTPRequests,
		"HTTPDuration":      HTTPDuration,
	}
	for name, c := range collectors {
		err := prometheus.Register(c)
		var already prometheus.AlreadyRegisteredError
		if err != nil && !errors.As(err, &already) {
			log.Error().Err(err).Str("metric", name).Msg("Failed to register metric")
		}
	}
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status string, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
