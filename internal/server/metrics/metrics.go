// Package metrics defines the Prometheus collectors of the server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeForbidden    = "forbidden"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
	OutcomeNoop         = "noop"
	OutcomeNotFound     = "not_found"
	OutcomeBadPassword  = "bad_password"
)

// AuthAttempts counts authentication outcomes, both request authentication
// through the gate and password logins.
var AuthAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "conduit_auth_attempts_total",
		Help: "Total number of authentication attempts",
	},
	[]string{"kind", "outcome"},
)

// FollowOperations counts follow and unfollow calls.
var FollowOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "conduit_follow_operations_total",
		Help: "Total number of follow graph mutations",
	},
	[]string{"operation", "outcome"},
)

// HTTPRequests counts served requests by route and status code.
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "conduit_http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "route", "status"},
)

// HTTPDuration observes request latency by route.
var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "conduit_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// RegisterMetrics registers the server collectors with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(FollowOperations)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
}

func RecordAuthAttempt(kind, outcome string) {
	AuthAttempts.WithLabelValues(kind, outcome).Inc()
}

func RecordFollowOperation(operation, outcome string) {
	FollowOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordHTTPRequest records one served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
