package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authconsole"

var (
	// Auth outcomes

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts, by outcome.",
	}, []string{"outcome"})

	ThrottledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_throttled_total",
		Help:      "Requests rejected by a per-client rate limiter, by route.",
	}, []string{"route"})

	ResetRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_requests_total",
		Help:      "Password reset link requests, by outcome.",
	}, []string{"outcome"})

	ResetConfirmsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_confirms_total",
		Help:      "Password reset confirmations, by outcome.",
	}, []string{"outcome"})

	LogoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Logout calls.",
	})

	// Sessions

	SessionsIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Sessions created by successful logins.",
	})

	SessionsRevokedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Sessions removed before expiry, by reason.",
	}, []string{"reason"})

	GuardDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Route guard decisions on protected paths.",
	}, []string{"decision", "reason"})

	// Janitor

	PurgedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "janitor_purged_total",
		Help:      "Expired records deleted by the janitor.",
	}, []string{"kind"})

	PurgeCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "janitor_cycle_duration_seconds",
		Help:      "Time taken for one purge cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Register adds every collector to the default registry. Call once per process.
func Register() {
	prometheus.MustRegister(
		LoginsTotal,
		ThrottledTotal,
		ResetRequestsTotal,
		ResetConfirmsTotal,
		LogoutsTotal,
		SessionsIssuedTotal,
		SessionsRevokedTotal,
		GuardDecisionsTotal,
		PurgedTotal,
		PurgeCycleDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// Prober is what the metrics server needs from the health checker.
type Prober interface {
	Handler(probe string) http.Handler
}

// NewServer serves /metrics and, when p is non-nil, /healthz and /readyz.
func NewServer(addr string, p Prober) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if p != nil {
		mux.Handle("/healthz", p.Handler("liveness"))
		mux.Handle("/readyz", p.Handler("readiness"))
	}
	return &http.Server{Addr: addr, Handler: mux}
}
