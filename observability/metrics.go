package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// TokenMetrics tracks the request/callback protocol with the external token
// service.
type TokenMetrics struct {
	requests            *prometheus.CounterVec
	results             *prometheus.CounterVec
	reservationsExpired prometheus.Counter
	payouts             prometheus.Counter
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	tokenMetricsOnce sync.Once
	tokenRegistry    *TokenMetrics
)

// ModuleMetrics returns the lazily-initialised metrics registry used to record
// JSON-RPC activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "distancia",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "distancia",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "distancia",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total JSON-RPC errors segmented by method and code.",
			}, []string{"method", "code"}),
		}
		prometheus.MustRegister(moduleRegistry.requests, moduleRegistry.latency, moduleRegistry.errors)
	})
	return moduleRegistry
}

// Observe records one handled RPC call.
func (m *moduleMetrics) Observe(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveError records one failed RPC call by error code.
func (m *moduleMetrics) ObserveError(method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, code).Inc()
}

// Token returns the lazily-initialised token-protocol metrics.
func Token() *TokenMetrics {
	tokenMetricsOnce.Do(func() {
		tokenRegistry = &TokenMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "distancia",
				Subsystem: "token",
				Name:      "requests_total",
				Help:      "Token-service requests issued, segmented by operation.",
			}, []string{"op"}),
			results: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "distancia",
				Subsystem: "token",
				Name:      "results_total",
				Help:      "Token-service callbacks applied, segmented by operation and outcome.",
			}, []string{"op", "outcome"}),
			reservationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "distancia",
				Subsystem: "rewards",
				Name:      "reservations_expired_total",
				Help:      "Mint reservations released because their callback never arrived.",
			}),
			payouts: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "distancia",
				Subsystem: "conversion",
				Name:      "payouts_total",
				Help:      "Base-currency payouts released after confirmed burns.",
			}),
		}
		prometheus.MustRegister(tokenRegistry.requests, tokenRegistry.results, tokenRegistry.reservationsExpired, tokenRegistry.payouts)
	})
	return tokenRegistry
}

// RecordRequest counts an issued token-service request.
func (t *TokenMetrics) RecordRequest(op string) {
	if t == nil {
		return
	}
	t.requests.WithLabelValues(op).Inc()
}

// RecordResult counts an applied token-service callback.
func (t *TokenMetrics) RecordResult(op string, ok bool) {
	if t == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	t.results.WithLabelValues(op, outcome).Inc()
}

// RecordExpired counts released reservations.
func (t *TokenMetrics) RecordExpired(count int) {
	if t == nil || count <= 0 {
		return
	}
	t.reservationsExpired.Add(float64(count))
}

// RecordPayout counts a released payout.
func (t *TokenMetrics) RecordPayout() {
	if t == nil {
		return
	}
	t.payouts.Inc()
}
