// Package metrics defines the Prometheus collectors the client exports:
// request outcomes, cache effectiveness, and the most recently observed
// API rate-limit quota.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the collectors shared by the HTTP client and the
// response cache. Construct once and inject; a nil *Metrics disables
// recording.
type Metrics struct {
	requests           *prometheus.CounterVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	rateLimitRemaining prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "github_client_requests_total",
			Help: "API requests issued, labelled by method and outcome.",
		}, []string{"method", "outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "github_client_cache_hits_total",
			Help: "GET requests served from the response cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "github_client_cache_misses_total",
			Help: "Cacheable GET requests that went to the network.",
		}),
		rateLimitRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "github_client_rate_limit_remaining",
			Help: "Most recently observed X-RateLimit-Remaining value.",
		}),
	}

	reg.MustRegister(m.requests, m.cacheHits, m.cacheMisses, m.rateLimitRemaining)
	return m
}

// ObserveRequest records the outcome of one dispatched request.
func (m *Metrics) ObserveRequest(method, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
}

// ObserveCacheHit records a GET request served from cache.
func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// ObserveCacheMiss records a cacheable GET request that went to the network.
func (m *Metrics) ObserveCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// SetRateLimitRemaining records the latest rate-limit quota header value.
func (m *Metrics) SetRateLimitRemaining(remaining float64) {
	if m == nil {
		return
	}
	m.rateLimitRemaining.Set(remaining)
}
