// Package metrics defines the Prometheus collectors exported by the HTTP
// service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "kiln"

// Metrics bundles every collector the service registers. Constructing
// against an injectable Registerer lets tests use a fresh registry.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TokensGenerated prometheus.Counter
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CacheEntries    prometheus.Gauge
}

// New builds and registers the collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		TokensGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_generated_total",
			Help:      "Tokens produced by the decode loop.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_hits_total",
			Help:      "Generations served from the response cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_misses_total",
			Help:      "Generations that required a decode.",
		}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "response_cache_entries",
			Help:      "Entries currently held by the response cache.",
		}),
	}
	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.TokensGenerated,
		m.CacheHits,
		m.CacheMisses,
		m.CacheEntries,
	)
	return m
}
