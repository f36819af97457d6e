package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP-level metrics, recorded by the metrics middleware.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roamio_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roamio_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Provider metrics, recorded by the trip aggregator and clients.
var (
	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roamio_provider_calls_total",
		Help: "Upstream provider calls by provider and outcome (live, fallback, error).",
	}, []string{"provider", "outcome"})

	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roamio_provider_call_duration_seconds",
		Help:    "Upstream provider call latency.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"provider"})
)

// Cache metrics, recorded by the cache stores.
var (
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roamio_cache_hits_total",
		Help: "Cache lookups that returned a value, by key prefix.",
	}, []string{"prefix"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roamio_cache_misses_total",
		Help: "Cache lookups that found nothing, by key prefix.",
	}, []string{"prefix"})
)

// Provider call outcomes.
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)
