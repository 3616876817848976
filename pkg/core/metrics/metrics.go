// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finance_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	ProjectionsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finance_projections_computed_total",
			Help: "Projection sequences produced by the engine",
		},
	)

	ProjectionMonths = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finance_projection_horizon_months",
			Help:    "Requested projection horizons",
			Buckets: []float64{1, 3, 6, 12, 24, 36, 60, 120},
		},
	)

	ResolverOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_resolver_outcomes_total",
			Help: "Assumption resolutions by source (llm, fallback) and reason",
		},
		[]string{"source", "reason"},
	)

	CachedModels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "finance_cached_models",
			Help: "Financial models held in the in-process cache",
		},
	)

	KnowledgeReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_knowledge_reloads_total",
			Help: "Knowledge base reload attempts by result",
		},
		[]string{"result"},
	)
)
