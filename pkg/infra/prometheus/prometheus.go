package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		5, 10, 25, // Fast responses (5-25ms)
		50, 100, 250, // Normal responses (50-250ms)
		500, 1000, 2500, // Slower responses (500ms-2.5s)
		5000, 10000, 30000, // Very slow/timeout (5s-30s)
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debatelab_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debatelab_request_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	ValidationTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debatelab_validations_total",
			Help: "Total validation calls by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: valid, invalid, blocked
	)

	ValidationLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debatelab_validation_latency_ms",
			Help:    "Validation latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"operation"},
	)

	ModerationBlocks = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debatelab_moderation_blocks_total",
			Help: "Moderation denials by deciding layer and category",
		},
		[]string{"layer", "category"},
	)

	RateLimitDenials = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debatelab_rate_limit_denials_total",
			Help: "Rate limit denials by category",
		},
		[]string{"category"},
	)

	AbuseEvents = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debatelab_abuse_events_total",
			Help: "Abuse events recorded by event type",
		},
		[]string{"event_type"},
	)

	ActiveBans = promauto.With(registerer).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "debatelab_active_bans",
			Help: "Bans created minus bans deactivated, by ban type",
		},
		[]string{"ban_type"},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

// Handler serves the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
