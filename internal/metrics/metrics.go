// Package metrics registers the Prometheus metrics exposed on /metrics by
// the HTTP transport. The stdio transport still records them; they are
// simply unscraped there.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolRequests counts completed tool invocations labelled by tool name
	// and outcome ("success", "invalid_input", "upstream_error",
	// "network_error").
	ToolRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gnewsmcp_tool_requests_total",
			Help: "Total number of tool invocations handled.",
		},
		[]string{"tool", "status"},
	)

	// CacheHits counts cache hits labelled by cache name and the tier that
	// served the hit ("memory", "persistent").
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gnewsmcp_cache_hits_total",
			Help: "Total cache hits by tier.",
		},
		[]string{"cache", "tier"},
	)

	// CacheMisses counts lookups that missed every configured tier.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gnewsmcp_cache_misses_total",
			Help: "Total cache misses across all tiers.",
		},
		[]string{"cache"},
	)

	// UpstreamDuration observes GNews API call latency in seconds.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gnewsmcp_upstream_duration_seconds",
			Help:    "GNews API request duration in seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"endpoint"},
	)

	// UpstreamErrors counts failed GNews API calls by endpoint and error
	// kind ("upstream", "network").
	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gnewsmcp_upstream_errors_total",
			Help: "Total failed GNews API calls by error kind.",
		},
		[]string{"endpoint", "kind"},
	)
)
