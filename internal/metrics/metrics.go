package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SearchRequests counts search calls by cache outcome
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search requests",
		},
		[]string{"cache"},
	)

	// SearchDuration measures search latency
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "search_duration_seconds",
			Help: "Search request duration in seconds",
		},
	)

	// SimilarityComputations counts related-list recomputations
	SimilarityComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_computations_total",
			Help: "Total number of related-quest recomputations",
		},
		[]string{"status"},
	)

	// StandardizationMatches counts standardization outcomes
	StandardizationMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "standardization_matches_total",
			Help: "Total number of game system standardization outcomes",
		},
		[]string{"match_type", "status"},
	)

	// EventsProcessed counts stream events by type and outcome
	EventsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_events_processed_total",
			Help: "Total number of quest change events processed",
		},
		[]string{"type", "status"},
	)
)

// InitPrometheus registers all metrics with the default registry
func InitPrometheus() {
	prometheus.MustRegister(SearchRequests)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SimilarityComputations)
	prometheus.MustRegister(StandardizationMatches)
	prometheus.MustRegister(EventsProcessed)
}
