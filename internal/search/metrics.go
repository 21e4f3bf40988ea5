package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trustee",
		Subsystem: "search",
		Name:      "queries_total",
		Help:      "Total search queries served.",
	})

	queryDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trustee",
		Subsystem: "search",
		Name:      "query_duration_seconds",
		Help:      "Search query duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	sessionsIndexedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trustee",
		Subsystem: "search",
		Name:      "sessions_indexed_total",
		Help:      "Total sessions written to the index.",
	})

	reindexDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trustee",
		Subsystem: "search",
		Name:      "reindex_duration_seconds",
		Help:      "Full reindex pass duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)
