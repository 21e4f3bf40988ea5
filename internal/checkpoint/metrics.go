package checkpoint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	projectsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trustee",
		Subsystem: "storage",
		Name:      "projects_created_total",
		Help:      "Total project storages created.",
	})

	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trustee",
		Subsystem: "storage",
		Name:      "lookups_total",
		Help:      "Total lookups by hash, by outcome (ok, not_found, corrupt, error).",
	}, []string{"outcome"})

	touchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trustee",
		Subsystem: "storage",
		Name:      "touch_failures_total",
		Help:      "Total swallowed last-accessed update failures.",
	})

	entriesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trustee",
		Subsystem: "storage",
		Name:      "entries_skipped_total",
		Help:      "Total entries skipped during enumeration, by reason (corrupt, unreadable).",
	}, []string{"reason"})

	listDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trustee",
		Subsystem: "storage",
		Name:      "list_duration_seconds",
		Help:      "Project enumeration duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	resumesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trustee",
		Subsystem: "storage",
		Name:      "resumes_total",
		Help:      "Total resume lookups served by hash.",
	})
)
