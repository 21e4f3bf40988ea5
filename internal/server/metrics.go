package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustee",
		Subsystem: "server",
		Name:      "ws_connections_active",
		Help:      "Currently open websocket event subscriptions.",
	})

	watchEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trustee",
		Subsystem: "server",
		Name:      "watch_events_total",
		Help:      "Storage change notifications published, by type.",
	}, []string{"type"})
)
