package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Decisions counts resolutions by winning source and visibility.
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachecontrol_decisions_total",
			Help: "Total number of cache-control decisions by source and visibility",
		},
		[]string{"source", "visibility"},
	)

	// ResolveDuration tracks how long one resolution takes.
	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cachecontrol_resolve_duration_seconds",
			Help:    "Duration of a single cache-control resolution",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)
