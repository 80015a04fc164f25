package options

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reloads tracks reload attempts by store and result
	Reloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachecontrol_options_reloads_total",
			Help: "Total number of option reloads by store and result",
		},
		[]string{"store", "result"}, // "ok", "fallback", "error"
	)

	// LoadRetries tracks retried loads by store
	LoadRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachecontrol_options_load_retries_total",
			Help: "Total number of retried option loads by store",
		},
		[]string{"store"},
	)

	// LoadedTimestamp is the load time of the active snapshot
	LoadedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cachecontrol_options_loaded_timestamp_seconds",
			Help: "Unix time at which the active option snapshot was loaded",
		},
	)

	// StoreErrors tracks store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachecontrol_options_store_errors_total",
			Help: "Total number of option store errors",
		},
		[]string{"store", "operation"}, // "load", "save", "decode"
	)
)
