// Package metrics documents the Prometheus metrics of the cache-control proxy
// and serves them.
// All metrics are defined in their respective packages (resolver, options, proxy)
// to maintain modularity and avoid circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the proxy.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads the metrics registered with Registry.
var Gatherer = prometheus.DefaultGatherer

// Names lists every metric family the proxy exports.
var Names = []string{
	"cachecontrol_decisions_total",
	"cachecontrol_resolve_duration_seconds",
	"cachecontrol_options_reloads_total",
	"cachecontrol_options_load_retries_total",
	"cachecontrol_options_loaded_timestamp_seconds",
	"cachecontrol_options_store_errors_total",
	"cachecontrol_proxy_requests_total",
	"cachecontrol_proxy_request_duration_seconds",
	"cachecontrol_proxy_origin_errors_total",
}

// Handler serves Gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Resolver Metrics (pkg/resolver):
//   - cachecontrol_decisions_total{source, visibility} (Counter): Decisions by winning source
//   - cachecontrol_resolve_duration_seconds (Histogram): Duration of one resolution
//
// Option Metrics (pkg/options):
//   - cachecontrol_options_reloads_total{store, result} (Counter): Reloads by result (ok, fallback, error)
//   - cachecontrol_options_load_retries_total{store} (Counter): Retried store loads
//   - cachecontrol_options_loaded_timestamp_seconds (Gauge): Load time of the active snapshot
//   - cachecontrol_options_store_errors_total{store, operation} (Counter): Store errors (load, save, decode)
//
// Proxy Metrics (pkg/proxy):
//   - cachecontrol_proxy_requests_total{method, status} (Counter): Proxied requests by origin status
//   - cachecontrol_proxy_request_duration_seconds{method} (Histogram): Origin round trip duration
//   - cachecontrol_proxy_origin_errors_total{class} (Counter): Origin failures (timeout, canceled, network)
//
// Example Prometheus Queries:
//
//   # Share of responses cached by post type settings
//   sum(rate(cachecontrol_decisions_total{source="postType"}[5m])) /
//   sum(rate(cachecontrol_decisions_total[5m]))
//
//   # Responses sent as no-store
//   rate(cachecontrol_decisions_total{visibility="privateNoStore"}[5m])
//
//   # Options older than 10 minutes
//   time() - cachecontrol_options_loaded_timestamp_seconds > 600
//
//   # Serving last known good options
//   increase(cachecontrol_options_reloads_total{result="fallback"}[1h]) > 0
//
//   # P95 origin latency
//   histogram_quantile(0.95, rate(cachecontrol_proxy_request_duration_seconds_bucket[5m]))
