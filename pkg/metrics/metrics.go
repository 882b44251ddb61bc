// Package metrics exposes the Prometheus registry shared by the gallery
// packages. Metrics are declared next to the code that records them (client,
// cache, controller) and registered through promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry all gallery metrics land in.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the counterpart of Registry used for exposition.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics exposition handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - gallery_cache_hits_total{layer="redis"} (Counter): Revalidation store hits
//   - gallery_cache_misses_total (Counter): Revalidation store misses
//   - gallery_cache_size_bytes{layer="redis"} (Gauge): Size of the last stored body
//   - gallery_api_304_responses_total (Counter): 304 Not Modified responses served from the store
//   - gallery_conditional_requests_total (Counter): Requests sent with If-None-Match
//   - gallery_cache_errors_total{operation} (Counter): Store operation errors
//
// Request Metrics (pkg/client):
//   - gallery_api_requests_total{endpoint, status} (Counter): Upstream requests by endpoint and HTTP status
//   - gallery_api_request_duration_seconds{endpoint} (Histogram): Upstream request duration
//   - gallery_api_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Controller Metrics (pkg/controller):
//   - gallery_controller_generations_total (Counter): Result-set generations started
//   - gallery_controller_stale_results_total{stage} (Counter): Responses discarded because a newer generation exists
//   - gallery_controller_fetch_errors_total{stage} (Counter): Failed primary and episode fetches
//   - gallery_episode_resolutions_total{outcome} (Counter): Episode lookups by outcome
//
// Example Prometheus Queries:
//
//   # Revalidation hit rate
//   rate(gallery_api_304_responses_total[5m]) / rate(gallery_conditional_requests_total[5m])
//
//   # Share of superseded fetches
//   rate(gallery_controller_stale_results_total{stage="results"}[5m]) /
//   rate(gallery_controller_generations_total[5m])
//
//   # P95 upstream latency
//   histogram_quantile(0.95, rate(gallery_api_request_duration_seconds_bucket[5m]))
