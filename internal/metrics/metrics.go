// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the HTTP server and search service metrics
type Collector struct {
	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	remoteCalls     *prometheus.CounterVec
	remoteLatency   *prometheus.HistogramVec
	searchFallbacks prometheus.Counter
}

// NewCollector creates a Collector and registers it on reg. service labels
// every metric with the binary that serves it.
func NewCollector(reg prometheus.Registerer, service string) *Collector {
	constLabels := prometheus.Labels{"service": service}
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hadith_http_requests_total",
			Help:        "HTTP requests by route, method and status code",
			ConstLabels: constLabels,
		}, []string{"route", "method", "status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "hadith_http_request_duration_seconds",
			Help:        "HTTP request latency in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"route", "method"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "hadith_search_service_calls_total",
			Help:        "Calls to the ranked search service by endpoint and outcome",
			ConstLabels: constLabels,
		}, []string{"endpoint", "outcome"}),
		remoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "hadith_search_service_duration_seconds",
			Help:        "Ranked search service latency in seconds, retries included",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"endpoint"}),
		searchFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hadith_search_keyword_fallbacks_total",
			Help:        "Searches answered by keyword match because the search service was unavailable",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestLatency,
		c.remoteCalls,
		c.remoteLatency,
		c.searchFallbacks,
	)
	return c
}

// RecordRequest records one served HTTP request
func (c *Collector) RecordRequest(route, method string, statusCode int, elapsed time.Duration) {
	c.requests.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	c.requestLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveRemoteCall records one call to the ranked search service
func (c *Collector) ObserveRemoteCall(endpoint, outcome string, elapsed time.Duration) {
	c.remoteCalls.WithLabelValues(endpoint, outcome).Inc()
	c.remoteLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordSearchFallback records a search answered by the keyword fallback
func (c *Collector) RecordSearchFallback() {
	c.searchFallbacks.Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
