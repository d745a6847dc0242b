package figma

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector records Prometheus metrics for the request pipeline. A nil
// collector records nothing. It is safe for concurrent use.
type MetricsCollector struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	requestsInFlight  *prometheus.GaugeVec
	retriesTotal      *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	cacheInvalidated  prometheus.Counter
	rateLimiterTokens prometheus.Gauge
	rateLimiterWait   prometheus.Histogram
}

// NewMetricsCollector registers the collector's metrics with registerer.
// Metrics already registered by an earlier collector are shared, so several
// clients may report into one registry.
func NewMetricsCollector(registerer prometheus.Registerer) (*MetricsCollector, error) {
	var (
		mc  MetricsCollector
		err error
	)

	if mc.requestsTotal, err = registerCollector(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figma_client_requests_total",
			Help: "Total number of HTTP attempts made",
		},
		[]string{"method", "status_code", "endpoint"},
	)); err != nil {
		return nil, err
	}

	if mc.requestDuration, err = registerCollector(registerer, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "figma_client_request_duration_seconds",
			Help:    "Duration of logical requests in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "outcome"},
	)); err != nil {
		return nil, err
	}

	if mc.requestsInFlight, err = registerCollector(registerer, prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "figma_client_requests_in_flight",
			Help: "Number of logical requests currently in flight",
		},
		[]string{"method", "endpoint"},
	)); err != nil {
		return nil, err
	}

	if mc.retriesTotal, err = registerCollector(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figma_client_retries_total",
			Help: "Total number of retries scheduled",
		},
		[]string{"method", "endpoint", "kind"},
	)); err != nil {
		return nil, err
	}

	if mc.errorsTotal, err = registerCollector(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figma_client_errors_total",
			Help: "Total number of requests that ended in an error",
		},
		[]string{"kind", "method", "endpoint"},
	)); err != nil {
		return nil, err
	}

	if mc.cacheHits, err = registerCollector(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figma_client_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"endpoint"},
	)); err != nil {
		return nil, err
	}

	if mc.cacheMisses, err = registerCollector(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figma_client_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"endpoint"},
	)); err != nil {
		return nil, err
	}

	if mc.cacheInvalidated, err = registerCollector(registerer, prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "figma_client_cache_invalidations_total",
			Help: "Total number of cache entries removed by invalidation",
		},
	)); err != nil {
		return nil, err
	}

	if mc.rateLimiterTokens, err = registerCollector(registerer, prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "figma_client_rate_limiter_tokens",
			Help: "Tokens available after the last acquire",
		},
	)); err != nil {
		return nil, err
	}

	if mc.rateLimiterWait, err = registerCollector(registerer, prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "figma_client_rate_limiter_wait_seconds",
			Help:    "Time spent waiting for a rate limiter token",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)); err != nil {
		return nil, err
	}

	return &mc, nil
}

// registerCollector registers collector, returning the existing collector
// when an identical one is already registered.
func registerCollector[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	var zero C

	return zero, fmt.Errorf("registering metric: %w", err)
}

// RecordAttempt counts one HTTP attempt. Status 0 means no response.
func (mc *MetricsCollector) RecordAttempt(method, path string, status int) {
	if mc == nil {
		return
	}

	mc.requestsTotal.WithLabelValues(method, strconv.Itoa(status), MetricsEndpoint(path)).Inc()
}

// RecordRequestStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, path string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, MetricsEndpoint(path)).Inc()
}

// RecordRequestEnd decrements the in-flight gauge and observes the duration.
// A nil err is recorded as outcome "success".
func (mc *MetricsCollector) RecordRequestEnd(method, path string, duration time.Duration, err *Error) {
	if mc == nil {
		return
	}

	endpoint := MetricsEndpoint(path)
	outcome := "success"

	if err != nil {
		outcome = err.Kind.String()
		mc.errorsTotal.WithLabelValues(outcome, method, endpoint).Inc()
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
	mc.requestDuration.WithLabelValues(method, endpoint, outcome).Observe(duration.Seconds())
}

// RecordRetry counts a scheduled retry.
func (mc *MetricsCollector) RecordRetry(method, path string, kind ErrorKind) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(method, MetricsEndpoint(path), kind.String()).Inc()
}

// RecordCacheHit increments the cache hit counter.
func (mc *MetricsCollector) RecordCacheHit(path string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(MetricsEndpoint(path)).Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss(path string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(MetricsEndpoint(path)).Inc()
}

// RecordInvalidation adds n removed cache entries.
func (mc *MetricsCollector) RecordInvalidation(n int) {
	if mc == nil || n <= 0 {
		return
	}

	mc.cacheInvalidated.Add(float64(n))
}

// RecordRateLimit observes a limiter wait and the tokens left afterwards.
func (mc *MetricsCollector) RecordRateLimit(wait time.Duration, tokens float64) {
	if mc == nil {
		return
	}

	mc.rateLimiterWait.Observe(wait.Seconds())
	mc.rateLimiterTokens.Set(tokens)
}

// MetricsEndpoint reduces a request path to its version and collection
// ("/v1/files/abc/nodes" becomes "/v1/files") to bound label cardinality.
func MetricsEndpoint(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 2 {
		segments = segments[:2]
	}

	return "/" + strings.Join(segments, "/")
}
