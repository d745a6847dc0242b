package figma_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

func TestMetricsCollector_Records(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	collector, err := figma.NewMetricsCollector(registry)
	require.NoError(t, err)

	collector.RecordRequestStart("GET", "/v1/files/abc")
	collector.RecordAttempt("GET", "/v1/files/abc", 503)
	collector.RecordRetry("GET", "/v1/files/abc", figma.KindServerError)
	collector.RecordAttempt("GET", "/v1/files/abc", 200)
	collector.RecordRequestEnd("GET", "/v1/files/abc", 20*time.Millisecond, nil)

	collector.RecordRequestStart("GET", "/v1/files/xyz")
	collector.RecordRequestEnd("GET", "/v1/files/xyz", time.Millisecond, &figma.Error{Kind: figma.KindNotFound})

	collector.RecordCacheHit("/v1/files/abc")
	collector.RecordCacheMiss("/v1/files/abc")
	collector.RecordInvalidation(3)
	collector.RecordRateLimit(5*time.Millisecond, 7)

	count, err := testutil.GatherAndCount(registry, "figma_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(registry, "figma_client_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(registry, "figma_client_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "success and failure outcomes")

	for _, name := range []string{
		"figma_client_retries_total",
		"figma_client_cache_hits_total",
		"figma_client_cache_misses_total",
		"figma_client_cache_invalidations_total",
		"figma_client_rate_limiter_tokens",
		"figma_client_rate_limiter_wait_seconds",
		"figma_client_requests_in_flight",
	} {
		count, err = testutil.GatherAndCount(registry, name)
		require.NoError(t, err)
		assert.Equal(t, 1, count, name)
	}
}

func TestMetricsCollector_Nil(t *testing.T) {
	t.Parallel()

	var collector *figma.MetricsCollector

	assert.NotPanics(t, func() {
		collector.RecordAttempt("GET", "/v1/me", 200)
		collector.RecordRequestStart("GET", "/v1/me")
		collector.RecordRequestEnd("GET", "/v1/me", time.Second, nil)
		collector.RecordRetry("GET", "/v1/me", figma.KindNetwork)
		collector.RecordCacheHit("/v1/me")
		collector.RecordCacheMiss("/v1/me")
		collector.RecordInvalidation(1)
		collector.RecordRateLimit(time.Millisecond, 1)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/v1/files", figma.MetricsEndpoint("/v1/files/abc/nodes"))
	assert.Equal(t, "/v2/webhooks", figma.MetricsEndpoint("/v2/webhooks"))
	assert.Equal(t, "/v1/me", figma.MetricsEndpoint("v1/me"))
	assert.Equal(t, "/", figma.MetricsEndpoint(""))
}

func TestMetricsCollector_SharedRegistry(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()

	first, err := figma.NewMetricsCollector(registry)
	require.NoError(t, err)

	second, err := figma.NewMetricsCollector(registry)
	require.NoError(t, err)

	first.RecordCacheHit("/v1/files/abc")
	second.RecordCacheHit("/v1/files/abc")

	count, err := testutil.GatherAndCount(registry, "figma_client_cache_hits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP figma_client_cache_hits_total Total number of cache hits
# TYPE figma_client_cache_hits_total counter
figma_client_cache_hits_total{endpoint="/v1/files"} 2
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "figma_client_cache_hits_total"))
}

func TestMetricsCollector_ConflictingRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "figma_client_requests_total",
		Help: "Conflicting metric with the same name",
	}))

	collector, err := figma.NewMetricsCollector(registry)
	require.Error(t, err)
	assert.Nil(t, collector)
}
