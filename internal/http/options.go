package http

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger figma.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(policy *figma.RetryPolicy) Option {
	return func(c *Client) {
		if policy != nil {
			c.retryPolicy = policy
		}
	}
}

// WithRetryConfig sets the retry ceiling and backoff bounds, keeping the
// default jitter.
func WithRetryConfig(maxRetries int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		policy := figma.DefaultRetryPolicy()
		policy.MaxAttempts = maxRetries
		policy.BaseDelay = baseDelay
		policy.MaxDelay = maxDelay
		c.retryPolicy = policy
	}
}

// WithRateLimiter replaces the limiter. Nil disables throttling.
func WithRateLimiter(limiter *figma.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithCache replaces the response cache. Nil disables caching.
func WithCache(cache figma.Cache) Option {
	return func(c *Client) {
		if cache == nil {
			cache = figma.NewNoOpCache()
		}

		c.cache = cache
	}
}

// WithCacheTTL sets how long responses stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithTimeout sets the per-attempt timeout. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithMetrics records Prometheus metrics through collector.
func WithMetrics(collector *figma.MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Client) {
		if provider != nil {
			c.tracer = provider.Tracer(tracerName)
		}
	}
}

// WithTransport sets the base round tripper.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithTokenHeader selects "Authorization" (bearer) or "X-Figma-Token".
func WithTokenHeader(header string) Option {
	return func(c *Client) {
		if header != "" {
			c.tokenHeader = header
		}
	}
}

// WithoutInvalidation keeps cached reads after successful mutations.
func WithoutInvalidation() Option {
	return func(c *Client) {
		c.invalidate = false
	}
}
