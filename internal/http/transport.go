package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// rateLimitedTransport takes one limiter token per attempt before handing the
// request to base.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *figma.RateLimiter
	metrics *figma.MetricsCollector
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		start := time.Now()

		err := t.limiter.Acquire(req.Context())
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}

		t.metrics.RecordRateLimit(time.Since(start), t.limiter.Tokens())
	}

	resp, err := t.base.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	t.metrics.RecordAttempt(req.Method, req.URL.Path, status)

	return resp, err //nolint:wrapcheck // transport errors are classified by the caller
}

// leveledLogger routes retryablehttp's messages to a figma.Logger.
type leveledLogger struct {
	logger figma.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		value := keysAndValues[i+1]
		if req, ok := value.(*http.Request); ok {
			value = req.Method + " " + req.URL.Path
		}

		fields[key] = value
	}

	return fields
}
