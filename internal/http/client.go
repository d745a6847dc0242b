package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/figma-client/internal/auth"
	"github.com/fivetwenty-io/figma-client/internal/constants"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

const tracerName = "github.com/fivetwenty-io/figma-client/internal/http"

// Client executes Figma API requests through the response cache, the rate
// limiter and a retry loop.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	tokenHeader  string
	userAgent    string
	timeout      time.Duration
	transport    http.RoundTripper

	retryPolicy *figma.RetryPolicy
	limiter     *figma.RateLimiter
	cache       figma.Cache
	cacheTTL    time.Duration
	invalidate  bool
	counters    figma.CacheCounters

	metrics *figma.MetricsCollector
	tracer  trace.Tracer
	logger  figma.Logger
	debug   bool

	retryClient *retryablehttp.Client
}

// Request represents an HTTP request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	RequestID  string
	Attempts   int
	Cached     bool
}

// NewClient creates a client. A nil tokenManager sends unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		tokenHeader:  constants.HeaderAuthorization,
		userAgent:    constants.DefaultUserAgent,
		timeout:      constants.DefaultHTTPTimeout,
		retryPolicy:  figma.DefaultRetryPolicy(),
		limiter:      figma.NewRateLimiter(figma.DefaultRateLimitConfig()),
		cache:        figma.NewMemoryCache(constants.DefaultCacheSize),
		cacheTTL:     constants.DefaultCacheTTL,
		invalidate:   true,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.tracer == nil {
		client.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}

	client.retryClient = client.newRetryClient()

	return client
}

func (c *Client) newRetryClient() *retryablehttp.Client {
	base := c.transport
	if base == nil {
		base = http.DefaultTransport
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Transport: &rateLimitedTransport{
			base:    base,
			limiter: c.limiter,
			metrics: c.metrics,
		},
		Timeout: c.timeout,
	}
	retryClient.RetryMax = c.retryPolicy.MaxAttempts
	retryClient.RetryWaitMin = c.retryPolicy.BaseDelay
	retryClient.RetryWaitMax = c.retryPolicy.MaxDelay
	retryClient.CheckRetry = c.checkRetry
	retryClient.Backoff = c.backoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if state := stateFrom(req.Context()); state != nil {
			state.attempt = attempt
		}
	}

	retryClient.Logger = nil
	if c.logger != nil && c.debug {
		retryClient.Logger = &leveledLogger{logger: c.logger}
	}

	return retryClient
}

// Execute runs req and returns the response body.
func (c *Client) Execute(ctx context.Context, req *figma.RequestDescriptor) (json.RawMessage, error) {
	resp, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Body) == 0 {
		return nil, nil
	}

	return json.RawMessage(resp.Body), nil
}

// Do performs an HTTP request. Non-2xx responses are returned as *figma.Error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	descriptor := &figma.RequestDescriptor{
		Method:     method,
		Path:       req.Path,
		Query:      req.Query,
		Body:       req.Body,
		Headers:    req.Headers,
		Idempotent: method == http.MethodGet || method == http.MethodHead,
	}

	if descriptor.Query == nil {
		descriptor.Query = url.Values{}
	}

	return c.execute(ctx, descriptor)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// InvalidateCache removes every cached key starting with prefix.
func (c *Client) InvalidateCache(ctx context.Context, prefix string) (int, error) {
	removed, err := c.cache.DeletePrefix(ctx, prefix)
	c.counters.Invalidated(removed)
	c.metrics.RecordInvalidation(removed)

	if err != nil {
		return removed, fmt.Errorf("invalidating cache prefix %q: %w", prefix, err)
	}

	return removed, nil
}

// ClearCache removes every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	err := c.cache.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	return nil
}

// Stats returns cache counters and the limiter state.
func (c *Client) Stats() figma.ClientStats {
	return figma.ClientStats{
		Cache:             c.counters.Snapshot(),
		RateLimitTokens:   c.limiter.Tokens(),
		RateLimitCapacity: c.limiter.Capacity(),
		RateLimitWaiting:  c.limiter.Waiting(),
	}
}

// RateLimiter returns the limiter, nil when throttling is disabled.
func (c *Client) RateLimiter() *figma.RateLimiter {
	return c.limiter
}

func (c *Client) execute(ctx context.Context, req *figma.RequestDescriptor) (*Response, error) {
	if req == nil {
		return nil, figma.ErrRequestRequired
	}

	if req.Path == "" {
		return nil, figma.ErrPathRequired
	}

	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, "figma "+req.Method+" "+figma.MetricsEndpoint(req.Path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
			attribute.String("figma.request_id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	c.metrics.RecordRequestStart(req.Method, req.Path)

	resp, apiErr := c.run(ctx, req, requestID)

	c.metrics.RecordRequestEnd(req.Method, req.Path, time.Since(start), apiErr)

	if apiErr != nil {
		span.SetAttributes(
			attribute.String("figma.error_kind", apiErr.Kind.String()),
			attribute.Int("figma.attempts", apiErr.Attempts),
		)

		if apiErr.StatusCode > 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", apiErr.StatusCode))
		}

		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Message)

		return nil, apiErr
	}

	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int("figma.attempts", resp.Attempts),
		attribute.Bool("figma.cache_hit", resp.Cached),
	)

	return resp, nil
}

func (c *Client) run(ctx context.Context, req *figma.RequestDescriptor, requestID string) (*Response, *figma.Error) {
	cacheable := req.Idempotent && !req.NoCache
	key := req.CacheKey()

	if cacheable {
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			c.counters.Hit()
			c.metrics.RecordCacheHit(req.Path)
			c.logDebug("Cache hit", map[string]interface{}{"key": key, "request_id": requestID})

			return &Response{StatusCode: http.StatusOK, Body: bytes.Clone(entry.Data), RequestID: requestID, Cached: true}, nil
		}

		c.counters.Miss()
		c.metrics.RecordCacheMiss(req.Path)
	}

	fullURL := c.buildURL(req)

	state := &attemptState{method: req.Method, path: req.Path}
	ctx = context.WithValue(ctx, attemptStateKey{}, state)

	httpReq, apiErr := c.newRequest(ctx, req, fullURL, requestID)
	if apiErr != nil {
		return nil, apiErr
	}

	c.logDebug("HTTP Request", map[string]interface{}{
		"method":     req.Method,
		"path":       req.Path,
		"url":        fullURL,
		"request_id": requestID,
	})

	start := time.Now()
	httpResp, doErr := c.retryClient.Do(httpReq)
	attempts := state.attempt + 1

	if doErr != nil || httpResp == nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		if doErr == nil {
			doErr = io.ErrUnexpectedEOF
		}

		return nil, c.fail(figma.ClassifyTransport(req.Method, fullURL, doErr), requestID, attempts)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.fail(figma.ClassifyTransport(req.Method, fullURL, err), requestID, attempts)
	}

	c.logDebug("HTTP Response", map[string]interface{}{
		"status":     httpResp.StatusCode,
		"duration":   time.Since(start).String(),
		"attempts":   attempts,
		"request_id": requestID,
	})

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, c.fail(figma.Classify(req.Method, httpResp.StatusCode, httpResp.Header, body, fullURL), requestID, attempts)
	}

	// A response that arrives after cancellation is not committed.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, c.fail(figma.ClassifyTransport(req.Method, fullURL, ctxErr), requestID, attempts)
	}

	if cacheable {
		c.store(ctx, req, key, body, httpResp.Header.Get("ETag"))
	} else if !req.Idempotent && c.invalidate && !req.NoInvalidate {
		c.invalidateFor(ctx, req.Path)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
		RequestID:  requestID,
		Attempts:   attempts,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, req *figma.RequestDescriptor, fullURL, requestID string) (*retryablehttp.Request, *figma.Error) {
	var rawBody interface{}

	if req.Body != nil {
		data, err := encodeBody(req.Body)
		if err != nil {
			return nil, &figma.Error{
				Kind:      figma.KindValidation,
				Method:    req.Method,
				URL:       fullURL,
				Message:   "encoding request body",
				RequestID: requestID,
				Err:       err,
			}
		}

		rawBody = data
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, &figma.Error{
			Kind:      figma.KindValidation,
			Method:    req.Method,
			URL:       fullURL,
			Message:   "building request",
			RequestID: requestID,
			Err:       err,
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(constants.HeaderRequestID, requestID)

	if rawBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, &figma.Error{
				Kind:      figma.KindAuthentication,
				Method:    req.Method,
				URL:       fullURL,
				Message:   "obtaining access token",
				RequestID: requestID,
				Err:       err,
			}
		}

		c.setAuthHeader(httpReq.Header, token)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

func (c *Client) setAuthHeader(header http.Header, token string) {
	if strings.EqualFold(c.tokenHeader, constants.HeaderFigmaToken) {
		header.Set(constants.HeaderFigmaToken, token)

		return
	}

	header.Set(constants.HeaderAuthorization, "Bearer "+token)
}

func (c *Client) buildURL(req *figma.RequestDescriptor) string {
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	fullURL := c.baseURL + path
	if encoded := req.Query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	return fullURL
}

// checkRetry classifies each attempt's outcome and applies the retry policy.
func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	var classified *figma.Error

	switch {
	case err != nil:
		classified = figma.ClassifyTransport("", "", err)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	default:
		classified = figma.Classify(resp.Request.Method, resp.StatusCode, resp.Header, nil, resp.Request.URL.String())
	}

	state := stateFrom(ctx)
	if state == nil {
		state = &attemptState{}
	}

	attempt := state.attempt

	decision := c.retryPolicy.ShouldRetry(classified, attempt)
	if !decision.Retry {
		return false, nil
	}

	method, path := state.method, state.path

	c.metrics.RecordRetry(method, path, classified.Kind)
	c.logWarn("Retrying request", map[string]interface{}{
		"kind":    classified.Kind.String(),
		"status":  classified.StatusCode,
		"attempt": attempt + 1,
		"delay":   decision.Delay.String(),
	})

	return true, nil
}

// backoff honours Retry-After on 429 responses and otherwise applies the
// policy's exponential backoff with jitter.
func (c *Client) backoff(_, _ time.Duration, attempt int, resp *http.Response) time.Duration {
	classified := &figma.Error{Kind: figma.KindNetwork}
	if resp != nil {
		classified = figma.Classify("", resp.StatusCode, resp.Header, nil, "")
	}

	return c.retryPolicy.Delay(classified, attempt)
}

func (c *Client) store(ctx context.Context, req *figma.RequestDescriptor, key string, body []byte, etag string) {
	ttl := c.cacheTTL
	if req.CacheTTL > 0 {
		ttl = req.CacheTTL
	}

	entry := figma.NewCacheEntry(bytes.Clone(body), ttl)
	entry.ETag = etag

	err := c.cache.Set(ctx, key, entry)
	if err != nil {
		c.logWarn("Cache store failed", map[string]interface{}{"key": key, "error": err.Error()})

		return
	}

	c.counters.Stored()
}

func (c *Client) invalidateFor(ctx context.Context, path string) {
	prefixes, keys := figma.InvalidationTargets(path)

	removed := 0

	for _, prefix := range prefixes {
		n, err := c.cache.DeletePrefix(ctx, prefix)
		if err != nil {
			c.logWarn("Cache invalidation failed", map[string]interface{}{"prefix": prefix, "error": err.Error()})
		}

		removed += n
	}

	for _, key := range keys {
		if !c.cache.Has(ctx, key) {
			continue
		}

		err := c.cache.Delete(ctx, key)
		if err != nil {
			c.logWarn("Cache invalidation failed", map[string]interface{}{"key": key, "error": err.Error()})

			continue
		}

		removed++
	}

	c.counters.Invalidated(removed)
	c.metrics.RecordInvalidation(removed)
	c.logDebug("Cache invalidated", map[string]interface{}{"path": path, "removed": removed})
}

func (c *Client) fail(apiErr *figma.Error, requestID string, attempts int) *figma.Error {
	apiErr.RequestID = requestID
	apiErr.Attempts = attempts

	if c.logger != nil {
		c.logger.Error("Request failed", map[string]interface{}{
			"kind":       apiErr.Kind.String(),
			"status":     apiErr.StatusCode,
			"method":     apiErr.Method,
			"url":        apiErr.URL,
			"attempts":   attempts,
			"request_id": requestID,
		})
	}

	return apiErr
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil && c.debug {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) logWarn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		var buf bytes.Buffer

		_, err := buf.ReadFrom(b)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}

		return buf.Bytes(), nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		return data, nil
	}
}

type attemptStateKey struct{}

// attemptState tracks the current attempt of one logical request. The retry
// loop runs attempts sequentially, so no locking is needed.
type attemptState struct {
	method  string
	path    string
	attempt int
}

func stateFrom(ctx context.Context) *attemptState {
	state, _ := ctx.Value(attemptStateKey{}).(*attemptState)

	return state
}

