package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/fivetwenty-io/figma-client/internal/auth"
	"github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// Static errors for err113 compliance.
var (
	ErrBaseURLRequired          = errors.New("base URL is required")
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
)

// Client implements the figma.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	cache        figma.Cache
	baseURL      string
	logger       figma.Logger

	// Resource clients
	files      figma.FilesClient
	projects   figma.ProjectsClient
	components figma.ComponentsClient
	variables  figma.VariablesClient
	webhooks   figma.WebhooksClient
	analytics  figma.AnalyticsClient
}

// createTokenManager creates appropriate token manager based on config.
func createTokenManager(config *figma.Config) auth.TokenManager {
	if config.OAuth2 != nil && config.OAuth2.RefreshToken != "" {
		return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
			ClientID:     config.OAuth2.ClientID,
			ClientSecret: config.OAuth2.ClientSecret,
			TokenURL:     config.OAuth2.TokenURL,
			RefreshToken: config.OAuth2.RefreshToken,
			AccessToken:  config.AccessToken,
		})
	}

	if config.AccessToken != "" {
		return auth.NewStaticTokenManager(config.AccessToken)
	}

	return nil // No authentication
}

// createHTTPClientOptions builds HTTP client options from config. The cache
// backend is returned separately so the client can release it on Close.
func createHTTPClientOptions(config *figma.Config) ([]http.Option, figma.Cache, error) {
	httpOpts := []http.Option{
		http.WithRetryPolicy(config.RetryPolicy()),
		http.WithRateLimiter(figma.NewRateLimiter(config.RateLimit)),
		http.WithCacheTTL(config.EffectiveCacheTTL()),
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Timeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.Timeout))
	}

	if config.TokenHeader != "" {
		httpOpts = append(httpOpts, http.WithTokenHeader(config.TokenHeader))
	}

	if config.DisableInvalidation {
		httpOpts = append(httpOpts, http.WithoutInvalidation())
	}

	if config.MetricsRegisterer != nil {
		metrics, err := figma.NewMetricsCollector(config.MetricsRegisterer)
		if err != nil {
			return nil, nil, fmt.Errorf("creating metrics collector: %w", err)
		}

		httpOpts = append(httpOpts, http.WithMetrics(metrics))
	}

	if config.TracerProvider != nil {
		httpOpts = append(httpOpts, http.WithTracerProvider(config.TracerProvider))
	}

	if config.Transport != nil {
		httpOpts = append(httpOpts, http.WithTransport(config.Transport))
	}

	var cache figma.Cache

	if !config.Cache.Disabled() {
		var err error

		cache, err = figma.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, nil, fmt.Errorf("creating response cache: %w", err)
		}
	}

	httpOpts = append(httpOpts, http.WithCache(cache))

	return httpOpts, cache, nil
}

// New creates a new Figma API client.
func New(ctx context.Context, config *figma.Config) (*Client, error) {
	return NewWithTokenManager(ctx, config, createTokenManager(config))
}

// NewWithTokenManager creates a new Figma API client with a custom token manager.
func NewWithTokenManager(ctx context.Context, config *figma.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	// Create HTTP client options
	httpOpts, cache, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	// Create HTTP client
	httpClient := http.NewClient(config.BaseURL, tokenManager, httpOpts...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		cache:        cache,
		baseURL:      strings.TrimSuffix(config.BaseURL, "/"),
		logger:       config.Logger,
	}

	// Initialize resource clients
	client.initializeResourceClients()

	if client.logger != nil {
		client.logger.Debug("Figma client created", map[string]interface{}{
			"base_url":      client.baseURL,
			"authenticated": tokenManager != nil,
			"cache_enabled": cache != nil,
		})
	}

	return client, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// Execute implements figma.Client.Execute.
func (c *Client) Execute(ctx context.Context, method, path string, params map[string]any, body any, opts ...figma.RequestOption) (json.RawMessage, error) {
	req, err := figma.NewRequest(method, path, params, body, opts...)
	if err != nil {
		return nil, err
	}

	return c.httpClient.Execute(ctx, req)
}

// Paginate implements figma.Client.Paginate.
func (c *Client) Paginate(ctx context.Context, method, path string, params map[string]any, itemsKey string, opts ...figma.PaginateOption) iter.Seq2[[]json.RawMessage, error] {
	config := figma.NewPaginateConfig(opts...)

	req, err := figma.NewRequest(method, path, params, nil, config.RequestOptions...)
	if err != nil {
		return func(yield func([]json.RawMessage, error) bool) {
			yield(nil, err)
		}
	}

	return figma.Paginate(ctx, c.httpClient, figma.PageRequest{
		Request:     req,
		ItemsKey:    itemsKey,
		CursorParam: config.CursorParam,
		MaxPages:    config.MaxPages,
	})
}

// InvalidateCache implements figma.Client.InvalidateCache.
func (c *Client) InvalidateCache(ctx context.Context, prefix string) (int, error) {
	return c.httpClient.InvalidateCache(ctx, prefix)
}

// ClearCache implements figma.Client.ClearCache.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.httpClient.ClearCache(ctx)
}

// Stats implements figma.Client.Stats.
func (c *Client) Stats() figma.ClientStats {
	return c.httpClient.Stats()
}

// Close releases the cache backend's connection, if it holds one.
func (c *Client) Close() error {
	if closer, ok := c.cache.(interface{ Close() }); ok {
		closer.Close()
	}

	return nil
}

// Resource client accessors

// Files implements figma.Client.Files.
func (c *Client) Files() figma.FilesClient {
	return c.files
}

// Projects implements figma.Client.Projects.
func (c *Client) Projects() figma.ProjectsClient {
	return c.projects
}

// Components implements figma.Client.Components.
func (c *Client) Components() figma.ComponentsClient {
	return c.components
}

// Variables implements figma.Client.Variables.
func (c *Client) Variables() figma.VariablesClient {
	return c.variables
}

// Webhooks implements figma.Client.Webhooks.
func (c *Client) Webhooks() figma.WebhooksClient {
	return c.webhooks
}

// Analytics implements figma.Client.Analytics.
func (c *Client) Analytics() figma.AnalyticsClient {
	return c.analytics
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.files = NewFilesClient(c.httpClient)
	c.projects = NewProjectsClient(c.httpClient)
	c.components = NewComponentsClient(c.httpClient)
	c.variables = NewVariablesClient(c.httpClient)
	c.webhooks = NewWebhooksClient(c.httpClient)
	c.analytics = NewAnalyticsClient(c.httpClient)
}

// metaEnvelope is the {"status":200,"error":false,"meta":{...}} wrapper of
// library and variables endpoints.
type metaEnvelope[T any] struct {
	Status int  `json:"status"`
	Error  bool `json:"error"`
	Meta   T    `json:"meta"`
}

// fetch runs one request and decodes the body into out when out is non-nil.
func fetch(ctx context.Context, httpClient *http.Client, method, path string, params map[string]any, body, out any) error {
	req, err := figma.NewRequest(method, path, params, body)
	if err != nil {
		return err
	}

	raw, err := httpClient.Execute(ctx, req)
	if err != nil {
		return err
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	err = json.Unmarshal(raw, out)
	if err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}
