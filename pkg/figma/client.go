package figma

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Files() FilesClient
	Projects() ProjectsClient
	Components() ComponentsClient
	Variables() VariablesClient
	Webhooks() WebhooksClient
	Analytics() AnalyticsClient
}

// RequestClient is the generic entry point shared by every resource client.
type RequestClient interface {
	// Execute runs one request through the cache, rate limiter and retry
	// loop. Failures are always *Error values.
	Execute(ctx context.Context, method, path string, params map[string]any, body any, opts ...RequestOption) (json.RawMessage, error)

	// Paginate walks a cursor-linked list endpoint page by page.
	Paginate(ctx context.Context, method, path string, params map[string]any, itemsKey string, opts ...PaginateOption) iter.Seq2[[]json.RawMessage, error]
}

// CacheAdmin exposes cache maintenance.
type CacheAdmin interface {
	InvalidateCache(ctx context.Context, prefix string) (int, error)
	ClearCache(ctx context.Context) error
	Stats() ClientStats
}

// Client is the complete Figma API client.
type Client interface {
	ResourceClients
	RequestClient
	CacheAdmin
}

// ClientStats is a point-in-time view of the request pipeline.
type ClientStats struct {
	Cache             CacheStats `json:"cache"               yaml:"cache"`
	RateLimitTokens   float64    `json:"rate_limit_tokens"   yaml:"rate_limit_tokens"`
	RateLimitCapacity int        `json:"rate_limit_capacity" yaml:"rate_limit_capacity"`
	RateLimitWaiting  int        `json:"rate_limit_waiting"  yaml:"rate_limit_waiting"`
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a figma.Client.
//
// # Authentication
//
// AccessToken is sent as "Authorization: Bearer <token>". Personal access
// tokens may instead be sent as "X-Figma-Token" by setting TokenHeader. When
// OAuth2 is set with a RefreshToken, access tokens are obtained and renewed
// through the OAuth2 token endpoint and AccessToken seeds the first request.
//
// # Resilience
//
// Every attempt takes a token from the RateLimit bucket and is bounded by
// Timeout. Rate-limited (429), server (500/502/503/504), network and timeout
// failures are retried up to MaxRetries times with exponential backoff;
// a Retry-After header on a 429 is used as the exact wait.
//
// # Caching
//
// Successful GET responses are cached for CacheTTL. A successful mutation
// evicts cached reads of the same path and of its parent collection unless
// DisableInvalidation is set.
type Config struct {
	// BaseURL: API root. Defaults to https://api.figma.com.
	BaseURL string

	// AccessToken: personal access token or OAuth2 access token.
	AccessToken string
	// TokenHeader: "Authorization" (default) or "X-Figma-Token".
	TokenHeader string
	// OAuth2: optional refresh-token flow.
	OAuth2 *OAuth2Config

	// Timeout: per-attempt limit including the rate limiter wait.
	Timeout time.Duration
	// MaxRetries: retry ceiling. Zero uses the default; negative disables retries.
	MaxRetries int
	// RetryBaseDelay: first backoff step.
	RetryBaseDelay time.Duration
	// RetryMaxDelay: backoff cap.
	RetryMaxDelay time.Duration
	// RetryMaxJitter: upper bound of the random delay added to each backoff.
	RetryMaxJitter time.Duration

	// RateLimit: nil uses the default bucket; Disabled turns throttling off.
	RateLimit *RateLimitConfig
	// Cache: nil uses an in-memory cache; Type "none" disables caching.
	Cache *CacheConfig
	// CacheTTL: overrides Cache.TTL when positive.
	CacheTTL time.Duration
	// DisableInvalidation keeps cached reads after successful mutations.
	DisableInvalidation bool

	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string

	// MetricsRegisterer: when set, request metrics are registered here.
	MetricsRegisterer prometheus.Registerer
	// TracerProvider: defaults to the global otel provider.
	TracerProvider trace.TracerProvider
	// Transport: base round tripper, mainly for tests.
	Transport http.RoundTripper
}

// OAuth2Config configures the OAuth2 refresh-token flow.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// TokenURL defaults to https://api.figma.com/v1/oauth/refresh.
	TokenURL string
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        constants.DefaultBaseURL,
		TokenHeader:    constants.HeaderAuthorization,
		Timeout:        constants.DefaultHTTPTimeout,
		MaxRetries:     constants.DefaultMaxRetries,
		RetryBaseDelay: constants.DefaultRetryBaseDelay,
		RetryMaxDelay:  constants.DefaultRetryMaxDelay,
		RetryMaxJitter: constants.DefaultRetryJitter,
		RateLimit:      DefaultRateLimitConfig(),
		Cache:          DefaultCacheConfig(),
		CacheTTL:       constants.DefaultCacheTTL,
		UserAgent:      constants.DefaultUserAgent,
	}
}

// RetryPolicy builds the retry policy described by the config.
func (c *Config) RetryPolicy() *RetryPolicy {
	policy := DefaultRetryPolicy()

	switch {
	case c.MaxRetries < 0:
		policy.MaxAttempts = 0
	case c.MaxRetries > 0:
		policy.MaxAttempts = c.MaxRetries
	}

	if c.RetryBaseDelay > 0 {
		policy.BaseDelay = c.RetryBaseDelay
	}

	if c.RetryMaxDelay > 0 {
		policy.MaxDelay = c.RetryMaxDelay
	}

	if c.RetryMaxJitter > 0 {
		policy.MaxJitter = c.RetryMaxJitter
	}

	return policy
}

// EffectiveCacheTTL returns CacheTTL, then Cache.TTL, then the default.
func (c *Config) EffectiveCacheTTL() time.Duration {
	if c.CacheTTL > 0 {
		return c.CacheTTL
	}

	return c.Cache.EffectiveTTL()
}

// FilesClient reads files and manages their comments.
type FilesClient interface {
	Get(ctx context.Context, fileKey string, params *GetFileParams) (*File, error)
	GetNodes(ctx context.Context, fileKey string, ids []string, params *GetFileParams) (*FileNodes, error)
	GetImages(ctx context.Context, fileKey string, params *ImageParams) (*Images, error)
	ListVersions(ctx context.Context, fileKey string) ([]Version, error)
	ListComments(ctx context.Context, fileKey string) ([]Comment, error)
	PostComment(ctx context.Context, fileKey string, request *CommentCreateRequest) (*Comment, error)
	DeleteComment(ctx context.Context, fileKey, commentID string) error
}

// ProjectsClient lists team projects and their files.
type ProjectsClient interface {
	ListTeamProjects(ctx context.Context, teamID string) (*TeamProjects, error)
	ListProjectFiles(ctx context.Context, projectID string, branchData bool) (*ProjectFiles, error)
}

// ComponentsClient reads published library components and styles.
type ComponentsClient interface {
	ListTeamComponents(ctx context.Context, teamID string, params *PageParams) (*ComponentsPage, error)
	ListAllTeamComponents(ctx context.Context, teamID string) ([]PublishedComponent, error)
	ListFileComponents(ctx context.Context, fileKey string) ([]PublishedComponent, error)
	Get(ctx context.Context, key string) (*PublishedComponent, error)
	ListTeamComponentSets(ctx context.Context, teamID string) ([]PublishedComponent, error)
	ListTeamStyles(ctx context.Context, teamID string) ([]PublishedStyle, error)
}

// VariablesClient reads and changes file variables.
type VariablesClient interface {
	GetLocal(ctx context.Context, fileKey string) (*LocalVariables, error)
	GetPublished(ctx context.Context, fileKey string) (*PublishedVariables, error)
	Update(ctx context.Context, fileKey string, request *VariablesUpdateRequest) (*VariablesUpdateResult, error)
}

// WebhooksClient manages team webhooks.
type WebhooksClient interface {
	Get(ctx context.Context, webhookID string) (*Webhook, error)
	Create(ctx context.Context, request *WebhookCreateRequest) (*Webhook, error)
	Update(ctx context.Context, webhookID string, request *WebhookUpdateRequest) (*Webhook, error)
	Delete(ctx context.Context, webhookID string) error
	ListTeam(ctx context.Context, teamID string) ([]Webhook, error)
	ListRequests(ctx context.Context, webhookID string) ([]WebhookRequest, error)
}

// AnalyticsClient reads library analytics reports. Every method walks all pages.
type AnalyticsClient interface {
	ComponentActions(ctx context.Context, fileKey string, params *AnalyticsParams) ([]AnalyticsRow, error)
	ComponentUsages(ctx context.Context, fileKey string, params *AnalyticsParams) ([]AnalyticsRow, error)
	StyleActions(ctx context.Context, fileKey string, params *AnalyticsParams) ([]AnalyticsRow, error)
	VariableActions(ctx context.Context, fileKey string, params *AnalyticsParams) ([]AnalyticsRow, error)
}
