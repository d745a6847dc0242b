package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoint and headers.
const (
	// DefaultBaseURL is the Figma REST API root.
	DefaultBaseURL = "https://api.figma.com"

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "figma-client-go/1.0"

	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"

	// HeaderFigmaToken carries a personal access token.
	HeaderFigmaToken = "X-Figma-Token"

	// HeaderRequestID correlates a logical request across attempts.
	HeaderRequestID = "X-Request-ID"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default per-attempt timeout.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout bounds OAuth2 token requests.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry defaults.
const (
	// DefaultMaxRetries is the default retry ceiling.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is doubled on every attempt.
	DefaultRetryBaseDelay = 1 * time.Second

	// DefaultRetryMaxDelay caps the exponential backoff.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryJitter bounds the random delay added to each backoff.
	DefaultRetryJitter = 1 * time.Second
)

// Rate limiting defaults.
const (
	// DefaultRateLimitCapacity is the token bucket size.
	DefaultRateLimitCapacity = 20

	// DefaultRateLimitRefillPerSecond is the steady-state request rate.
	DefaultRateLimitRefillPerSecond = 5.0
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of cached responses.
	DefaultCacheSize = 100

	// DefaultCacheTTL is how long a cached response stays fresh.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultNATSBucket is the JetStream KV bucket used for shared caching.
	DefaultNATSBucket = "figma-client-cache"
)

// Pagination.
const (
	// DefaultCursorParam is the query parameter carrying the page cursor.
	DefaultCursorParam = "cursor"
	// LibraryCursorParam is the forward cursor of team library listings.
	LibraryCursorParam = "after"

	// DefaultPageSize is the page_size requested by list commands.
	DefaultPageSize = 30

	// MaxPageSize is the largest page_size the API accepts.
	MaxPageSize = 1000
)

// Format constants.
const (
	// FormatJSON selects JSON output.
	FormatJSON = "json"

	// FormatYAML selects YAML output.
	FormatYAML = "yaml"

	// FormatTable selects table output.
	FormatTable = "table"

	// JSONIndentSize is the indentation used by encoders.
	JSONIndentSize = 2
)
