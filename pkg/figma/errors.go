package figma

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies a failed exchange with the Figma API.
type ErrorKind int

const (
	// KindGenericHTTP is any non-2xx status without a more specific kind.
	KindGenericHTTP ErrorKind = iota
	// KindAuthentication indicates a missing or invalid token (401).
	KindAuthentication
	// KindAuthorization indicates the token lacks access to the resource (403).
	KindAuthorization
	// KindNotFound indicates the resource does not exist (404).
	KindNotFound
	// KindValidation indicates a malformed request (400).
	KindValidation
	// KindRateLimited indicates the service throttled the request (429).
	KindRateLimited
	// KindServerError indicates a 500, 502, 503 or 504 response.
	KindServerError
	// KindNetwork indicates the request never produced a response.
	KindNetwork
	// KindTimeout indicates a deadline or cancellation ended the request.
	KindTimeout
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindGenericHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Error is the single error type returned for failed API requests.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Method     string
	URL        string
	// RetryAfter is the server's Retry-After hint, set only for KindRateLimited.
	RetryAfter *time.Duration
	Message    string
	Body       []byte
	RequestID  string
	// Attempts is the number of transport calls made before giving up.
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if msg == "" && e.StatusCode > 0 {
		msg = http.StatusText(e.StatusCode)
	}

	var out string
	if e.StatusCode > 0 {
		out = fmt.Sprintf("figma: %s (HTTP %d): %s", e.Kind, e.StatusCode, msg)
	} else {
		out = fmt.Sprintf("figma: %s: %s", e.Kind, msg)
	}

	if e.Method != "" && e.URL != "" {
		out = fmt.Sprintf("%s [%s %s]", out, e.Method, e.URL)
	}

	if e.Kind == KindRateLimited && e.RetryAfter != nil {
		out = fmt.Sprintf("%s (retry after %s)", out, *e.RetryAfter)
	}

	return out
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Is reports kind equality so errors.Is(err, figma.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	var other *Error
	if errors.As(target, &other) && other != nil {
		return e.Kind == other.Kind
	}

	return false
}

// Retryable reports whether the retry policy may re-attempt this failure.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}

	return Retryable(e.Kind)
}

// Kind sentinels for errors.Is comparisons.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrRateLimited    = &Error{Kind: KindRateLimited}
	ErrServerError    = &Error{Kind: KindServerError}
	ErrNetwork        = &Error{Kind: KindNetwork}
	ErrTimeout        = &Error{Kind: KindTimeout}
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrAccessTokenRequired   = errors.New("access token is required")
	ErrBaseURLInvalid        = errors.New("base URL is invalid")
	ErrCacheMiss             = errors.New("key not found")
	ErrEntryExpired          = errors.New("entry expired")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrItemsKeyNotFound      = errors.New("items key not found in response")
	ErrRequestRequired       = errors.New("request descriptor is required")
	ErrPathRequired          = errors.New("request path is required")
	ErrUnsupportedParam      = errors.New("unsupported query parameter type")
)

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}

	return nil, false
}

// KindOf returns the kind of err, or KindGenericHTTP with ok=false when err
// carries no *Error.
func KindOf(err error) (ErrorKind, bool) {
	apiErr, ok := AsError(err)
	if !ok {
		return KindGenericHTTP, false
	}

	return apiErr.Kind, true
}

// IsRetryable reports whether err is a classified, retryable failure.
func IsRetryable(err error) bool {
	apiErr, ok := AsError(err)

	return ok && apiErr.Retryable()
}

func isKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)

	return ok && k == kind
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool { return isKind(err, KindAuthentication) }

// IsForbidden checks if the error is an authorization error.
func IsForbidden(err error) bool { return isKind(err, KindAuthorization) }

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool { return isKind(err, KindRateLimited) }

// IsTimeout checks if the error is a timeout error.
func IsTimeout(err error) bool { return isKind(err, KindTimeout) }
