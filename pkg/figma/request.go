package figma

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// RequestDescriptor describes one logical API call. It is not modified by the
// executor; use WithCursor or Clone to derive variants.
type RequestDescriptor struct {
	Method     string
	Path       string
	Query      url.Values
	Body       any
	Idempotent bool
	Headers    map[string]string

	// NoInvalidate skips cache invalidation after a successful mutation.
	NoInvalidate bool
	// NoCache bypasses the cache for this call in both directions.
	NoCache bool
	// CacheTTL overrides the client TTL when positive.
	CacheTTL time.Duration
}

// RequestOption adjusts a RequestDescriptor built by NewRequest.
type RequestOption func(*RequestDescriptor)

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(r *RequestDescriptor) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}

		r.Headers[key] = value
	}
}

// WithIdempotent marks the request as safe to cache and repeat.
func WithIdempotent(idempotent bool) RequestOption {
	return func(r *RequestDescriptor) {
		r.Idempotent = idempotent
	}
}

// WithoutCache bypasses the response cache.
func WithoutCache() RequestOption {
	return func(r *RequestDescriptor) {
		r.NoCache = true
	}
}

// WithRequestCacheTTL stores this response for ttl instead of the client default.
func WithRequestCacheTTL(ttl time.Duration) RequestOption {
	return func(r *RequestDescriptor) {
		r.CacheTTL = ttl
	}
}

// WithoutInvalidation keeps cached entries after a successful mutation.
func WithoutInvalidation() RequestOption {
	return func(r *RequestDescriptor) {
		r.NoInvalidate = true
	}
}

// NewRequest builds a descriptor. Nil params are dropped; GET and HEAD are
// idempotent unless an option says otherwise.
func NewRequest(method, path string, params map[string]any, body any, opts ...RequestOption) (*RequestDescriptor, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	query, err := EncodeParams(params)
	if err != nil {
		return nil, err
	}

	req := &RequestDescriptor{
		Method:     method,
		Path:       path,
		Query:      query,
		Body:       body,
		Idempotent: method == http.MethodGet || method == http.MethodHead,
	}

	for _, opt := range opts {
		opt(req)
	}

	return req, nil
}

// Clone returns a deep copy of the query and headers.
func (r *RequestDescriptor) Clone() *RequestDescriptor {
	clone := *r

	clone.Query = make(url.Values, len(r.Query))
	for k, v := range r.Query {
		clone.Query[k] = append([]string(nil), v...)
	}

	if r.Headers != nil {
		clone.Headers = maps.Clone(r.Headers)
	}

	return &clone
}

// WithCursor returns a copy with param set to cursor.
func (r *RequestDescriptor) WithCursor(param, cursor string) *RequestDescriptor {
	clone := r.Clone()
	clone.Query.Set(param, cursor)

	return clone
}

// CacheKey returns the key this request is cached under.
func (r *RequestDescriptor) CacheKey() string {
	return CacheKey(r.Method, r.Path, r.Query)
}

// EncodeParams converts params into query values.
func EncodeParams(params map[string]any) (url.Values, error) {
	query := url.Values{}

	for key, value := range params {
		if value == nil {
			continue
		}

		formatted, ok, err := formatParam(value)
		if err != nil {
			return nil, fmt.Errorf("query parameter %q: %w", key, err)
		}

		if ok {
			query.Set(key, formatted)
		}
	}

	return query, nil
}

func formatParam(value any) (string, bool, error) {
	switch v := value.(type) {
	case string:
		return v, true, nil
	case bool:
		return strconv.FormatBool(v), true, nil
	case int:
		return strconv.Itoa(v), true, nil
	case int64:
		return strconv.FormatInt(v, 10), true, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true, nil
	case []string:
		return strings.Join(v, ","), len(v) > 0, nil
	case fmt.Stringer:
		return v.String(), true, nil
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "", false, nil
		}

		return formatParam(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, rv.Type().Bits()), true, nil
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())

		for i := range rv.Len() {
			part, ok, err := formatParam(rv.Index(i).Interface())
			if err != nil {
				return "", false, err
			}

			if ok {
				parts = append(parts, part)
			}
		}

		return strings.Join(parts, ","), len(parts) > 0, nil
	default:
		return "", false, fmt.Errorf("%w: %T", ErrUnsupportedParam, value)
	}
}
