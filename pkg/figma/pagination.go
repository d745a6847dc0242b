package figma

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// Executor runs a single request and returns the raw response body.
type Executor interface {
	Execute(ctx context.Context, req *RequestDescriptor) (json.RawMessage, error)
}

// Cursor is an opaque page marker. Numeric cursors are kept in decimal form.
type Cursor string

// CursorFunc reads the next cursor from a page. ok=false ends the traversal.
type CursorFunc func(page json.RawMessage) (cursor Cursor, ok bool)

// PageRequest configures a paginated traversal.
type PageRequest struct {
	// Request is the first page's request. It is never modified.
	Request *RequestDescriptor
	// ItemsKey is a dotted path to the items array, e.g. "meta.components".
	// Empty means the body itself is the array.
	ItemsKey string
	// CursorParam is the query parameter carrying the cursor. Empty picks it
	// from each page with CursorParamFor.
	CursorParam string
	// NextCursor overrides DefaultNextCursor.
	NextCursor CursorFunc
	// MaxPages stops the traversal after this many pages when positive.
	MaxPages int
}

// Paginate returns a lazy sequence of pages. Each range over the result starts
// from the first page; breaking out of the loop stops further requests. A
// failed page is yielded as the final element.
func Paginate(ctx context.Context, exec Executor, pr PageRequest) iter.Seq2[[]json.RawMessage, error] {
	return func(yield func([]json.RawMessage, error) bool) {
		if pr.Request == nil {
			yield(nil, ErrRequestRequired)

			return
		}

		param := pr.CursorParam

		next := pr.NextCursor
		if next == nil {
			next = DefaultNextCursor
		}

		req := pr.Request
		prev := Cursor(req.Query.Get(cmp.Or(param, constants.DefaultCursorParam)))

		for page := 0; pr.MaxPages <= 0 || page < pr.MaxPages; page++ {
			body, err := exec.Execute(ctx, req)
			if err != nil {
				yield(nil, err)

				return
			}

			items, err := ExtractItems(body, pr.ItemsKey)
			if err != nil {
				yield(nil, fmt.Errorf("page %d of %s: %w", page+1, req.Path, err))

				return
			}

			if !yield(items, nil) {
				return
			}

			cursor, ok := next(body)
			if !ok || cursor == "" || cursor == prev {
				return
			}

			prev = cursor

			name := param
			if name == "" {
				name = CursorParamFor(body)
			}

			req = req.WithCursor(name, string(cursor))
		}
	}
}

// PaginateItems flattens Paginate into single items.
func PaginateItems(ctx context.Context, exec Executor, pr PageRequest) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		for items, err := range Paginate(ctx, exec, pr) {
			if err != nil {
				yield(nil, err)

				return
			}

			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// PaginateAs decodes every page into []T.
func PaginateAs[T any](ctx context.Context, exec Executor, pr PageRequest) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for items, err := range Paginate(ctx, exec, pr) {
			if err != nil {
				yield(nil, err)

				return
			}

			decoded := make([]T, 0, len(items))

			for _, item := range items {
				var v T

				err = json.Unmarshal(item, &v)
				if err != nil {
					yield(nil, fmt.Errorf("decoding page item: %w", err))

					return
				}

				decoded = append(decoded, v)
			}

			if !yield(decoded, nil) {
				return
			}
		}
	}
}

// CollectAll drains every page into one slice.
func CollectAll[T any](ctx context.Context, exec Executor, pr PageRequest) ([]T, error) {
	var all []T

	for page, err := range PaginateAs[T](ctx, exec, pr) {
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
	}

	return all, nil
}

// ExtractItems returns the array found at the dotted path key. A missing or
// null array is an empty page; a non-array value is an error.
func ExtractItems(body json.RawMessage, key string) ([]json.RawMessage, error) {
	raw := body

	if key != "" {
		var (
			found bool
			err   error
		)

		raw, found, err = lookup(body, strings.Split(key, "."))
		if err != nil {
			return nil, err
		}

		if !found {
			return nil, fmt.Errorf("%w: %s", ErrItemsKeyNotFound, key)
		}
	}

	if isNull(raw) {
		return []json.RawMessage{}, nil
	}

	var items []json.RawMessage

	err := json.Unmarshal(raw, &items)
	if err != nil {
		return nil, fmt.Errorf("items at %q are not an array: %w", key, err)
	}

	return items, nil
}

// DefaultNextCursor looks for a cursor in meta.cursor.after, meta.next_cursor,
// meta.cursor, pagination.next_cursor and finally a top-level cursor that is
// honoured only while next_page is not false.
func DefaultNextCursor(page json.RawMessage) (Cursor, bool) {
	for _, path := range [][]string{
		{"meta", "cursor", "after"},
		{"meta", "next_cursor"},
		{"meta", "cursor"},
		{"pagination", "next_cursor"},
	} {
		raw, found, _ := lookup(page, path)
		if !found {
			continue
		}

		if cursor, ok := scalarCursor(raw); ok {
			return cursor, true
		}
	}

	nextPage, found, _ := lookup(page, []string{"next_page"})
	if found && strings.TrimSpace(string(nextPage)) == "false" {
		return "", false
	}

	raw, found, _ := lookup(page, []string{"cursor"})
	if !found {
		return "", false
	}

	return scalarCursor(raw)
}

// CursorParamFor names the query parameter that takes page's cursor back:
// "after" when the page carries a library cursor in meta.cursor.after,
// otherwise "cursor".
func CursorParamFor(page json.RawMessage) string {
	_, found, _ := lookup(page, []string{"meta", "cursor", "after"})
	if found {
		return constants.LibraryCursorParam
	}

	return constants.DefaultCursorParam
}

// PaginateOption configures RequestClient.Paginate.
type PaginateOption func(*PaginateConfig)

// PaginateConfig is the result of applying PaginateOptions.
type PaginateConfig struct {
	CursorParam    string
	MaxPages       int
	RequestOptions []RequestOption
}

// NewPaginateConfig applies opts in order.
func NewPaginateConfig(opts ...PaginateOption) *PaginateConfig {
	config := &PaginateConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithCursorParam sets the query parameter that carries the cursor.
func WithCursorParam(name string) PaginateOption {
	return func(c *PaginateConfig) {
		c.CursorParam = name
	}
}

// WithMaxPages stops the traversal after n pages when positive.
func WithMaxPages(n int) PaginateOption {
	return func(c *PaginateConfig) {
		c.MaxPages = n
	}
}

// WithPageRequestOptions applies opts to every page request.
func WithPageRequestOptions(opts ...RequestOption) PaginateOption {
	return func(c *PaginateConfig) {
		c.RequestOptions = append(c.RequestOptions, opts...)
	}
}

// CursorAt returns a CursorFunc reading the scalar at a dotted path.
func CursorAt(key string) CursorFunc {
	path := strings.Split(key, ".")

	return func(page json.RawMessage) (Cursor, bool) {
		raw, found, _ := lookup(page, path)
		if !found {
			return "", false
		}

		return scalarCursor(raw)
	}
}

func lookup(body json.RawMessage, path []string) (json.RawMessage, bool, error) {
	current := body

	for _, segment := range path {
		var object map[string]json.RawMessage

		err := json.Unmarshal(current, &object)
		if err != nil {
			return nil, false, fmt.Errorf("reading %q: %w", segment, err)
		}

		next, ok := object[segment]
		if !ok {
			return nil, false, nil
		}

		current = next
	}

	return current, true, nil
}

func scalarCursor(raw json.RawMessage) (Cursor, bool) {
	if isNull(raw) {
		return "", false
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return Cursor(s), s != ""
	}

	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		if i, err := n.Int64(); err == nil {
			return Cursor(strconv.FormatInt(i, 10)), true
		}

		return Cursor(n.String()), true
	}

	return "", false
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))

	return trimmed == "" || trimmed == "null"
}
