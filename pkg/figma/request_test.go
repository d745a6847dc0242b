package figma_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

type nodeID string

type scale float32

func TestNewRequest(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		req, err := figma.NewRequest("", "v1/files/abc", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "GET", req.Method)
		assert.Equal(t, "/v1/files/abc", req.Path)
		assert.True(t, req.Idempotent)
		assert.Empty(t, req.Query)
		assert.Equal(t, "GET /v1/files/abc", req.CacheKey())
	})

	t.Run("mutations are not idempotent", func(t *testing.T) {
		t.Parallel()

		req, err := figma.NewRequest("post", "/v1/files/abc/comments", nil, map[string]string{"message": "hi"})
		require.NoError(t, err)
		assert.Equal(t, "POST", req.Method)
		assert.False(t, req.Idempotent)
		assert.NotNil(t, req.Body)
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()

		req, err := figma.NewRequest("POST", "/v1/files/abc/variables", nil, nil,
			figma.WithIdempotent(true),
			figma.WithHeader("X-Trace", "1"),
			figma.WithoutCache(),
			figma.WithRequestCacheTTL(time.Minute),
			figma.WithoutInvalidation(),
		)
		require.NoError(t, err)
		assert.True(t, req.Idempotent)
		assert.True(t, req.NoCache)
		assert.True(t, req.NoInvalidate)
		assert.Equal(t, time.Minute, req.CacheTTL)
		assert.Equal(t, "1", req.Headers["X-Trace"])
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := figma.NewRequest("GET", "  ", nil, nil)
		require.ErrorIs(t, err, figma.ErrPathRequired)
	})

	t.Run("unsupported parameter", func(t *testing.T) {
		t.Parallel()

		_, err := figma.NewRequest("GET", "/v1/files/abc", map[string]any{"bad": map[string]int{"a": 1}}, nil)
		require.ErrorIs(t, err, figma.ErrUnsupportedParam)
		assert.Contains(t, err.Error(), `"bad"`)
	})
}

func TestEncodeParams(t *testing.T) {
	t.Parallel()

	depth := 2
	var missing *int

	query, err := figma.EncodeParams(map[string]any{
		"ids":        []string{"1:2", "3:4"},
		"depth":      &depth,
		"skip":       missing,
		"nil":        nil,
		"geometry":   "paths",
		"branch":     true,
		"version":    int64(42),
		"scale":      1.5,
		"scale32":    scale(2),
		"node":       nodeID("5:6"),
		"page_size":  uint(30),
		"node_ids":   []nodeID{"7:8", "9:10"},
		"empty_list": []string{},
		"since":      time.Duration(0),
	})
	require.NoError(t, err)

	assert.Equal(t, "1:2,3:4", query.Get("ids"))
	assert.Equal(t, "2", query.Get("depth"))
	assert.False(t, query.Has("skip"))
	assert.False(t, query.Has("nil"))
	assert.False(t, query.Has("empty_list"))
	assert.Equal(t, "paths", query.Get("geometry"))
	assert.Equal(t, "true", query.Get("branch"))
	assert.Equal(t, "42", query.Get("version"))
	assert.Equal(t, "1.5", query.Get("scale"))
	assert.Equal(t, "2", query.Get("scale32"))
	assert.Equal(t, "5:6", query.Get("node"))
	assert.Equal(t, "30", query.Get("page_size"))
	assert.Equal(t, "7:8,9:10", query.Get("node_ids"))
	assert.Equal(t, "0s", query.Get("since"), "Stringer values use String")
}

func TestRequestDescriptor_WithCursor(t *testing.T) {
	t.Parallel()

	req, err := figma.NewRequest("GET", "/v1/teams/t1/components", map[string]any{"page_size": 10}, nil,
		figma.WithHeader("X-A", "1"))
	require.NoError(t, err)

	next := req.WithCursor("after", "20")
	assert.Equal(t, "20", next.Query.Get("after"))
	assert.Equal(t, "10", next.Query.Get("page_size"))
	assert.False(t, req.Query.Has("after"), "original is not modified")
	assert.NotEqual(t, req.CacheKey(), next.CacheKey())

	next.Headers["X-A"] = "2"
	assert.Equal(t, "1", req.Headers["X-A"])
}
