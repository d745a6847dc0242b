package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

func TestFilesClient_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/abc123", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "2", r.URL.Query().Get("depth"))
		assert.Equal(t, "42", r.URL.Query().Get("version"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Design System",
			"role": "owner",
			"version": "42",
			"schemaVersion": 0,
			"document": {"id": "0:0", "type": "DOCUMENT"},
			"components": {"1:2": {"key": "k1", "name": "Button", "description": ""}}
		}`))
	}))
	defer server.Close()

	client := &Client{httpClient: internalhttp.NewClient(server.URL, nil)}
	files := NewFilesClient(client.httpClient)

	file, err := files.Get(context.Background(), "abc123", &figma.GetFileParams{Depth: 2, Version: "42"})
	require.NoError(t, err)
	assert.Equal(t, "Design System", file.Name)
	assert.Equal(t, "42", file.Version)
	assert.Equal(t, "Button", file.Components["1:2"].Name)
	assert.JSONEq(t, `{"id": "0:0", "type": "DOCUMENT"}`, string(file.Document))
}

func TestFilesClient_Get_NotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status": 404, "err": "Not found"}`))
	}))
	defer server.Close()

	files := NewFilesClient(internalhttp.NewClient(server.URL, nil))

	file, err := files.Get(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Nil(t, file)
	assert.True(t, figma.IsNotFound(err))
	assert.Contains(t, err.Error(), "getting file")

	apiErr, ok := figma.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestFilesClient_GetNodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/abc123/nodes", r.URL.Path)
		assert.Equal(t, "1:2,3:4", r.URL.Query().Get("ids"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Design System",
			"nodes": {
				"1:2": {"document": {"id": "1:2"}},
				"3:4": {"document": {"id": "3:4"}}
			}
		}`))
	}))
	defer server.Close()

	files := NewFilesClient(internalhttp.NewClient(server.URL, nil))

	nodes, err := files.GetNodes(context.Background(), "abc123", []string{"1:2", "3:4"}, nil)
	require.NoError(t, err)
	assert.Len(t, nodes.Nodes, 2)
	assert.Contains(t, nodes.Nodes, "3:4")
}

func TestFilesClient_GetImages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/abc123", r.URL.Path)
		assert.Equal(t, "1:2,1:3", r.URL.Query().Get("ids"))
		assert.Equal(t, "2", r.URL.Query().Get("scale"))
		assert.Equal(t, "svg", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"err": null, "images": {"1:2": "https://cdn.example.com/1-2.svg", "1:3": null}}`))
	}))
	defer server.Close()

	files := NewFilesClient(internalhttp.NewClient(server.URL, nil))

	images, err := files.GetImages(context.Background(), "abc123", &figma.ImageParams{
		IDs:    []string{"1:2", "1:3"},
		Scale:  2,
		Format: "svg",
	})
	require.NoError(t, err)
	assert.Nil(t, images.Err)
	require.NotNil(t, images.Images["1:2"])
	assert.Equal(t, "https://cdn.example.com/1-2.svg", *images.Images["1:2"])
	assert.Nil(t, images.Images["1:3"])
}

func TestFilesClient_ListVersions(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/abc123/versions", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"versions": [
			{"id": "2", "created_at": "2024-03-01T10:00:00Z", "label": "Release", "user": {"id": "u1", "handle": "ana"}},
			{"id": "1", "created_at": "2024-02-01T10:00:00Z", "label": "", "user": {"id": "u1", "handle": "ana"}}
		]}`))
	}))
	defer server.Close()

	files := NewFilesClient(internalhttp.NewClient(server.URL, nil))

	versions, err := files.ListVersions(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "Release", versions[0].Label)
	assert.Equal(t, "ana", versions[1].User.Handle)
}

func TestFilesClient_Comments(t *testing.T) {
	t.Parallel()

	var listCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == "GET" && r.URL.Path == "/v1/files/abc123/comments":
			listCalls.Add(1)
			_, _ = w.Write([]byte(`{"comments": [{"id": "c1", "file_key": "abc123", "message": "Looks good"}]}`))
		case r.Method == "POST" && r.URL.Path == "/v1/files/abc123/comments":
			var body figma.CommentCreateRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Ship it", body.Message)

			_, _ = w.Write([]byte(`{"id": "c2", "file_key": "abc123", "message": "Ship it"}`))
		case r.Method == "DELETE" && r.URL.Path == "/v1/files/abc123/comments/c2":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	files := NewFilesClient(internalhttp.NewClient(server.URL, nil))
	ctx := context.Background()

	comments, err := files.ListComments(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Looks good", comments[0].Message)

	comment, err := files.PostComment(ctx, "abc123", &figma.CommentCreateRequest{Message: "Ship it"})
	require.NoError(t, err)
	assert.Equal(t, "c2", comment.ID)

	// The new comment makes the cached listing stale.
	_, err = files.ListComments(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int32(2), listCalls.Load())

	err = files.DeleteComment(ctx, "abc123", "c2")
	require.NoError(t, err)
}
