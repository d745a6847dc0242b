package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

func TestComponentsClient_ListTeamComponents(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/teams/team-1/components", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.Equal(t, "20", r.URL.Query().Get("after"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": 200,
			"error": false,
			"meta": {
				"components": [
					{"key": "k1", "file_key": "f1", "node_id": "1:2", "name": "Button"},
					{"key": "k2", "file_key": "f1", "node_id": "1:3", "name": "Input"}
				],
				"cursor": {"before": 20, "after": 22}
			}
		}`))
	}))
	defer server.Close()

	components := NewComponentsClient(internalhttp.NewClient(server.URL, nil))

	page, err := components.ListTeamComponents(context.Background(), "team-1", &figma.PageParams{PageSize: 10, After: 20})
	require.NoError(t, err)
	require.Len(t, page.Components, 2)
	assert.Equal(t, "Button", page.Components[0].Name)
	require.NotNil(t, page.Cursor)
	assert.Equal(t, 22, page.Cursor.After)
}

func TestComponentsClient_ListAllTeamComponents(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/teams/team-1/components", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("after") {
		case "":
			_, _ = w.Write([]byte(`{"status": 200, "error": false, "meta": {
				"components": [{"key": "k1", "name": "Button"}, {"key": "k2", "name": "Input"}],
				"cursor": {"after": 2}
			}}`))
		case "2":
			_, _ = w.Write([]byte(`{"status": 200, "error": false, "meta": {
				"components": [{"key": "k3", "name": "Card"}],
				"cursor": {}
			}}`))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("after"))
		}
	}))
	defer server.Close()

	components := NewComponentsClient(internalhttp.NewClient(server.URL, nil))

	all, err := components.ListAllTeamComponents(context.Background(), "team-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Card", all[2].Name)
	assert.Equal(t, int32(2), calls.Load())
}

func TestComponentsClient_ListAllTeamComponents_PageFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("after") == "" {
			_, _ = w.Write([]byte(`{"meta": {"components": [{"key": "k1"}], "cursor": {"after": 1}}}`))

			return
		}

		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status": 403, "err": "Invalid token"}`))
	}))
	defer server.Close()

	components := NewComponentsClient(internalhttp.NewClient(server.URL, nil))

	all, err := components.ListAllTeamComponents(context.Background(), "team-1")
	require.Error(t, err)
	assert.Nil(t, all)
	assert.True(t, figma.IsForbidden(err))
}

func TestComponentsClient_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/components/abc:def", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": 200, "error": false, "meta": {
			"key": "abc:def",
			"name": "Button",
			"containing_frame": {"name": "Buttons", "pageName": "Components"}
		}}`))
	}))
	defer server.Close()

	components := NewComponentsClient(internalhttp.NewClient(server.URL, nil))

	component, err := components.Get(context.Background(), "abc:def")
	require.NoError(t, err)
	assert.Equal(t, "Button", component.Name)
	require.NotNil(t, component.ContainingFrame)
	assert.Equal(t, "Components", component.ContainingFrame.PageName)
}

func TestComponentsClient_ListFileComponents(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/file-1/components", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": 200, "error": false, "meta": {"components": [{"key": "k1", "name": "Button"}]}}`))
	}))
	defer server.Close()

	components := NewComponentsClient(internalhttp.NewClient(server.URL, nil))

	list, err := components.ListFileComponents(context.Background(), "file-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "k1", list[0].Key)
}

func TestComponentsClient_ListTeamComponentSetsAndStyles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/teams/team-1/component_sets":
			_, _ = w.Write([]byte(`{"meta": {"component_sets": [{"key": "s1", "name": "Buttons"}]}}`))
		case "/v1/teams/team-1/styles":
			after := r.URL.Query().Get("after")
			if after == "" {
				_, _ = w.Write([]byte(`{"meta": {"styles": [{"key": "st1", "style_type": "FILL"}], "cursor": {"after": 5}}}`))

				return
			}

			assert.Equal(t, "5", after)
			_, _ = fmt.Fprint(w, `{"meta": {"styles": [{"key": "st2", "style_type": "TEXT"}]}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	components := NewComponentsClient(internalhttp.NewClient(server.URL, nil))
	ctx := context.Background()

	sets, err := components.ListTeamComponentSets(ctx, "team-1")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "Buttons", sets[0].Name)

	styles, err := components.ListTeamStyles(ctx, "team-1")
	require.NoError(t, err)
	require.Len(t, styles, 2)
	assert.Equal(t, "FILL", styles[0].StyleType)
	assert.Equal(t, "TEXT", styles[1].StyleType)
}
