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

func TestVariablesClient_GetLocal(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/file-1/variables/local", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": 200, "error": false, "meta": {
			"variables": {"VariableID:1:1": {"id": "VariableID:1:1", "name": "color/primary", "resolvedType": "COLOR", "valuesByMode": {"1:0": {"r": 1, "g": 0, "b": 0, "a": 1}}}},
			"variableCollections": {"VariableCollectionId:1:0": {"id": "VariableCollectionId:1:0", "name": "Tokens", "modes": [{"modeId": "1:0", "name": "Light"}], "defaultModeId": "1:0"}}
		}}`))
	}))
	defer server.Close()

	variables := NewVariablesClient(internalhttp.NewClient(server.URL, nil))

	local, err := variables.GetLocal(context.Background(), "file-1")
	require.NoError(t, err)
	require.Contains(t, local.Variables, "VariableID:1:1")
	assert.Equal(t, "COLOR", local.Variables["VariableID:1:1"].ResolvedType)
	assert.Equal(t, "Light", local.VariableCollections["VariableCollectionId:1:0"].Modes[0].Name)
}

func TestVariablesClient_GetPublished(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/file-1/variables/published", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": 200, "error": false, "meta": {
			"variables": {"v1": {"id": "v1", "subscribed_id": "s1", "name": "spacing/sm", "resolvedDataType": "FLOAT"}},
			"variableCollections": {}
		}}`))
	}))
	defer server.Close()

	variables := NewVariablesClient(internalhttp.NewClient(server.URL, nil))

	published, err := variables.GetPublished(context.Background(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", published.Variables["v1"].SubscribedID)
	assert.Empty(t, published.VariableCollections)
}

func TestVariablesClient_Update(t *testing.T) {
	t.Parallel()

	var localCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == "GET" && r.URL.Path == "/v1/files/file-1/variables/local":
			localCalls.Add(1)
			_, _ = w.Write([]byte(`{"meta": {"variables": {}, "variableCollections": {}}}`))
		case r.Method == "POST" && r.URL.Path == "/v1/files/file-1/variables":
			var body map[string][]map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if assert.Len(t, body["variables"], 1) {
				assert.Equal(t, "CREATE", body["variables"][0]["action"])
				assert.Equal(t, "tmp_var", body["variables"][0]["id"])
				assert.Equal(t, "FLOAT", body["variables"][0]["resolvedType"])
			}

			_, _ = w.Write([]byte(`{"status": 200, "error": false, "meta": {"tempIdToRealId": {"tmp_var": "VariableID:9:9"}}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	variables := NewVariablesClient(internalhttp.NewClient(server.URL, nil))
	ctx := context.Background()

	_, err := variables.GetLocal(ctx, "file-1")
	require.NoError(t, err)

	result, err := variables.Update(ctx, "file-1", &figma.VariablesUpdateRequest{
		Variables: []figma.VariableChange{{
			Action: "CREATE",
			ID:     "tmp_var",
			Fields: map[string]any{"name": "spacing/md", "resolvedType": "FLOAT"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "VariableID:9:9", result.TempIDToRealID["tmp_var"])

	_, err = variables.GetLocal(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), localCalls.Load())
}
