package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// VariablesClient implements figma.VariablesClient.
type VariablesClient struct {
	httpClient *http.Client
}

// NewVariablesClient creates a new variables client.
func NewVariablesClient(httpClient *http.Client) *VariablesClient {
	return &VariablesClient{
		httpClient: httpClient,
	}
}

// GetLocal implements figma.VariablesClient.GetLocal.
func (c *VariablesClient) GetLocal(ctx context.Context, fileKey string) (*figma.LocalVariables, error) {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/variables/local"

	var resp metaEnvelope[figma.LocalVariables]

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("getting local variables: %w", err)
	}

	return &resp.Meta, nil
}

// GetPublished implements figma.VariablesClient.GetPublished.
func (c *VariablesClient) GetPublished(ctx context.Context, fileKey string) (*figma.PublishedVariables, error) {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/variables/published"

	var resp metaEnvelope[figma.PublishedVariables]

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("getting published variables: %w", err)
	}

	return &resp.Meta, nil
}

// Update implements figma.VariablesClient.Update. A successful change evicts
// cached local and published variables of the file.
func (c *VariablesClient) Update(ctx context.Context, fileKey string, request *figma.VariablesUpdateRequest) (*figma.VariablesUpdateResult, error) {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/variables"

	var resp metaEnvelope[figma.VariablesUpdateResult]

	err := fetch(ctx, c.httpClient, "POST", path, nil, request, &resp)
	if err != nil {
		return nil, fmt.Errorf("updating variables: %w", err)
	}

	return &resp.Meta, nil
}
