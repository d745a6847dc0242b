package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/figma-client/internal/constants"
	"github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// ComponentsClient implements figma.ComponentsClient.
type ComponentsClient struct {
	httpClient *http.Client
}

// NewComponentsClient creates a new components client.
func NewComponentsClient(httpClient *http.Client) *ComponentsClient {
	return &ComponentsClient{
		httpClient: httpClient,
	}
}

// ListTeamComponents implements figma.ComponentsClient.ListTeamComponents.
func (c *ComponentsClient) ListTeamComponents(ctx context.Context, teamID string, params *figma.PageParams) (*figma.ComponentsPage, error) {
	path := "/v1/teams/" + url.PathEscape(teamID) + "/components"

	var resp metaEnvelope[figma.ComponentsPage]

	err := fetch(ctx, c.httpClient, "GET", path, params.ToParams(), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing team components: %w", err)
	}

	return &resp.Meta, nil
}

// ListAllTeamComponents implements figma.ComponentsClient.ListAllTeamComponents.
func (c *ComponentsClient) ListAllTeamComponents(ctx context.Context, teamID string) ([]figma.PublishedComponent, error) {
	path := "/v1/teams/" + url.PathEscape(teamID) + "/components"

	components, err := c.collect(ctx, path, "meta.components")
	if err != nil {
		return nil, fmt.Errorf("listing all team components: %w", err)
	}

	return components, nil
}

// ListFileComponents implements figma.ComponentsClient.ListFileComponents.
func (c *ComponentsClient) ListFileComponents(ctx context.Context, fileKey string) ([]figma.PublishedComponent, error) {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/components"

	var resp metaEnvelope[struct {
		Components []figma.PublishedComponent `json:"components"`
	}]

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing file components: %w", err)
	}

	return resp.Meta.Components, nil
}

// Get implements figma.ComponentsClient.Get.
func (c *ComponentsClient) Get(ctx context.Context, key string) (*figma.PublishedComponent, error) {
	path := "/v1/components/" + url.PathEscape(key)

	var resp metaEnvelope[figma.PublishedComponent]

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("getting component: %w", err)
	}

	return &resp.Meta, nil
}

// ListTeamComponentSets implements figma.ComponentsClient.ListTeamComponentSets.
func (c *ComponentsClient) ListTeamComponentSets(ctx context.Context, teamID string) ([]figma.PublishedComponent, error) {
	path := "/v1/teams/" + url.PathEscape(teamID) + "/component_sets"

	sets, err := c.collect(ctx, path, "meta.component_sets")
	if err != nil {
		return nil, fmt.Errorf("listing team component sets: %w", err)
	}

	return sets, nil
}

// ListTeamStyles implements figma.ComponentsClient.ListTeamStyles.
func (c *ComponentsClient) ListTeamStyles(ctx context.Context, teamID string) ([]figma.PublishedStyle, error) {
	path := "/v1/teams/" + url.PathEscape(teamID) + "/styles"

	req, err := figma.NewRequest("GET", path, map[string]any{"page_size": constants.MaxPageSize}, nil)
	if err != nil {
		return nil, err
	}

	styles, err := figma.CollectAll[figma.PublishedStyle](ctx, c.httpClient, figma.PageRequest{
		Request:     req,
		ItemsKey:    "meta.styles",
		CursorParam: constants.LibraryCursorParam,
	})
	if err != nil {
		return nil, fmt.Errorf("listing team styles: %w", err)
	}

	return styles, nil
}

func (c *ComponentsClient) collect(ctx context.Context, path, itemsKey string) ([]figma.PublishedComponent, error) {
	req, err := figma.NewRequest("GET", path, map[string]any{"page_size": constants.MaxPageSize}, nil)
	if err != nil {
		return nil, err
	}

	return figma.CollectAll[figma.PublishedComponent](ctx, c.httpClient, figma.PageRequest{
		Request:     req,
		ItemsKey:    itemsKey,
		CursorParam: constants.LibraryCursorParam,
	})
}
