package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// AnalyticsClient implements figma.AnalyticsClient.
type AnalyticsClient struct {
	httpClient *http.Client
}

// NewAnalyticsClient creates a new analytics client.
func NewAnalyticsClient(httpClient *http.Client) *AnalyticsClient {
	return &AnalyticsClient{
		httpClient: httpClient,
	}
}

// ComponentActions implements figma.AnalyticsClient.ComponentActions.
func (c *AnalyticsClient) ComponentActions(ctx context.Context, fileKey string, params *figma.AnalyticsParams) ([]figma.AnalyticsRow, error) {
	return c.report(ctx, fileKey, "component/actions", params)
}

// ComponentUsages implements figma.AnalyticsClient.ComponentUsages.
func (c *AnalyticsClient) ComponentUsages(ctx context.Context, fileKey string, params *figma.AnalyticsParams) ([]figma.AnalyticsRow, error) {
	return c.report(ctx, fileKey, "component/usages", params)
}

// StyleActions implements figma.AnalyticsClient.StyleActions.
func (c *AnalyticsClient) StyleActions(ctx context.Context, fileKey string, params *figma.AnalyticsParams) ([]figma.AnalyticsRow, error) {
	return c.report(ctx, fileKey, "style/actions", params)
}

// VariableActions implements figma.AnalyticsClient.VariableActions.
func (c *AnalyticsClient) VariableActions(ctx context.Context, fileKey string, params *figma.AnalyticsParams) ([]figma.AnalyticsRow, error) {
	return c.report(ctx, fileKey, "variable/actions", params)
}

// report walks every page of one analytics report. Pages carry "rows", a
// top-level "cursor" and a "next_page" flag.
func (c *AnalyticsClient) report(ctx context.Context, fileKey, report string, params *figma.AnalyticsParams) ([]figma.AnalyticsRow, error) {
	path := "/v1/analytics/libraries/" + url.PathEscape(fileKey) + "/" + report

	req, err := figma.NewRequest("GET", path, params.ToParams(), nil)
	if err != nil {
		return nil, err
	}

	rows, err := figma.CollectAll[figma.AnalyticsRow](ctx, c.httpClient, figma.PageRequest{
		Request:  req,
		ItemsKey: "rows",
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s analytics: %w", report, err)
	}

	return rows, nil
}
