package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// WebhooksClient implements figma.WebhooksClient.
type WebhooksClient struct {
	httpClient *http.Client
}

// NewWebhooksClient creates a new webhooks client.
func NewWebhooksClient(httpClient *http.Client) *WebhooksClient {
	return &WebhooksClient{
		httpClient: httpClient,
	}
}

// Get implements figma.WebhooksClient.Get.
func (c *WebhooksClient) Get(ctx context.Context, webhookID string) (*figma.Webhook, error) {
	path := "/v2/webhooks/" + url.PathEscape(webhookID)

	var webhook figma.Webhook

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &webhook)
	if err != nil {
		return nil, fmt.Errorf("getting webhook: %w", err)
	}

	return &webhook, nil
}

// Create implements figma.WebhooksClient.Create.
func (c *WebhooksClient) Create(ctx context.Context, request *figma.WebhookCreateRequest) (*figma.Webhook, error) {
	var webhook figma.Webhook

	err := fetch(ctx, c.httpClient, "POST", "/v2/webhooks", nil, request, &webhook)
	if err != nil {
		return nil, fmt.Errorf("creating webhook: %w", err)
	}

	c.invalidateTeam(ctx, webhook.TeamID)

	return &webhook, nil
}

// Update implements figma.WebhooksClient.Update.
func (c *WebhooksClient) Update(ctx context.Context, webhookID string, request *figma.WebhookUpdateRequest) (*figma.Webhook, error) {
	path := "/v2/webhooks/" + url.PathEscape(webhookID)

	var webhook figma.Webhook

	err := fetch(ctx, c.httpClient, "PUT", path, nil, request, &webhook)
	if err != nil {
		return nil, fmt.Errorf("updating webhook: %w", err)
	}

	c.invalidateTeam(ctx, webhook.TeamID)

	return &webhook, nil
}

// Delete implements figma.WebhooksClient.Delete.
func (c *WebhooksClient) Delete(ctx context.Context, webhookID string) error {
	path := "/v2/webhooks/" + url.PathEscape(webhookID)

	err := fetch(ctx, c.httpClient, "DELETE", path, nil, nil, nil)
	if err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}

	return nil
}

// ListTeam implements figma.WebhooksClient.ListTeam.
func (c *WebhooksClient) ListTeam(ctx context.Context, teamID string) ([]figma.Webhook, error) {
	path := "/v2/teams/" + url.PathEscape(teamID) + "/webhooks"

	var resp struct {
		Webhooks []figma.Webhook `json:"webhooks"`
	}

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing team webhooks: %w", err)
	}

	return resp.Webhooks, nil
}

// ListRequests implements figma.WebhooksClient.ListRequests.
func (c *WebhooksClient) ListRequests(ctx context.Context, webhookID string) ([]figma.WebhookRequest, error) {
	path := "/v2/webhooks/" + url.PathEscape(webhookID) + "/requests"

	var resp struct {
		Requests []figma.WebhookRequest `json:"requests"`
	}

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing webhook requests: %w", err)
	}

	return resp.Requests, nil
}

// invalidateTeam drops the cached team listing, which lives outside the
// webhook's own path.
func (c *WebhooksClient) invalidateTeam(ctx context.Context, teamID string) {
	if teamID == "" {
		return
	}

	_, _ = c.httpClient.InvalidateCache(ctx, figma.CacheKey("GET", "/v2/teams/"+url.PathEscape(teamID)+"/webhooks", nil))
}
