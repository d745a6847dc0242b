// Package figmaclient provides the main entry point for creating Figma API clients
package figmaclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/figma-client/internal/client"
	"github.com/fivetwenty-io/figma-client/internal/constants"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// New creates a new Figma API client. The config is copied; zero-valued
// BaseURL falls back to the public API endpoint.
func New(ctx context.Context, config *figma.Config) (figma.Client, error) {
	if config == nil {
		return nil, figma.ErrConfigRequired
	}

	normalized := *config

	baseURL, err := normalizeBaseURL(normalized.BaseURL)
	if err != nil {
		return nil, err
	}

	normalized.BaseURL = baseURL

	if normalized.AccessToken == "" && (normalized.OAuth2 == nil || normalized.OAuth2.RefreshToken == "") {
		return nil, figma.ErrAccessTokenRequired
	}

	// Use the internal client implementation
	client, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// normalizeBaseURL trims the trailing slash and adds a scheme when missing.
func normalizeBaseURL(raw string) (string, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if baseURL == "" {
		return constants.DefaultBaseURL, nil
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", figma.ErrBaseURLInvalid, raw)
	}

	return baseURL, nil
}

// NewWithToken creates a new client for the public API with a personal access
// token or OAuth2 access token and default settings.
func NewWithToken(ctx context.Context, token string) (figma.Client, error) {
	config := figma.DefaultConfig()
	config.AccessToken = token

	return New(ctx, config)
}

// NewWithOAuth2 creates a new client that renews its access token through the
// OAuth2 refresh flow.
func NewWithOAuth2(ctx context.Context, clientID, clientSecret, refreshToken string) (figma.Client, error) {
	config := figma.DefaultConfig()
	config.OAuth2 = &figma.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RefreshToken: refreshToken,
	}

	return New(ctx, config)
}
