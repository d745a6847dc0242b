package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// DefaultRefreshURL is Figma's OAuth2 refresh endpoint.
const DefaultRefreshURL = "https://api.figma.com/v1/oauth/refresh"

// OAuth2Config configures the refresh-token flow.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	RefreshToken string
	// AccessToken seeds the store so the first request needs no refresh.
	AccessToken string
	// ExpiresAt is the expiry of AccessToken, zero when unknown.
	ExpiresAt time.Time
	// HTTPClient is used for token requests. Nil uses a client with a short timeout.
	HTTPClient *http.Client
}

// OAuth2TokenManager renews access tokens with a refresh token.
type OAuth2TokenManager struct {
	config     *oauth2.Config
	store      *TokenStore
	refresh    string
	httpClient *http.Client
	mu         sync.Mutex
}

// NewOAuth2TokenManager creates a manager. An empty TokenURL uses DefaultRefreshURL.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultRefreshURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	manager := &OAuth2TokenManager{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:      NewTokenStore(),
		refresh:    config.RefreshToken,
		httpClient: httpClient,
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			ExpiresAt:    config.ExpiresAt,
		})
	}

	return manager
}

// GetToken returns a valid access token, refreshing if necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken exchanges the refresh token for a new access token.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	refresh := m.refresh
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refresh = current.RefreshToken
	}

	if refresh == "" {
		return ErrNoRefreshToken
	}

	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	issued, err := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}).Token()
	if err != nil {
		return fmt.Errorf("refreshing access token: %w", err)
	}

	if issued.RefreshToken != "" {
		refresh = issued.RefreshToken
	}

	m.refresh = refresh
	m.store.Set(&Token{
		AccessToken:  issued.AccessToken,
		TokenType:    issued.TokenType,
		RefreshToken: refresh,
		ExpiresAt:    issued.Expiry,
	})

	return nil
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: m.refresh,
		ExpiresAt:    expiresAt,
	})
}

// Current returns the stored token, or nil.
func (m *OAuth2TokenManager) Current() *Token {
	return m.store.Get()
}
