package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister saves refreshed tokens, typically to the CLI config file.
type ConfigPersister interface {
	UpdateToken(token string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps OAuth2TokenManager and persists every token it
// obtains.
type ConfigTokenManager struct {
	oauth2Manager   *OAuth2TokenManager
	configPersister ConfigPersister
	mutex           sync.Mutex
	lastToken       string
}

// NewConfigTokenManager creates a new config-persisting token manager.
func NewConfigTokenManager(config *OAuth2Config, configPersister ConfigPersister) *ConfigTokenManager {
	return &ConfigTokenManager{
		oauth2Manager:   NewOAuth2TokenManager(config),
		configPersister: configPersister,
		lastToken:       config.AccessToken,
	}
}

// GetToken returns a valid access token and persists it when it changed.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.oauth2Manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a token refresh.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.oauth2Manager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually sets the access token.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.oauth2Manager.SetToken(token, expiresAt)

	m.mutex.Lock()
	m.lastToken = token
	m.mutex.Unlock()
}

// IsTokenExpiringSoon returns true if the token expires within the given duration.
func (m *ConfigTokenManager) IsTokenExpiringSoon(within time.Duration) bool {
	token := m.oauth2Manager.Current()
	if token == nil {
		return true
	}

	if token.ExpiresAt.IsZero() {
		return false
	}

	return time.Now().Add(within).After(token.ExpiresAt)
}

func (m *ConfigTokenManager) persistIfChanged() {
	current := m.oauth2Manager.Current()
	if current == nil {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current.AccessToken == m.lastToken {
		return
	}

	err := m.persistToken(current)
	if err != nil {
		// The token is still usable for this process.
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)

		return
	}

	m.lastToken = current.AccessToken
}

func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateToken(token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	return nil
}
