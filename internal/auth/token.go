package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// expiryBuffer treats tokens that expire this soon as already expired.
const expiryBuffer = 30 * time.Second

// Static errors for err113 compliance.
var (
	ErrNoToken          = errors.New("no access token available")
	ErrNoRefreshToken   = errors.New("no refresh token available")
	ErrTokenURLRequired = errors.New("token URL is required for refresh")
)

// TokenManager supplies access tokens to the HTTP layer.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// Token is an OAuth2 access token with its refresh token.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the token can be used for at least expiryBuffer more.
// A zero ExpiresAt never expires.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.Set(nil)
}

// StaticTokenManager always returns the same personal access token.
type StaticTokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenManager creates a manager for a fixed token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == "" {
		return "", ErrNoToken
	}

	return m.token, nil
}

// RefreshToken is a no-op; static tokens cannot be refreshed.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return nil
}

// SetToken replaces the token. The expiry is ignored.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}
