package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefreshServer(t *testing.T, calls *atomic.Int32, accessToken string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		assert.Equal(t, "/v1/oauth/refresh", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		err := r.ParseForm()
		assert.NoError(t, err)
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh-token", r.Form.Get("refresh_token"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": accessToken,
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
}

func TestOAuth2TokenManager_GetToken(t *testing.T) {
	t.Parallel()

	t.Run("returns existing valid token", func(t *testing.T) {
		t.Parallel()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			AccessToken: "existing-token",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "existing-token", token)
	})

	t.Run("refreshes expired token using refresh token", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := newRefreshServer(t, &calls, "new-access-token")
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			TokenURL:     server.URL + "/v1/oauth/refresh",
			RefreshToken: "old-refresh-token",
			AccessToken:  "expired-token",
			ExpiresAt:    time.Now().Add(-time.Hour),
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new-access-token", token)

		// The refreshed token is reused until it expires.
		token, err = manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new-access-token", token)
		assert.Equal(t, int32(1), calls.Load())

		current := manager.Current()
		require.NotNil(t, current)
		assert.Equal(t, "old-refresh-token", current.RefreshToken)
		assert.True(t, current.ExpiresAt.After(time.Now()))
	})

	t.Run("no refresh token available", func(t *testing.T) {
		t.Parallel()

		manager := NewOAuth2TokenManager(&OAuth2Config{})

		_, err := manager.GetToken(context.Background())
		require.ErrorIs(t, err, ErrNoRefreshToken)
	})

	t.Run("handles token endpoint error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			RefreshToken: "revoked",
		})

		_, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refreshing access token")
	})
}

func TestOAuth2TokenManager_SetToken(t *testing.T) {
	t.Parallel()

	manager := NewOAuth2TokenManager(&OAuth2Config{RefreshToken: "r"})
	manager.SetToken("manual", time.Now().Add(time.Hour))

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "manual", token)
	assert.Equal(t, "r", manager.store.Get().RefreshToken)
}

type recordingPersister struct {
	tokens []string
}

func (p *recordingPersister) UpdateToken(token string, expiresAt time.Time, refreshToken string) error {
	p.tokens = append(p.tokens, token)

	return nil
}

func TestConfigTokenManager_PersistsRefreshedToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := newRefreshServer(t, &calls, "fresh-token")
	defer server.Close()

	persister := &recordingPersister{}
	manager := NewConfigTokenManager(&OAuth2Config{
		ClientID:     "client-id",
		TokenURL:     server.URL + "/v1/oauth/refresh",
		RefreshToken: "old-refresh-token",
	}, persister)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)

	_, err = manager.GetToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"fresh-token"}, persister.tokens)
	assert.False(t, manager.IsTokenExpiringSoon(time.Minute))
}
