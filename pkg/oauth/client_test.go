package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(tokenURL string) Config {
	return Config{
		ClientID:     "portal-client",
		ClientSecret: "portal-secret",
		AuthURL:      "https://provider.test/oauth/authorize",
		TokenURL:     tokenURL,
		RedirectURL:  "https://portal.test/callback",
	}
}

func TestExchange_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))
		require.Equal(t, "portal-client", r.PostForm.Get("client_id"))
		require.Equal(t, "portal-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"A","refresh_token":"B","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	pair, err := client.Exchange(context.Background(), "old-refresh")
	require.NoError(t, err)
	require.Equal(t, "A", pair.AccessToken)
	require.Equal(t, "B", pair.RefreshToken)
	require.Equal(t, int64(3600), pair.ExpiresIn)
}

func TestExchange_ProviderRejection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "error description preferred",
			status:  http.StatusBadRequest,
			body:    `{"error":"invalid_grant","error_description":"Token expired"}`,
			message: "Token expired",
		},
		{
			name:    "error code fallback",
			status:  http.StatusBadRequest,
			body:    `{"error":"invalid_grant"}`,
			message: "invalid_grant",
		},
		{
			name:    "non-json body",
			status:  http.StatusBadGateway,
			body:    "upstream unavailable",
			message: "token endpoint returned status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(testConfig(srv.URL))
			pair, err := client.Exchange(context.Background(), "old-refresh")
			require.Nil(t, pair)

			var oe *Error
			require.ErrorAs(t, err, &oe)
			require.Equal(t, KindProviderRejection, oe.Kind)
			require.Equal(t, tt.message, oe.Message)
			require.True(t, oe.RequiresReauth)
			require.True(t, RequiresReauth(err))
		})
	}
}

func TestExchange_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(testConfig(srv.URL))
	pair, err := client.Exchange(context.Background(), "old-refresh")
	require.Nil(t, pair)

	var oe *Error
	require.ErrorAs(t, err, &oe)
	require.Equal(t, KindTransport, oe.Kind)
	require.True(t, oe.RequiresReauth)
}

func TestExchange_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Exchange(context.Background(), "old-refresh")

	var oe *Error
	require.ErrorAs(t, err, &oe)
	require.Equal(t, KindTransport, oe.Kind)
}

func TestExchange_MissingCredentials(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.ClientSecret = ""
	client := NewClient(cfg)

	_, err := client.Exchange(context.Background(), "old-refresh")

	var oe *Error
	require.ErrorAs(t, err, &oe)
	require.Equal(t, KindConfiguration, oe.Kind)
	require.False(t, oe.RequiresReauth)
	require.Zero(t, calls.Load(), "no network call should be made without credentials")
}

func TestExchange_EmptyRefreshToken(t *testing.T) {
	client := NewClient(testConfig("https://provider.test/oauth/token"))
	_, err := client.Exchange(context.Background(), "")
	require.True(t, RequiresReauth(err))
}

func TestExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, "the-code", r.PostForm.Get("code"))
		require.Equal(t, "https://portal.test/callback", r.PostForm.Get("redirect_uri"))

		w.Write([]byte(`{"access_token":"A","refresh_token":"B","expires_in":1200}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	pair, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, int64(1200), pair.ExpiresIn)
}

func TestAuthorizationURL(t *testing.T) {
	client := NewClient(testConfig("https://provider.test/oauth/token"))
	u := client.AuthorizationURL("xyz")
	require.Contains(t, u, "https://provider.test/oauth/authorize?")
	require.Contains(t, u, "client_id=portal-client")
	require.Contains(t, u, "response_type=code")
	require.Contains(t, u, "state=xyz")
}

func TestIsExpired(t *testing.T) {
	buffer := DefaultExpiryBuffer

	past := time.Now().Add(-time.Hour)
	require.True(t, IsExpired(&past, buffer))

	withinBuffer := time.Now().Add(buffer - time.Minute)
	require.True(t, IsExpired(&withinBuffer, buffer))

	beyondBuffer := time.Now().Add(buffer + time.Hour)
	require.False(t, IsExpired(&beyondBuffer, buffer))

	require.True(t, IsExpired(nil, buffer))
}

func TestComputeExpiry(t *testing.T) {
	before := time.Now()
	expiry := ComputeExpiry(3600)
	after := time.Now()

	require.False(t, expiry.Before(before.Add(3600*time.Second)))
	require.False(t, expiry.After(after.Add(3600*time.Second)))

	// No caching: two calls at different instants give different results.
	time.Sleep(5 * time.Millisecond)
	require.True(t, ComputeExpiry(3600).After(expiry))
}
