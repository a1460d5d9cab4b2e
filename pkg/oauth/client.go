package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultExpiryBuffer is subtracted from a token's remaining lifetime when
// deciding whether to refresh, so a token is renewed before it lapses rather
// than expiring while a request is in flight.
const DefaultExpiryBuffer = 5 * time.Minute

const requestTimeout = 10 * time.Second

// Config holds the OAuth client credentials and endpoints for one provider.
// It is passed in explicitly at construction; this package never reads the
// environment.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
}

// TokenPair is the result of a successful token exchange. ExpiresIn is the
// relative lifetime in seconds as reported by the provider; callers convert
// it with ComputeExpiry and persist all three fields together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type ErrorKind int

const (
	// KindConfiguration: required client credentials are missing. No request
	// was attempted, so the stored refresh token is still good.
	KindConfiguration ErrorKind = iota
	// KindProviderRejection: the provider refused the exchange. The refresh
	// token cannot be retried.
	KindProviderRejection
	// KindTransport: the request never completed or the response could not be
	// parsed.
	KindTransport
)

// Error is the structured failure outcome of a token exchange. Exchange never
// panics; every failure mode is captured here so callers can render
// user-facing messaging and decide when to force re-authentication.
type Error struct {
	Kind           ErrorKind
	Message        string
	RequiresReauth bool
}

func (e *Error) Error() string {
	return e.Message
}

// RequiresReauth reports whether err signals that the stored refresh token is
// no longer usable and the user must go through the authorization flow again.
func RequiresReauth(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.RequiresReauth
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Exchange trades a refresh token for a new access/refresh token pair.
// No retries happen at this layer: some providers invalidate a refresh token
// the moment it is presented, so replaying the same exchange is never safe.
func (c *Client) Exchange(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, &Error{Kind: KindProviderRejection, Message: "no refresh token", RequiresReauth: true}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.requestToken(ctx, form)
}

// ExchangeCode trades an authorization code for the initial token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenPair, error) {
	if code == "" {
		return nil, &Error{Kind: KindProviderRejection, Message: "no authorization code", RequiresReauth: true}
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	if c.cfg.RedirectURL != "" {
		form.Set("redirect_uri", c.cfg.RedirectURL)
	}
	return c.requestToken(ctx, form)
}

// AuthorizationURL builds the provider consent URL for the code flow.
func (c *Client) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	params.Set("response_type", "code")
	if c.cfg.RedirectURL != "" {
		params.Set("redirect_uri", c.cfg.RedirectURL)
	}
	if state != "" {
		params.Set("state", state)
	}
	return c.cfg.AuthURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type oauthErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*TokenPair, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return nil, &Error{Kind: KindConfiguration, Message: "oauth client credentials are not configured"}
	}

	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error(), RequiresReauth: true}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error(), RequiresReauth: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error(), RequiresReauth: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:           KindProviderRejection,
			Message:        providerMessage(body, resp.StatusCode),
			RequiresReauth: true,
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("malformed token response: %v", err), RequiresReauth: true}
	}
	if tr.AccessToken == "" || tr.RefreshToken == "" {
		return nil, &Error{Kind: KindTransport, Message: "token response missing required fields", RequiresReauth: true}
	}

	return &TokenPair{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}

// providerMessage extracts a human-readable reason from an OAuth error body.
// The body is parsed tolerantly: any field may be absent, or the body may not
// be JSON at all.
func providerMessage(body []byte, status int) string {
	var eb oauthErrorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.ErrorDescription != "" {
			return eb.ErrorDescription
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return fmt.Sprintf("token endpoint returned status %d", status)
}

// IsExpired reports whether a token with the given absolute expiry needs a
// refresh. A nil expiry forces a refresh rather than risking a token of
// unknown age.
func IsExpired(expiresAt *time.Time, buffer time.Duration) bool {
	if expiresAt == nil {
		return true
	}
	return time.Until(*expiresAt) <= buffer
}

// ComputeExpiry converts a relative lifetime in seconds into an absolute
// expiry timestamp.
func ComputeExpiry(expiresInSeconds int64) time.Time {
	return time.Now().Add(time.Duration(expiresInSeconds) * time.Second)
}
