// Package strava implements the ActivityProvider port against the Strava v3
// REST API and OAuth endpoints.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
)

// Default Strava endpoints. Overridable for tests.
const (
	defaultTokenURL = "https://www.strava.com/oauth/token"
	defaultAPIURL   = "https://www.strava.com/api/v3"
)

// Ensure Client implements the port.
var _ driven.ActivityProvider = (*Client)(nil)

// Client talks to the Strava API on behalf of one OAuth application.
// Access tokens are per-call arguments so the same client serves all users.
type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	httpClient   *http.Client
	limiter      *RateLimiter
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURLs overrides the token and API endpoints (for tests).
func WithBaseURLs(tokenURL, apiURL string) Option {
	return func(c *Client) {
		c.tokenURL = tokenURL
		c.apiURL = apiURL
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Strava client for the given OAuth application.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		apiURL:       defaultAPIURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tokenResponse is the Strava token endpoint response shape. The athlete
// block is present on authorization-code exchanges only.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	Athlete      *struct {
		ID int64 `json:"id"`
	} `json:"athlete"`
}

// ExchangeCode exchanges an authorization code for tokens and the athlete id.
func (c *Client) ExchangeCode(ctx context.Context, code string) (domain.TokenPair, string, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")

	resp, err := c.postToken(ctx, data)
	if err != nil {
		return domain.TokenPair{}, "", err
	}

	athleteID := ""
	if resp.Athlete != nil {
		athleteID = strconv.FormatInt(resp.Athlete.ID, 10)
	}
	return tokenPair(resp), athleteID, nil
}

// RefreshTokens obtains a fresh token pair. Strava rotates the refresh token
// on every refresh.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("refresh_token", refreshToken)
	data.Set("grant_type", "refresh_token")

	resp, err := c.postToken(ctx, data)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return tokenPair(resp), nil
}

// GetActivity fetches one activity by id.
func (c *Client) GetActivity(ctx context.Context, accessToken string, activityID int64) (*domain.Activity, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/activities/%d", c.apiURL, activityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimitError(retryAfterSeconds(resp))
		}
		return nil, wrapStatus(resp.StatusCode, "activity %d", activityID)
	}

	var activity domain.Activity
	if err := json.NewDecoder(resp.Body).Decode(&activity); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	return &activity, nil
}

// postToken performs a form-encoded POST against the token endpoint.
func (c *Client) postToken(ctx context.Context, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &tokenResp, nil
}

func tokenPair(resp *tokenResponse) domain.TokenPair {
	pair := domain.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresAt > 0 {
		pair.Expiry = time.Unix(resp.ExpiresAt, 0).UTC()
	}
	return pair
}

func wrapStatus(status int, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s: status %d", domain.ErrAuthInvalid, what, status)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, what)
	default:
		return fmt.Errorf("%s: status %d", what, status)
	}
}

func retryAfterSeconds(resp *http.Response) int {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			return seconds
		}
	}
	return 0
}
