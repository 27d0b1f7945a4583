package strava

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stridecal/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("client-id", "client-secret",
		WithBaseURLs(srv.URL+"/oauth/token", srv.URL+"/api/v3"),
		WithHTTPClient(srv.Client()),
	)
}

func TestExchangeCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "s-acc",
			"refresh_token": "s-ref",
			"expires_at":    1735689600,
			"athlete":       map[string]any{"id": 4242},
		})
	}))

	pair, athleteID, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, "s-acc", pair.AccessToken)
	assert.Equal(t, "s-ref", pair.RefreshToken)
	assert.Equal(t, "4242", athleteID)
	assert.Equal(t, time.Unix(1735689600, 0).UTC(), pair.Expiry)
}

func TestRefreshTokens(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "s-new",
			"refresh_token": "s-rotated",
		})
	}))

	pair, err := client.RefreshTokens(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "s-new", pair.AccessToken)
	assert.Equal(t, "s-rotated", pair.RefreshToken)
}

func TestRefreshTokens_Failure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"message": "Bad Request"})
	}))

	_, err := client.RefreshTokens(context.Background(), "revoked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad Request")
}

func TestGetActivity(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/activities/1001", r.URL.Path)
		assert.Equal(t, "Bearer the-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":           1001,
			"name":         "Test Run",
			"type":         "Run",
			"start_date":   "2023-01-01T10:00:00Z",
			"elapsed_time": 3600,
			"distance":     10000.0,
		})
	}))

	activity, err := client.GetActivity(context.Background(), "the-token", 1001)
	require.NoError(t, err)

	assert.Equal(t, int64(1001), activity.ID)
	assert.Equal(t, "Test Run", activity.Name)
	assert.Equal(t, "Run", activity.Kind)
	assert.Equal(t, time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC), activity.StartDate)
	assert.Equal(t, int64(3600), activity.ElapsedSeconds)
	assert.Equal(t, 10000.0, activity.DistanceMeters)
}

func TestGetActivity_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetActivity(context.Background(), "the-token", 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetActivity_Unauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.GetActivity(context.Background(), "stale", 9)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}
