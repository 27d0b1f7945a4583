package driven

import (
	"context"

	"github.com/custodia-labs/stridecal/internal/core/domain"
)

// ActivityProvider is the Strava side of the system: OAuth token operations
// plus read-only activity access.
type ActivityProvider interface {
	// ExchangeCode exchanges an authorization code for a token pair and the
	// athlete id (decimal string) of the authorizing account.
	ExchangeCode(ctx context.Context, code string) (domain.TokenPair, string, error)

	// RefreshTokens obtains a fresh token pair from a refresh token.
	// Strava rotates the refresh token on every call.
	RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, error)

	// GetActivity fetches one activity by id using the given access token.
	GetActivity(ctx context.Context, accessToken string, activityID int64) (*domain.Activity, error)
}
