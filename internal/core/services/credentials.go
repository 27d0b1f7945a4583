package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
	"github.com/custodia-labs/stridecal/internal/logger"
)

// PreparedCredentials is the result of refreshing both provider credential
// pairs for one user: fresh access tokens plus the user value carrying them.
type PreparedCredentials struct {
	// User is the user record with the refreshed pairs applied. It may differ
	// from the stored record if persistence failed (which is non-fatal).
	User domain.User
	// StravaAccessToken authenticates activity reads.
	StravaAccessToken string
	// GoogleAccessToken authenticates calendar operations.
	GoogleAccessToken string
}

// CredentialCoordinator refreshes the two provider credential pairs before
// any provider call and opportunistically persists rotated tokens.
type CredentialCoordinator struct {
	users  driven.UserStore
	strava driven.ActivityProvider
	google driven.CalendarProvider
}

// NewCredentialCoordinator creates a new credential coordinator.
func NewCredentialCoordinator(
	users driven.UserStore,
	strava driven.ActivityProvider,
	google driven.CalendarProvider,
) *CredentialCoordinator {
	return &CredentialCoordinator{
		users:  users,
		strava: strava,
		google: google,
	}
}

// Prepare refreshes both credential pairs for the user. Either refresh
// failing fails the whole call: there is no partial-credential path.
//
// If a pair actually rotated, the updated user is saved. A save failure is
// downgraded to a warning and the refreshed in-memory credentials are used
// anyway; the refresh tokens remain valid upstream even when not yet locally
// durable, and the next flow will simply rotate again.
func (c *CredentialCoordinator) Prepare(ctx context.Context, user domain.User) (*PreparedCredentials, error) {
	stravaTokens, err := c.strava.RefreshTokens(ctx, user.Strava.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: strava: %w", domain.ErrTokenRefreshFailed, err)
	}

	googleTokens, err := c.google.RefreshTokens(ctx, user.Google.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: google: %w", domain.ErrTokenRefreshFailed, err)
	}

	rotated := stravaTokens.AccessToken != user.Strava.AccessToken ||
		googleTokens.AccessToken != user.Google.AccessToken

	user = user.WithStravaTokens(stravaTokens).WithGoogleTokens(googleTokens)

	if rotated {
		if err := c.users.Save(ctx, user); err != nil {
			logger.Warn("failed to persist rotated tokens for user %s: %v", user.GoogleUserID, err)
		}
	}

	return &PreparedCredentials{
		User:              user,
		StravaAccessToken: stravaTokens.AccessToken,
		GoogleAccessToken: googleTokens.AccessToken,
	}, nil
}
