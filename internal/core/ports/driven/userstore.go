package driven

import (
	"context"

	"github.com/custodia-labs/stridecal/internal/core/domain"
)

// UserStore persists linked Google/Strava account records.
// Users are keyed by Google identity; webhook routing looks them up by the
// Strava athlete id instead.
type UserStore interface {
	// Save stores a user. Creates if new, updates if exists.
	Save(ctx context.Context, user domain.User) error

	// GetByGoogleID retrieves a user by the Google OAuth subject.
	// Returns domain.ErrNotFound if no such user exists.
	GetByGoogleID(ctx context.Context, googleUserID string) (*domain.User, error)

	// GetByStravaAthleteID retrieves a user by the Strava athlete id
	// (decimal string). Returns domain.ErrNotFound if no such user exists.
	GetByStravaAthleteID(ctx context.Context, athleteID string) (*domain.User, error)
}
