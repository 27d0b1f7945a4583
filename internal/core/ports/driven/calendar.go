package driven

import (
	"context"

	"github.com/custodia-labs/stridecal/internal/core/domain"
)

// CalendarInfo describes one calendar the user can write to.
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}

// GoogleIdentity is the verified identity claims from a Google ID token.
type GoogleIdentity struct {
	// Subject is the stable Google user id (the "sub" claim).
	Subject string
	// Email is the account email, verified by Google.
	Email string
}

// CalendarProvider is the Google side of the system: OAuth/identity
// operations plus calendar event access. All event operations carry the
// access token explicitly so flows can run with just-refreshed credentials
// without any shared client state.
type CalendarProvider interface {
	// ExchangeCode exchanges an authorization code for a token pair plus the
	// raw ID token from the same response.
	ExchangeCode(ctx context.Context, code, redirectURI string) (domain.TokenPair, string, error)

	// VerifyIDToken validates a Google ID token against the configured
	// client id and returns the identity claims.
	// Returns domain.ErrAuthInvalid for tokens that fail verification.
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)

	// RefreshTokens obtains a fresh token pair from a refresh token. Google
	// often omits the refresh token in the response; the returned pair then
	// has an empty RefreshToken.
	RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, error)

	// ListCalendars lists calendars the user can write events to.
	ListCalendars(ctx context.Context, accessToken string) ([]CalendarInfo, error)

	// FindEventByActivityID looks up the event tagged with the given activity
	// id in the target calendar. Absence is not an error: the result is
	// (nil, nil). When the provider returns several matches (orphaned
	// duplicates after a partial failure) the first in response order wins.
	FindEventByActivityID(ctx context.Context, accessToken string, activityID int64, calendarID string) (*domain.CalendarEvent, error)

	// CreateEvent inserts a new event built from the payload.
	CreateEvent(ctx context.Context, accessToken string, payload domain.EventPayload, calendarID string) (*domain.CalendarEvent, error)

	// PatchEvent applies the payload as a partial update to an existing
	// event. Fields the payload does not set are left untouched.
	PatchEvent(ctx context.Context, accessToken string, eventID string, payload domain.EventPayload, calendarID string) (*domain.CalendarEvent, error)

	// DeleteEvent removes an event by id.
	DeleteEvent(ctx context.Context, accessToken string, eventID, calendarID string) error
}
