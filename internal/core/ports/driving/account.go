package driving

import (
	"context"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
)

// AccountStatus is what the login UI needs to render the connection state.
type AccountStatus struct {
	Connected          bool   `json:"connected"`
	GoogleUserID       string `json:"googleUserId"`
	SelectedCalendarID string `json:"selectedCalendarId"`
}

// AccountService manages user onboarding and preferences: the OAuth code
// exchanges that link accounts, and the calendar selection.
type AccountService interface {
	// LoginWithGoogle exchanges a Google authorization code, verifies the
	// returned ID token and upserts the user record. Returns the user.
	LoginWithGoogle(ctx context.Context, code, redirectURI string) (*domain.User, error)

	// ConnectStrava exchanges a Strava authorization code and attaches the
	// Strava tokens and athlete id to the identified user.
	ConnectStrava(ctx context.Context, googleUserID, code string) (*domain.User, error)

	// VerifyIdentity validates a Google ID token from an Authorization
	// header and returns the identity claims.
	VerifyIdentity(ctx context.Context, idToken string) (*driven.GoogleIdentity, error)

	// Status reports the connection state for a user.
	Status(ctx context.Context, googleUserID string) (*AccountStatus, error)

	// ListCalendars refreshes the user's Google credentials and lists the
	// calendars they can write to.
	ListCalendars(ctx context.Context, googleUserID string) ([]driven.CalendarInfo, error)

	// SelectCalendar updates the user's target calendar.
	SelectCalendar(ctx context.Context, googleUserID, calendarID string) (*domain.User, error)
}
