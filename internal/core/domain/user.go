package domain

import "time"

// DefaultCalendarID is the Google Calendar alias for the user's primary calendar.
const DefaultCalendarID = "primary"

// TokenPair holds an OAuth2 access/refresh credential pair for one provider.
type TokenPair struct {
	// AccessToken is the short-lived bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is the long-lived token used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// Expiry is when the access token expires, if the provider reported it.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsZero returns true if the pair carries no tokens at all.
func (t TokenPair) IsZero() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// User is one linked Google/Strava account pair.
//
// The primary key is the Google identity (the OAuth subject claim); the
// Strava athlete id is a secondary lookup key used when routing webhooks.
// Token rotation never mutates a User in place: the With* methods return a
// new value so a User already handed to other code stays stable.
type User struct {
	// GoogleUserID is the Google OAuth subject claim, the primary key.
	GoogleUserID string `json:"google_user_id"`
	// Email is the verified Google account email.
	Email string `json:"email,omitempty"`

	// StravaAthleteID is the athlete id on the Strava side, stored as the
	// decimal string Strava uses in webhook owner_id fields. Empty until the
	// user connects Strava.
	StravaAthleteID string `json:"strava_athlete_id,omitempty"`

	// Google holds the Google credential pair.
	Google TokenPair `json:"google"`
	// Strava holds the Strava credential pair.
	Strava TokenPair `json:"strava"`

	// SelectedCalendarID is the target calendar for synced events.
	// Empty means the primary calendar.
	SelectedCalendarID string `json:"selected_calendar_id,omitempty"`

	// CreatedAt is when the user record was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the user record was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// CalendarID returns the target calendar, falling back to the primary calendar.
func (u User) CalendarID() string {
	if u.SelectedCalendarID == "" {
		return DefaultCalendarID
	}
	return u.SelectedCalendarID
}

// HasStrava returns true once the user has linked a Strava account.
func (u User) HasStrava() bool {
	return u.StravaAthleteID != ""
}

// WithGoogleTokens returns a copy of the user carrying the refreshed Google
// pair. Google frequently omits the refresh token on refresh responses, so an
// empty incoming refresh token keeps the stored one.
func (u User) WithGoogleTokens(t TokenPair) User {
	if t.RefreshToken == "" {
		t.RefreshToken = u.Google.RefreshToken
	}
	u.Google = t
	return u
}

// WithStravaTokens returns a copy of the user carrying the refreshed Strava
// pair. Strava rotates the refresh token on every refresh, but guard against
// an empty one the same way.
func (u User) WithStravaTokens(t TokenPair) User {
	if t.RefreshToken == "" {
		t.RefreshToken = u.Strava.RefreshToken
	}
	u.Strava = t
	return u
}

// WithCalendar returns a copy of the user with a new target calendar.
func (u User) WithCalendar(calendarID string) User {
	u.SelectedCalendarID = calendarID
	return u
}
