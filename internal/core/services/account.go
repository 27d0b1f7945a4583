package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
	"github.com/custodia-labs/stridecal/internal/core/ports/driving"
	"github.com/custodia-labs/stridecal/internal/logger"
)

// Ensure AccountService implements the interface.
var _ driving.AccountService = (*AccountService)(nil)

// AccountService handles user onboarding (the two OAuth code exchanges) and
// calendar preferences.
type AccountService struct {
	users  driven.UserStore
	strava driven.ActivityProvider
	google driven.CalendarProvider
}

// NewAccountService creates a new account service.
func NewAccountService(
	users driven.UserStore,
	strava driven.ActivityProvider,
	google driven.CalendarProvider,
) *AccountService {
	return &AccountService{
		users:  users,
		strava: strava,
		google: google,
	}
}

// LoginWithGoogle exchanges a Google authorization code, verifies the ID
// token from the same response, and upserts the user record keyed by the
// Google subject.
func (s *AccountService) LoginWithGoogle(ctx context.Context, code, redirectURI string) (*domain.User, error) {
	tokens, idToken, err := s.google.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("exchange google code: %w", err)
	}
	if idToken == "" {
		return nil, fmt.Errorf("%w: no ID token in google token response", domain.ErrAuthInvalid)
	}

	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify google ID token: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.users.GetByGoogleID(ctx, identity.Subject)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		user = &domain.User{
			GoogleUserID: identity.Subject,
			Email:        identity.Email,
			CreatedAt:    now,
		}
	case err != nil:
		return nil, fmt.Errorf("get user: %w", err)
	}

	updated := user.WithGoogleTokens(tokens)
	updated.UpdatedAt = now

	if err := s.users.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	logger.Info("user %s authenticated with Google", updated.GoogleUserID)
	return &updated, nil
}

// ConnectStrava exchanges a Strava authorization code and attaches the
// resulting tokens and athlete id to the identified user.
func (s *AccountService) ConnectStrava(ctx context.Context, googleUserID, code string) (*domain.User, error) {
	user, err := s.users.GetByGoogleID(ctx, googleUserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	tokens, athleteID, err := s.strava.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange strava code: %w", err)
	}

	updated := user.WithStravaTokens(tokens)
	updated.StravaAthleteID = athleteID
	updated.UpdatedAt = time.Now().UTC()

	if err := s.users.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	logger.Info("user %s connected Strava athlete %s", googleUserID, athleteID)
	return &updated, nil
}

// VerifyIdentity validates a Google ID token and returns its claims.
func (s *AccountService) VerifyIdentity(ctx context.Context, idToken string) (*driven.GoogleIdentity, error) {
	return s.google.VerifyIDToken(ctx, idToken)
}

// Status reports the connection state for a user. An unknown user is
// reported as not connected rather than an error, matching what the login
// UI expects before onboarding finishes.
func (s *AccountService) Status(ctx context.Context, googleUserID string) (*driving.AccountStatus, error) {
	user, err := s.users.GetByGoogleID(ctx, googleUserID)
	if errors.Is(err, domain.ErrNotFound) {
		return &driving.AccountStatus{
			GoogleUserID:       googleUserID,
			SelectedCalendarID: domain.DefaultCalendarID,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &driving.AccountStatus{
		Connected:          user.HasStrava(),
		GoogleUserID:       user.GoogleUserID,
		SelectedCalendarID: user.CalendarID(),
	}, nil
}

// ListCalendars refreshes the user's Google credentials and lists writable
// calendars. Rotated tokens are persisted best-effort, same as in the sync
// flows.
func (s *AccountService) ListCalendars(ctx context.Context, googleUserID string) ([]driven.CalendarInfo, error) {
	user, err := s.users.GetByGoogleID(ctx, googleUserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	tokens, err := s.google.RefreshTokens(ctx, user.Google.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: google: %w", domain.ErrTokenRefreshFailed, err)
	}

	if tokens.AccessToken != user.Google.AccessToken {
		updated := user.WithGoogleTokens(tokens)
		updated.UpdatedAt = time.Now().UTC()
		if err := s.users.Save(ctx, updated); err != nil {
			logger.Warn("failed to persist rotated tokens for user %s: %v", googleUserID, err)
		}
	}

	calendars, err := s.google.ListCalendars(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: list calendars: %w", domain.ErrCalendarQuery, err)
	}
	return calendars, nil
}

// SelectCalendar updates the user's target calendar.
func (s *AccountService) SelectCalendar(ctx context.Context, googleUserID, calendarID string) (*domain.User, error) {
	if calendarID == "" {
		return nil, fmt.Errorf("%w: empty calendar id", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByGoogleID(ctx, googleUserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	updated := user.WithCalendar(calendarID)
	updated.UpdatedAt = time.Now().UTC()

	if err := s.users.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return &updated, nil
}
