// Package google implements the CalendarProvider port: Google OAuth and
// identity operations plus Calendar API event access.
package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
	"github.com/custodia-labs/stridecal/internal/logger"
)

// Ensure Provider implements the port.
var _ driven.CalendarProvider = (*Provider)(nil)

// Provider talks to Google on behalf of one OAuth application. Access
// tokens are per-call arguments so the same provider serves all users; a
// fresh API service is built per call around a static token source.
type Provider struct {
	oauthConfig *oauth2.Config
	clientOpts  []option.ClientOption
}

// NewProvider creates a Google provider for the given OAuth application.
// Extra client options (endpoint and HTTP client overrides) are for tests.
func NewProvider(clientID, clientSecret string, opts ...option.ClientOption) *Provider {
	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     googleoauth.Endpoint,
		},
		clientOpts: opts,
	}
}

// ExchangeCode exchanges an authorization code for tokens. The ID token
// rides along in the token response and is returned raw for verification.
func (p *Provider) ExchangeCode(ctx context.Context, code, redirectURI string) (domain.TokenPair, string, error) {
	cfg := *p.oauthConfig
	cfg.RedirectURL = redirectURI

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return domain.TokenPair{}, "", fmt.Errorf("exchange code: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	return domain.TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, idToken, nil
}

// VerifyIDToken validates an ID token via Google's tokeninfo endpoint and
// checks the audience against this application's client id.
func (p *Provider) VerifyIDToken(ctx context.Context, idToken string) (*driven.GoogleIdentity, error) {
	srv, err := oauth2api.NewService(ctx, p.options(option.WithoutAuthentication())...)
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}

	info, err := srv.Tokeninfo().IdToken(idToken).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: tokeninfo: %w", domain.ErrAuthInvalid, WrapError(err))
	}
	if info.Audience != p.oauthConfig.ClientID {
		return nil, fmt.Errorf("%w: ID token audience mismatch", domain.ErrAuthInvalid)
	}

	return &driven.GoogleIdentity{
		Subject: info.UserId,
		Email:   info.Email,
	}, nil
}

// RefreshTokens obtains a fresh token pair from a refresh token.
func (p *Provider) RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	ts := p.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("refresh token: %w", err)
	}

	pair := domain.TokenPair{
		AccessToken: tok.AccessToken,
		Expiry:      tok.Expiry,
	}
	// The oauth2 package echoes the old refresh token back when Google did
	// not rotate it; only report a rotation.
	if tok.RefreshToken != refreshToken {
		pair.RefreshToken = tok.RefreshToken
	}
	return pair, nil
}

// ListCalendars lists calendars the user can write events to.
func (p *Provider) ListCalendars(ctx context.Context, accessToken string) ([]driven.CalendarInfo, error) {
	srv, err := p.calendarService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	res, err := srv.CalendarList.List().MinAccessRole("writer").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", WrapError(err))
	}

	calendars := make([]driven.CalendarInfo, 0, len(res.Items))
	for _, item := range res.Items {
		calendars = append(calendars, driven.CalendarInfo{
			ID:      item.Id,
			Summary: item.Summary,
			Primary: item.Primary,
		})
	}
	return calendars, nil
}

// FindEventByActivityID looks up the event tagged with the activity id.
// Absence is (nil, nil). Multiple matches can exist after a prior partial
// failure left a duplicate behind; the first in provider response order wins
// and the rest are logged for visibility.
func (p *Provider) FindEventByActivityID(ctx context.Context, accessToken string, activityID int64, calendarID string) (*domain.CalendarEvent, error) {
	srv, err := p.calendarService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	res, err := srv.Events.List(calendarID).
		SharedExtendedProperty(fmt.Sprintf("%s=%d", domain.TagActivityID, activityID)).
		SingleEvents(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", WrapError(err))
	}

	if len(res.Items) == 0 {
		return nil, nil
	}
	if len(res.Items) > 1 {
		logger.Warn("found %d events tagged with activity %d in calendar %s, using the first",
			len(res.Items), activityID, calendarID)
	}
	return EventToDomain(res.Items[0]), nil
}

// CreateEvent inserts a new event built from the payload.
func (p *Provider) CreateEvent(ctx context.Context, accessToken string, payload domain.EventPayload, calendarID string) (*domain.CalendarEvent, error) {
	srv, err := p.calendarService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	created, err := srv.Events.Insert(calendarID, PayloadToEvent(payload)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", WrapError(err))
	}
	logger.Debug("created calendar event %s in %s", created.Id, calendarID)
	return EventToDomain(created), nil
}

// PatchEvent applies the payload as a partial update. Patch semantics leave
// any event field the payload does not set untouched.
func (p *Provider) PatchEvent(ctx context.Context, accessToken string, eventID string, payload domain.EventPayload, calendarID string) (*domain.CalendarEvent, error) {
	srv, err := p.calendarService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	patched, err := srv.Events.Patch(calendarID, eventID, PayloadToEvent(payload)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("patch event %s: %w", eventID, WrapError(err))
	}
	logger.Debug("patched calendar event %s in %s", eventID, calendarID)
	return EventToDomain(patched), nil
}

// DeleteEvent removes an event. An event already gone (410) counts as
// deleted.
func (p *Provider) DeleteEvent(ctx context.Context, accessToken string, eventID, calendarID string) error {
	srv, err := p.calendarService(ctx, accessToken)
	if err != nil {
		return err
	}

	if err := srv.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		if IsGone(err) {
			logger.Debug("calendar event %s already deleted", eventID)
			return nil
		}
		return fmt.Errorf("delete event %s: %w", eventID, WrapError(err))
	}
	logger.Debug("deleted calendar event %s from %s", eventID, calendarID)
	return nil
}

// calendarService builds a Calendar API client around a static token
// source carrying the caller's access token.
func (p *Provider) calendarService(ctx context.Context, accessToken string) (*calendar.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	srv, err := calendar.NewService(ctx, p.options(option.WithTokenSource(ts))...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return srv, nil
}

func (p *Provider) options(base ...option.ClientOption) []option.ClientOption {
	return append(base, p.clientOpts...)
}
