package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
)

// --- Mock implementations of the driven ports ---

type mockUserStore struct {
	users    map[string]domain.User // keyed by Google user id
	saves    int
	saveErr  error
	lastSave domain.User
}

func newMockUserStore(users ...domain.User) *mockUserStore {
	s := &mockUserStore{users: make(map[string]domain.User)}
	for _, u := range users {
		s.users[u.GoogleUserID] = u
	}
	return s
}

func (s *mockUserStore) Save(_ context.Context, user domain.User) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.lastSave = user
	s.users[user.GoogleUserID] = user
	return nil
}

func (s *mockUserStore) GetByGoogleID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *mockUserStore) GetByStravaAthleteID(_ context.Context, athleteID string) (*domain.User, error) {
	for _, u := range s.users {
		if u.StravaAthleteID == athleteID {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockActivityProvider struct {
	refreshTokens domain.TokenPair
	refreshErr    error
	refreshCalls  int

	activity *domain.Activity
	getErr   error
	getCalls int
}

func (p *mockActivityProvider) ExchangeCode(context.Context, string) (domain.TokenPair, string, error) {
	return domain.TokenPair{}, "", errors.New("not used in sync tests")
}

func (p *mockActivityProvider) RefreshTokens(context.Context, string) (domain.TokenPair, error) {
	p.refreshCalls++
	if p.refreshErr != nil {
		return domain.TokenPair{}, p.refreshErr
	}
	return p.refreshTokens, nil
}

func (p *mockActivityProvider) GetActivity(_ context.Context, _ string, _ int64) (*domain.Activity, error) {
	p.getCalls++
	if p.getErr != nil {
		return nil, p.getErr
	}
	return p.activity, nil
}

type mockCalendarProvider struct {
	refreshTokens domain.TokenPair
	refreshErr    error
	refreshCalls  int

	found    *domain.CalendarEvent
	findErr  error
	findCalls int

	created      *domain.CalendarEvent
	createErr    error
	createCalls  int
	lastPayload  domain.EventPayload
	lastCalendar string

	patchErr    error
	patchCalls  int
	deleteErr   error
	deleteCalls int
	deletedID   string
}

func (p *mockCalendarProvider) ExchangeCode(context.Context, string, string) (domain.TokenPair, string, error) {
	return domain.TokenPair{}, "", errors.New("not used in sync tests")
}

func (p *mockCalendarProvider) VerifyIDToken(context.Context, string) (*driven.GoogleIdentity, error) {
	return nil, errors.New("not used in sync tests")
}

func (p *mockCalendarProvider) RefreshTokens(context.Context, string) (domain.TokenPair, error) {
	p.refreshCalls++
	if p.refreshErr != nil {
		return domain.TokenPair{}, p.refreshErr
	}
	return p.refreshTokens, nil
}

func (p *mockCalendarProvider) ListCalendars(context.Context, string) ([]driven.CalendarInfo, error) {
	return nil, nil
}

func (p *mockCalendarProvider) FindEventByActivityID(_ context.Context, _ string, _ int64, _ string) (*domain.CalendarEvent, error) {
	p.findCalls++
	if p.findErr != nil {
		return nil, p.findErr
	}
	return p.found, nil
}

func (p *mockCalendarProvider) CreateEvent(_ context.Context, _ string, payload domain.EventPayload, calendarID string) (*domain.CalendarEvent, error) {
	p.createCalls++
	p.lastPayload = payload
	p.lastCalendar = calendarID
	if p.createErr != nil {
		return nil, p.createErr
	}
	if p.created != nil {
		return p.created, nil
	}
	return &domain.CalendarEvent{ID: "evt-new", Title: payload.Title, Tags: payload.Tags}, nil
}

func (p *mockCalendarProvider) PatchEvent(_ context.Context, _ string, eventID string, payload domain.EventPayload, calendarID string) (*domain.CalendarEvent, error) {
	p.patchCalls++
	p.lastPayload = payload
	p.lastCalendar = calendarID
	if p.patchErr != nil {
		return nil, p.patchErr
	}
	return &domain.CalendarEvent{ID: eventID, Title: payload.Title, Tags: payload.Tags}, nil
}

func (p *mockCalendarProvider) DeleteEvent(_ context.Context, _ string, eventID, _ string) error {
	p.deleteCalls++
	p.deletedID = eventID
	return p.deleteErr
}

// --- Fixtures ---

func testUser() domain.User {
	return domain.User{
		GoogleUserID:    "google-123",
		Email:           "runner@example.com",
		StravaAthleteID: "4242",
		Google:          domain.TokenPair{AccessToken: "g-old", RefreshToken: "g-refresh"},
		Strava:          domain.TokenPair{AccessToken: "s-old", RefreshToken: "s-refresh"},
	}
}

func testActivity() *domain.Activity {
	return &domain.Activity{
		ID:             1001,
		Name:           "Test Run",
		Kind:           "Run",
		StartDate:      time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC),
		ElapsedSeconds: 3600,
		DistanceMeters: 10000,
	}
}

func newTestSyncService(users *mockUserStore, strava *mockActivityProvider, cal *mockCalendarProvider) *SyncService {
	if strava.refreshTokens.IsZero() {
		strava.refreshTokens = domain.TokenPair{AccessToken: "s-new", RefreshToken: "s-refresh-2"}
	}
	if cal.refreshTokens.IsZero() {
		cal.refreshTokens = domain.TokenPair{AccessToken: "g-new"}
	}
	coord := NewCredentialCoordinator(users, strava, cal)
	return NewSyncService(users, strava, cal, coord)
}

// --- Create flow ---

func TestHandleCreate_CreatesEvent(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.HandleCreate(context.Background(), testUser(), 1001)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeCreated, outcome)
	assert.Equal(t, 1, cal.findCalls, "idempotency check must precede creation")
	assert.Equal(t, 1, cal.createCalls)
	assert.Equal(t, "primary", cal.lastCalendar)
	assert.Equal(t, "Test Run", cal.lastPayload.Title)
	assert.Equal(t, "1001", cal.lastPayload.Tags[domain.TagActivityID])
}

func TestHandleCreate_IdempotentWhenEventExists(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{
		found: &domain.CalendarEvent{ID: "evt-1", Tags: map[string]string{domain.TagActivityID: "1001"}},
	}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.HandleCreate(context.Background(), testUser(), 1001)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSkippedAlreadyExists, outcome)
	assert.Zero(t, cal.createCalls, "second delivery must not create a duplicate")
	assert.Zero(t, strava.getCalls, "no activity fetch needed when the event exists")
}

func TestHandleCreate_UsesSelectedCalendar(t *testing.T) {
	user := testUser().WithCalendar("work-cal")
	users := newMockUserStore(user)
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	_, err := svc.HandleCreate(context.Background(), user, 1001)
	require.NoError(t, err)
	assert.Equal(t, "work-cal", cal.lastCalendar)
}

func TestHandleCreate_StravaRefreshFailureAborts(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{refreshErr: errors.New("strava down")}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	_, err := svc.HandleCreate(context.Background(), testUser(), 1001)
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.Zero(t, cal.refreshCalls+cal.findCalls+cal.createCalls, "no partial-credential execution")
}

func TestHandleCreate_GoogleRefreshFailureAborts(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{refreshErr: errors.New("google down")}
	svc := newTestSyncService(users, strava, cal)

	_, err := svc.HandleCreate(context.Background(), testUser(), 1001)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.Zero(t, cal.findCalls+cal.createCalls)
}

func TestHandleCreate_ActivityFetchFailureAborts(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{getErr: errors.New("503")}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	_, err := svc.HandleCreate(context.Background(), testUser(), 1001)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrActivityFetch)
	assert.Zero(t, cal.createCalls)
}

func TestHandleCreate_MutationFailureSurfaced(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{createErr: errors.New("quota")}
	svc := newTestSyncService(users, strava, cal)

	_, err := svc.HandleCreate(context.Background(), testUser(), 1001)
	assert.ErrorIs(t, err, domain.ErrCalendarMutation)
}

// --- Update flow ---

func TestHandleUpdate_IrrelevantUpdateShortCircuits(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.HandleUpdate(context.Background(), testUser(), 1001,
		map[string]any{"description": "new words", "gear_id": "b123"})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSkippedIrrelevant, outcome)
	assert.Zero(t, strava.refreshCalls, "no credential refresh for irrelevant updates")
	assert.Zero(t, cal.refreshCalls)
	assert.Zero(t, cal.findCalls)
	assert.Zero(t, strava.getCalls)
}

func TestHandleUpdate_PatchesExistingEvent(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{
		found: &domain.CalendarEvent{ID: "evt-1", Tags: map[string]string{domain.TagActivityID: "1001"}},
	}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.HandleUpdate(context.Background(), testUser(), 1001,
		map[string]any{"title": "Renamed Run"})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeUpdated, outcome)
	assert.Equal(t, 1, cal.patchCalls)
	assert.Zero(t, cal.createCalls)
}

func TestHandleUpdate_NoExistingEventIsDropped(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.HandleUpdate(context.Background(), testUser(), 1001,
		map[string]any{"type": "Ride"})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSkippedNoExistingEvent, outcome)
	assert.Zero(t, cal.createCalls, "updates are never promoted to creates")
	assert.Zero(t, cal.patchCalls)
	assert.Zero(t, strava.getCalls)
}

// --- Delete flow ---

func TestHandleDelete_DeletesExistingEvent(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{}
	cal := &mockCalendarProvider{
		found: &domain.CalendarEvent{ID: "evt-9", Tags: map[string]string{domain.TagActivityID: "1001"}},
	}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.HandleDelete(context.Background(), testUser(), 1001)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDeleted, outcome)
	assert.Equal(t, "evt-9", cal.deletedID)
}

func TestHandleDelete_NoEventIsNoOp(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.HandleDelete(context.Background(), testUser(), 1001)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSkippedNoExistingEvent, outcome)
	assert.Zero(t, cal.deleteCalls, "no mutation call when nothing matches")
}

func TestHandleDelete_QueryFailureAborts(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{}
	cal := &mockCalendarProvider{findErr: errors.New("500")}
	svc := newTestSyncService(users, strava, cal)

	_, err := svc.HandleDelete(context.Background(), testUser(), 1001)
	assert.ErrorIs(t, err, domain.ErrCalendarQuery)
}

// --- Router ---

func TestDispatch_UnknownOwnerIsAcknowledged(t *testing.T) {
	users := newMockUserStore() // no users at all
	strava := &mockActivityProvider{}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.Dispatch(context.Background(), domain.WebhookNotification{
		Aspect:     domain.AspectCreate,
		ActivityID: 1001,
		OwnerID:    999999,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSkippedUnknownUser, outcome)
	assert.Zero(t, strava.refreshCalls+strava.getCalls, "no provider calls of any kind")
	assert.Zero(t, cal.refreshCalls+cal.findCalls+cal.createCalls)
}

func TestDispatch_UnknownAspectIsAcknowledged(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.Dispatch(context.Background(), domain.WebhookNotification{
		Aspect:     "reprocess",
		ActivityID: 1001,
		OwnerID:    4242,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkippedUnknownAspect, outcome)
}

func TestDispatch_RoutesByAspectType(t *testing.T) {
	users := newMockUserStore(testUser())
	strava := &mockActivityProvider{activity: testActivity()}
	cal := &mockCalendarProvider{}
	svc := newTestSyncService(users, strava, cal)

	outcome, err := svc.Dispatch(context.Background(), domain.WebhookNotification{
		Aspect:     domain.AspectCreate,
		ActivityID: 1001,
		OwnerID:    4242,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, outcome)

	// Redelivery of the same notification is a no-op.
	cal.found = &domain.CalendarEvent{ID: "evt-new", Tags: map[string]string{domain.TagActivityID: "1001"}}
	outcome, err = svc.Dispatch(context.Background(), domain.WebhookNotification{
		Aspect:     domain.AspectCreate,
		ActivityID: 1001,
		OwnerID:    4242,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkippedAlreadyExists, outcome)
	assert.Equal(t, 1, cal.createCalls, "exactly one event across both deliveries")
}
