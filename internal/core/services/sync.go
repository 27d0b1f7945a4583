package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
	"github.com/custodia-labs/stridecal/internal/core/ports/driving"
	"github.com/custodia-labs/stridecal/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService reconciles Google Calendar events with Strava activity
// changes. Each flow is one independent unit of work: it refreshes
// credentials, consults the idempotency lookup, and performs at most one
// calendar mutation, strictly in that order. Nothing is retried internally;
// a failed flow surfaces its error to the transport, and redelivery is the
// webhook sender's job.
type SyncService struct {
	users    driven.UserStore
	strava   driven.ActivityProvider
	calendar driven.CalendarProvider
	creds    *CredentialCoordinator
}

// NewSyncService creates a new sync service.
func NewSyncService(
	users driven.UserStore,
	strava driven.ActivityProvider,
	calendar driven.CalendarProvider,
	creds *CredentialCoordinator,
) *SyncService {
	return &SyncService{
		users:    users,
		strava:   strava,
		calendar: calendar,
		creds:    creds,
	}
}

// Dispatch routes one webhook notification to the flow matching its aspect
// type. A notification for an athlete this service does not manage is
// acknowledged and dropped so Strava stops redelivering it; so is any aspect
// type other than create/update/delete.
func (s *SyncService) Dispatch(ctx context.Context, n domain.WebhookNotification) (domain.SyncOutcome, error) {
	user, err := s.users.GetByStravaAthleteID(ctx, strconv.FormatInt(n.OwnerID, 10))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("webhook for unknown athlete %d, ignoring", n.OwnerID)
			return domain.OutcomeSkippedUnknownUser, nil
		}
		return 0, fmt.Errorf("look up user for athlete %d: %w", n.OwnerID, err)
	}

	switch n.Aspect {
	case domain.AspectCreate:
		return s.HandleCreate(ctx, *user, n.ActivityID)
	case domain.AspectUpdate:
		return s.HandleUpdate(ctx, *user, n.ActivityID, n.Updates)
	case domain.AspectDelete:
		return s.HandleDelete(ctx, *user, n.ActivityID)
	default:
		logger.Warn("unknown aspect type %q for activity %d, ignoring", n.Aspect, n.ActivityID)
		return domain.OutcomeSkippedUnknownAspect, nil
	}
}

// HandleCreate creates the calendar event for a new activity.
func (s *SyncService) HandleCreate(ctx context.Context, user domain.User, activityID int64) (domain.SyncOutcome, error) {
	logger.Debug("create flow: activity %d, user %s", activityID, user.GoogleUserID)

	prepared, err := s.creds.Prepare(ctx, user)
	if err != nil {
		return 0, err
	}
	user = prepared.User

	existing, err := s.findEvent(ctx, prepared.GoogleAccessToken, activityID, user.CalendarID())
	if err != nil {
		return 0, err
	}
	if existing != nil {
		// Webhook redelivery: the event is already there.
		logger.Info("activity %d already synced as event %s, skipping", activityID, existing.ID)
		return domain.OutcomeSkippedAlreadyExists, nil
	}

	activity, err := s.strava.GetActivity(ctx, prepared.StravaAccessToken, activityID)
	if err != nil {
		return 0, fmt.Errorf("%w: activity %d: %w", domain.ErrActivityFetch, activityID, err)
	}

	payload := domain.NewEventPayload(*activity)
	event, err := s.calendar.CreateEvent(ctx, prepared.GoogleAccessToken, payload, user.CalendarID())
	if err != nil {
		return 0, fmt.Errorf("%w: create event for activity %d: %w", domain.ErrCalendarMutation, activityID, err)
	}

	logger.Info("created event %s for activity %d", event.ID, activityID)
	return domain.OutcomeCreated, nil
}

// HandleUpdate patches the calendar event for a changed activity. The
// relevance filter runs before anything else: an update touching no
// projected field costs no token rotation and no provider call at all.
func (s *SyncService) HandleUpdate(ctx context.Context, user domain.User, activityID int64, updates map[string]any) (domain.SyncOutcome, error) {
	logger.Debug("update flow: activity %d, user %s", activityID, user.GoogleUserID)

	if !domain.HasRelevantUpdates(updates) {
		logger.Info("no relevant updates for activity %d, skipping", activityID)
		return domain.OutcomeSkippedIrrelevant, nil
	}

	prepared, err := s.creds.Prepare(ctx, user)
	if err != nil {
		return 0, err
	}
	user = prepared.User

	existing, err := s.findEvent(ctx, prepared.GoogleAccessToken, activityID, user.CalendarID())
	if err != nil {
		return 0, err
	}
	if existing == nil {
		// An update for an activity that was never synced is dropped, not
		// promoted to a create.
		logger.Warn("no event found for updated activity %d, skipping", activityID)
		return domain.OutcomeSkippedNoExistingEvent, nil
	}

	activity, err := s.strava.GetActivity(ctx, prepared.StravaAccessToken, activityID)
	if err != nil {
		return 0, fmt.Errorf("%w: activity %d: %w", domain.ErrActivityFetch, activityID, err)
	}

	payload := domain.NewEventPayload(*activity)
	if _, err := s.calendar.PatchEvent(ctx, prepared.GoogleAccessToken, existing.ID, payload, user.CalendarID()); err != nil {
		return 0, fmt.Errorf("%w: patch event %s for activity %d: %w", domain.ErrCalendarMutation, existing.ID, activityID, err)
	}

	logger.Info("updated event %s for activity %d", existing.ID, activityID)
	return domain.OutcomeUpdated, nil
}

// HandleDelete removes the calendar event for a deleted activity.
func (s *SyncService) HandleDelete(ctx context.Context, user domain.User, activityID int64) (domain.SyncOutcome, error) {
	logger.Debug("delete flow: activity %d, user %s", activityID, user.GoogleUserID)

	prepared, err := s.creds.Prepare(ctx, user)
	if err != nil {
		return 0, err
	}
	user = prepared.User

	existing, err := s.findEvent(ctx, prepared.GoogleAccessToken, activityID, user.CalendarID())
	if err != nil {
		return 0, err
	}
	if existing == nil {
		logger.Info("no event found for deleted activity %d, nothing to do", activityID)
		return domain.OutcomeSkippedNoExistingEvent, nil
	}

	if err := s.calendar.DeleteEvent(ctx, prepared.GoogleAccessToken, existing.ID, user.CalendarID()); err != nil {
		return 0, fmt.Errorf("%w: delete event %s for activity %d: %w", domain.ErrCalendarMutation, existing.ID, activityID, err)
	}

	logger.Info("deleted event %s for activity %d", existing.ID, activityID)
	return domain.OutcomeDeleted, nil
}

// findEvent resolves the idempotency lookup, wrapping provider failures in
// the query error class.
func (s *SyncService) findEvent(ctx context.Context, accessToken string, activityID int64, calendarID string) (*domain.CalendarEvent, error) {
	event, err := s.calendar.FindEventByActivityID(ctx, accessToken, activityID, calendarID)
	if err != nil {
		return nil, fmt.Errorf("%w: find event for activity %d: %w", domain.ErrCalendarQuery, activityID, err)
	}
	return event, nil
}
