package driving

import (
	"context"

	"github.com/custodia-labs/stridecal/internal/core/domain"
)

// SyncService reconciles calendar events with Strava activity changes.
// Dispatch is the webhook entry point; the three flows are exposed directly
// so callers with an already-resolved user (tests, backfills) can invoke
// them without a notification envelope.
type SyncService interface {
	// Dispatch routes one webhook notification: resolves the owning user and
	// runs the flow matching the aspect type. Unknown owners and unknown
	// aspect types are acknowledged with a skip outcome, not an error.
	Dispatch(ctx context.Context, n domain.WebhookNotification) (domain.SyncOutcome, error)

	// HandleCreate brings the calendar into agreement with a newly created
	// activity. Redelivery-safe: an already-synced activity is a no-op.
	HandleCreate(ctx context.Context, user domain.User, activityID int64) (domain.SyncOutcome, error)

	// HandleUpdate patches the calendar event for a changed activity.
	// Irrelevant updates short-circuit before any network call; activities
	// with no existing event are skipped, never created.
	HandleUpdate(ctx context.Context, user domain.User, activityID int64, updates map[string]any) (domain.SyncOutcome, error)

	// HandleDelete removes the calendar event for a deleted activity.
	HandleDelete(ctx context.Context, user domain.User, activityID int64) (domain.SyncOutcome, error)
}
