package domain

import (
	"fmt"
	"time"
)

// Shared extended property keys stamped onto every synced event. The event
// lookup matches on TagActivityID, so the mapper and the calendar adapter
// must agree on these names and on the decimal-string form of the id.
const (
	TagActivityID   = "activity_id"
	TagActivityKind = "activity_kind"
)

// CalendarEvent is this service's view of an event owned by Google Calendar.
type CalendarEvent struct {
	// ID is the provider-assigned event id.
	ID string
	// Title is the event summary line.
	Title string
	// Start and End are the event window.
	Start time.Time
	End   time.Time
	// Tags holds the shared extended properties on the event.
	Tags map[string]string
}

// ActivityID returns the activity id the event is tagged with, or "" when the
// event was not created by this service.
func (e CalendarEvent) ActivityID() string {
	return e.Tags[TagActivityID]
}

// EventPayload is the calendar projection of one activity: everything needed
// to create or patch the corresponding event.
type EventPayload struct {
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	// Tags become the event's shared extended properties.
	Tags map[string]string
}

// NewEventPayload maps an activity to its calendar-event representation.
// Pure and deterministic: same activity in, same payload out.
func NewEventPayload(a Activity) EventPayload {
	return EventPayload{
		Title:       a.Name,
		Start:       a.StartDate,
		End:         a.EndDate(),
		Description: activityDescription(a),
		Tags: map[string]string{
			TagActivityID:   fmt.Sprintf("%d", a.ID),
			TagActivityKind: a.Kind,
		},
	}
}

// activityDescription renders the fixed description template. Distance is in
// kilometers with exactly two decimals and no locale grouping.
func activityDescription(a Activity) string {
	return fmt.Sprintf(
		"View on Strava: https://strava.com/activities/%d\n\nType: %s\nDistance: %.2f km",
		a.ID, a.Kind, a.DistanceMeters/1000,
	)
}
