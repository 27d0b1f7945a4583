package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/stridecal/internal/core/domain"
)

// rfc3339Millis is how event instants are rendered on the wire. Calendar
// accepts plain RFC3339 too, but millisecond precision keeps the stored
// values byte-identical across create and patch.
const rfc3339Millis = "2006-01-02T15:04:05.000Z"

// FormatEventTime renders an instant for a calendar EventDateTime.
func FormatEventTime(t time.Time) string {
	return t.UTC().Format(rfc3339Millis)
}

// PayloadToEvent converts an event payload to the Calendar API event shape.
// Only fields the mapper sets are populated, so the same value works for
// inserts and for partial patches.
func PayloadToEvent(p domain.EventPayload) *calendar.Event {
	return &calendar.Event{
		Summary:     p.Title,
		Description: p.Description,
		Start:       &calendar.EventDateTime{DateTime: FormatEventTime(p.Start)},
		End:         &calendar.EventDateTime{DateTime: FormatEventTime(p.End)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Shared: p.Tags,
		},
	}
}

// EventToDomain converts a Calendar API event to this service's view of it.
// Unparseable or absent times are left as zero values; the core only ever
// needs the id and the tags.
func EventToDomain(event *calendar.Event) *domain.CalendarEvent {
	out := &domain.CalendarEvent{
		ID:    event.Id,
		Title: event.Summary,
	}
	if event.Start != nil {
		out.Start = parseEventTime(event.Start)
	}
	if event.End != nil {
		out.End = parseEventTime(event.End)
	}
	if event.ExtendedProperties != nil {
		out.Tags = event.ExtendedProperties.Shared
	}
	return out
}

func parseEventTime(edt *calendar.EventDateTime) time.Time {
	value := edt.DateTime
	layout := time.RFC3339
	if value == "" {
		// All-day events carry a date only.
		value = edt.Date
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
