package domain

// AspectType is the kind of change a Strava webhook notification announces.
type AspectType string

// Aspect types Strava sends for activity events.
const (
	AspectCreate AspectType = "create"
	AspectUpdate AspectType = "update"
	AspectDelete AspectType = "delete"
)

// WebhookNotification is one decoded Strava push notification. It is
// transient: it exists only for the duration of a single dispatch.
type WebhookNotification struct {
	// Aspect is the change kind: create, update or delete.
	Aspect AspectType `json:"aspect_type"`
	// ActivityID is the Strava activity the notification is about.
	ActivityID int64 `json:"object_id"`
	// OwnerID is the Strava athlete id owning the activity.
	OwnerID int64 `json:"owner_id"`
	// Updates maps changed field names to their new values. Only present on
	// update notifications.
	Updates map[string]any `json:"updates,omitempty"`
}

// relevantUpdateFields is the fixed allow-list of changed activity fields
// that affect the calendar projection. Anything else (description edits,
// gear changes, ...) is ignored without touching the network.
var relevantUpdateFields = map[string]struct{}{
	"title":   {},
	"type":    {},
	"private": {},
}

// HasRelevantUpdates reports whether any changed field in an update
// notification warrants provider interaction at all.
func HasRelevantUpdates(updates map[string]any) bool {
	for field := range updates {
		if _, ok := relevantUpdateFields[field]; ok {
			return true
		}
	}
	return false
}
