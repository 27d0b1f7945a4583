package domain

// SyncOutcome distinguishes "succeeded by acting" from "succeeded by doing
// nothing" so callers and tests can tell the no-op paths apart.
type SyncOutcome int

const (
	// OutcomeCreated means a calendar event was inserted.
	OutcomeCreated SyncOutcome = iota
	// OutcomeUpdated means an existing calendar event was patched.
	OutcomeUpdated
	// OutcomeDeleted means an existing calendar event was removed.
	OutcomeDeleted
	// OutcomeSkippedAlreadyExists means create found an event with the same
	// idempotency tag and did nothing (safe under webhook redelivery).
	OutcomeSkippedAlreadyExists
	// OutcomeSkippedNoExistingEvent means update/delete found no tagged event
	// and did nothing. Updates are never promoted to creates.
	OutcomeSkippedNoExistingEvent
	// OutcomeSkippedIrrelevant means an update changed no field the calendar
	// projection cares about; no provider was contacted.
	OutcomeSkippedIrrelevant
	// OutcomeSkippedUnknownUser means no user record matches the notification
	// owner; acknowledged so the sender stops retrying.
	OutcomeSkippedUnknownUser
	// OutcomeSkippedUnknownAspect means the notification kind is not one this
	// service handles; acknowledged and ignored.
	OutcomeSkippedUnknownAspect
)

// Acted returns true if the outcome mutated the calendar.
func (o SyncOutcome) Acted() bool {
	switch o {
	case OutcomeCreated, OutcomeUpdated, OutcomeDeleted:
		return true
	default:
		return false
	}
}

func (o SyncOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeSkippedAlreadyExists:
		return "skipped: event already exists"
	case OutcomeSkippedNoExistingEvent:
		return "skipped: no existing event"
	case OutcomeSkippedIrrelevant:
		return "skipped: irrelevant update"
	case OutcomeSkippedUnknownUser:
		return "skipped: unknown user"
	case OutcomeSkippedUnknownAspect:
		return "skipped: unknown aspect type"
	default:
		return "unknown"
	}
}
