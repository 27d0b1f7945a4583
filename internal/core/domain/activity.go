package domain

import "time"

// Activity is a single recorded exercise session on Strava.
// It is read-only from this service's perspective.
type Activity struct {
	// ID is the Strava activity id.
	ID int64 `json:"id"`
	// Name is the display name, e.g. "Morning Run".
	Name string `json:"name"`
	// Kind is the Strava activity type, e.g. "Run", "Ride".
	Kind string `json:"type"`
	// StartDate is the absolute (UTC) start instant.
	StartDate time.Time `json:"start_date"`
	// ElapsedSeconds is wall-clock duration including stoppages.
	ElapsedSeconds int64 `json:"elapsed_time"`
	// DistanceMeters is the recorded distance in meters.
	DistanceMeters float64 `json:"distance"`
}

// EndDate returns the activity end instant (start plus elapsed time).
// Elapsed time is used rather than moving time so the event covers the
// whole session.
func (a Activity) EndDate() time.Time {
	return a.StartDate.Add(time.Duration(a.ElapsedSeconds) * time.Second)
}
