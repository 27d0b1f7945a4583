// Package domain defines the core business entities for stridecal.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - User: A linked Google/Strava account pair with its credential pairs
//   - Activity: A recorded exercise session as Strava reports it
//   - EventPayload: The calendar projection of one activity
//   - WebhookNotification: A decoded Strava push notification
//   - SyncOutcome: The result variant of one sync flow run
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
