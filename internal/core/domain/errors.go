package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Authentication errors.

	// ErrAuthInvalid indicates the presented credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrTokenRefreshFailed indicates a provider token refresh failed.
	// A sync flow cannot run with stale credentials, so this aborts it.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Provider errors.

	// ErrActivityFetch indicates the activity could not be read from Strava.
	ErrActivityFetch = errors.New("activity fetch failed")

	// ErrCalendarQuery indicates a calendar read (event lookup, calendar list) failed.
	ErrCalendarQuery = errors.New("calendar query failed")

	// ErrCalendarMutation indicates a calendar write (insert, patch, delete) failed.
	ErrCalendarMutation = errors.New("calendar mutation failed")

	// ErrRateLimited indicates a provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
