// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them:
//
//   - UserStore: user record persistence (SQLite in production)
//   - ActivityProvider: Strava OAuth + activity reads
//   - CalendarProvider: Google OAuth/identity + calendar event access
//   - ConfigStore: application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
