// Package memory provides in-memory implementations of driven ports for
// testing and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
)

// Ensure UserStore implements the interface.
var _ driven.UserStore = (*UserStore)(nil)

// UserStore is an in-memory implementation of driven.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]domain.User),
	}
}

// Save stores or updates a user, keyed by the Google user id.
func (s *UserStore) Save(_ context.Context, user domain.User) error {
	if user.GoogleUserID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.users[user.GoogleUserID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	s.users[user.GoogleUserID] = user
	return nil
}

// GetByGoogleID retrieves a user by Google user id.
func (s *UserStore) GetByGoogleID(_ context.Context, googleUserID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[googleUserID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

// GetByStravaAthleteID retrieves the user linked to a Strava athlete.
func (s *UserStore) GetByStravaAthleteID(_ context.Context, athleteID string) (*domain.User, error) {
	if athleteID == "" {
		return nil, domain.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.StravaAthleteID == athleteID {
			u := user
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}
