// Package sqlite provides the SQLite-backed implementation of the user
// store port.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/stridecal/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
)

// Store owns the SQLite database and hands out port implementations
// backed by it.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the SQLite database in the given data
// directory and runs pending migrations. If dataDir is empty, defaults to
// ~/.stridecal/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".stridecal", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "stridecal.db")

	// WAL mode keeps webhook handling and API reads from blocking each other.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UserStore returns a UserStore interface backed by this store.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== User Store ====================

// userStore implements driven.UserStore.
type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

// Save stores or updates a user, keyed by the Google user id. Token pairs
// are stored as JSON so token shape changes don't need schema migrations.
func (s *userStore) Save(ctx context.Context, user domain.User) error {
	if user.GoogleUserID == "" {
		return fmt.Errorf("%w: missing google user id", domain.ErrInvalidInput)
	}

	googleJSON, err := json.Marshal(user.Google)
	if err != nil {
		return fmt.Errorf("marshalling google tokens: %w", err)
	}
	stravaJSON, err := json.Marshal(user.Strava)
	if err != nil {
		return fmt.Errorf("marshalling strava tokens: %w", err)
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO users (google_user_id, email, strava_athlete_id, google_tokens, strava_tokens, selected_calendar_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(google_user_id) DO UPDATE SET
			email = excluded.email,
			strava_athlete_id = excluded.strava_athlete_id,
			google_tokens = excluded.google_tokens,
			strava_tokens = excluded.strava_tokens,
			selected_calendar_id = excluded.selected_calendar_id,
			updated_at = excluded.updated_at
	`, user.GoogleUserID, user.Email, user.StravaAthleteID,
		string(googleJSON), string(stravaJSON), user.SelectedCalendarID,
		user.CreatedAt, user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// GetByGoogleID retrieves a user by Google user id.
func (s *userStore) GetByGoogleID(ctx context.Context, googleUserID string) (*domain.User, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT google_user_id, email, strava_athlete_id, google_tokens, strava_tokens, selected_calendar_id, created_at, updated_at
		FROM users WHERE google_user_id = ?
	`, googleUserID)

	return scanUser(row)
}

// GetByStravaAthleteID retrieves the user linked to a Strava athlete.
func (s *userStore) GetByStravaAthleteID(ctx context.Context, athleteID string) (*domain.User, error) {
	if athleteID == "" {
		return nil, domain.ErrNotFound
	}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT google_user_id, email, strava_athlete_id, google_tokens, strava_tokens, selected_calendar_id, created_at, updated_at
		FROM users WHERE strava_athlete_id = ?
	`, athleteID)

	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var googleJSON, stravaJSON string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&user.GoogleUserID, &user.Email, &user.StravaAthleteID,
		&googleJSON, &stravaJSON, &user.SelectedCalendarID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	if err := json.Unmarshal([]byte(googleJSON), &user.Google); err != nil {
		return nil, fmt.Errorf("unmarshaling google tokens: %w", err)
	}
	if err := json.Unmarshal([]byte(stravaJSON), &user.Strava); err != nil {
		return nil, fmt.Errorf("unmarshaling strava tokens: %w", err)
	}
	if createdAt.Valid {
		user.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	}

	return &user, nil
}
