package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
)

type googleLoginRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

type stravaConnectRequest struct {
	Code string `json:"code"`
}

type selectCalendarRequest struct {
	CalendarID string `json:"calendarId"`
}

// userResponse is the account view returned by the auth and user endpoints.
type userResponse struct {
	GoogleUserID       string `json:"googleUserId"`
	Email              string `json:"email,omitempty"`
	StravaConnected    bool   `json:"stravaConnected"`
	SelectedCalendarID string `json:"selectedCalendarId"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		GoogleUserID:       u.GoogleUserID,
		Email:              u.Email,
		StravaConnected:    u.HasStrava(),
		SelectedCalendarID: u.CalendarID(),
	}
}

type calendarListResponse struct {
	Calendars []driven.CalendarInfo `json:"calendars"`
}

// authGoogle handles POST /auth/google: the Google OAuth code exchange that
// signs the user in (creating the record on first login).
func (s *Server) authGoogle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing code")
		return
	}

	user, err := s.accounts.LoginWithGoogle(r.Context(), req.Code, req.RedirectURI)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// authStrava handles POST /auth/strava: attaches a Strava account to the
// caller identified by the bearer ID token.
func (s *Server) authStrava(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	identity, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req stravaConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing code")
		return
	}

	user, err := s.accounts.ConnectStrava(r.Context(), identity.Subject, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// userStatus handles GET /user/status.
func (s *Server) userStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	identity, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	status, err := s.accounts.Status(r.Context(), identity.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// userCalendars handles GET /user/calendars.
func (s *Server) userCalendars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	identity, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	calendars, err := s.accounts.ListCalendars(r.Context(), identity.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, calendarListResponse{Calendars: calendars})
}

// user handles PATCH /user: currently only the calendar selection.
func (s *Server) user(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	identity, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req selectCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	user, err := s.accounts.SelectCalendar(r.Context(), identity.Subject, req.CalendarID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// authenticate resolves the caller from the Authorization bearer ID token.
// On failure it writes the error response and returns ok=false.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*driven.GoogleIdentity, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}

	identity, err := s.accounts.VerifyIdentity(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid ID token")
		return nil, false
	}
	return identity, true
}
