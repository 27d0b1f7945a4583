package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/custodia-labs/stridecal/internal/core/domain"
	"github.com/custodia-labs/stridecal/internal/logger"
)

// webhookVerifyResponse echoes the subscription challenge. The field name
// with the dot is what Strava expects back.
type webhookVerifyResponse struct {
	Challenge string `json:"hub.challenge"`
}

// webhookEventResponse acknowledges a processed notification.
type webhookEventResponse struct {
	Outcome string `json:"outcome"`
}

func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.verifyWebhook(w, r)
	case http.MethodPost:
		s.receiveWebhook(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// verifyWebhook handles the subscription validation handshake: Strava calls
// back with a challenge that must be echoed in JSON.
func (s *Server) verifyWebhook(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if s.cfg.WebhookVerifyToken != "" && query.Get("hub.verify_token") != s.cfg.WebhookVerifyToken {
		writeError(w, http.StatusForbidden, "forbidden", "verify token mismatch")
		return
	}

	challenge := query.Get("hub.challenge")
	if challenge == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing hub.challenge")
		return
	}

	logger.Info("webhook subscription validated")
	writeJSON(w, http.StatusOK, webhookVerifyResponse{Challenge: challenge})
}

// receiveWebhook processes one push notification. Skip outcomes are
// acknowledged with 200 so the sender stops redelivering; only transient
// processing failures return an error status.
func (s *Server) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	var n domain.WebhookNotification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	outcome, err := s.sync.Dispatch(r.Context(), n)
	if err != nil {
		logger.Error("webhook dispatch for activity %d: %v", n.ActivityID, err)
		writeError(w, http.StatusInternalServerError, "server_error", "notification processing failed")
		return
	}

	logger.Info("webhook %s for activity %d: %s", n.Aspect, n.ActivityID, outcome)
	writeJSON(w, http.StatusOK, webhookEventResponse{Outcome: outcome.String()})
}
