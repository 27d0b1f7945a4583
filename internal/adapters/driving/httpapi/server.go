// Package httpapi exposes the webhook receiver and the account API over
// HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/custodia-labs/stridecal/internal/core/ports/driving"
)

// Config contains tunables for the HTTP server.
type Config struct {
	// Address is the listen address, e.g. ":8080".
	Address string
	// WebhookVerifyToken is echoed back during Strava subscription
	// validation. Empty disables the token check.
	WebhookVerifyToken string
	// AllowedOrigin is the origin allowed by CORS. Empty allows any.
	AllowedOrigin string
}

// Server handles HTTP requests and delegates to the driving services.
type Server struct {
	cfg      Config
	sync     driving.SyncService
	accounts driving.AccountService
	httpSrv  *http.Server
}

// NewServer creates an HTTP server over the given services.
func NewServer(cfg Config, sync driving.SyncService, accounts driving.AccountService) *Server {
	s := &Server{
		cfg:      cfg,
		sync:     sync,
		accounts: accounts,
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.webhook)
	mux.HandleFunc("/auth/google", s.authGoogle)
	mux.HandleFunc("/auth/strava", s.authStrava)
	mux.HandleFunc("/user", s.user)
	mux.HandleFunc("/user/status", s.userStatus)
	mux.HandleFunc("/user/calendars", s.userCalendars)
	mux.HandleFunc("/healthz", healthz)

	return requestID(logging(cors(s.cfg.AllowedOrigin, mux)))
}

// ListenAndServe runs the server until Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// healthz reports a simple OK status for health checks.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
