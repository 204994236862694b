package adapthttp

import (
	"net/http"

	"fitlane/internal/app"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	metrics     *app.MetricsService
	profile     *app.ProfileService
	authSvc     *app.AuthService
	log         zerolog.Logger
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(ms *app.MetricsService, ps *app.ProfileService, as *app.AuthService, log zerolog.Logger) *Server {
	return &Server{
		metrics: ms,
		profile: ps,
		authSvc: as,
		log:     log.With().Str("component", "http").Logger(),
	}
}

// WithoutAuth disables authentication. Used in tests.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.authMiddleware)

	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/metrics/today", s.handleMetricsToday).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics/refresh", s.handleMetricsRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/metrics/update", s.handleMetricsUpdate).Methods(http.MethodPost)
	r.HandleFunc("/api/metrics/snapshot", s.handleMetricsSnapshot).Methods(http.MethodPut)
	r.HandleFunc("/api/metrics/progress", s.handleMetricsProgress).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics/push", s.handleMetricsPush).Methods(http.MethodPost)
	r.HandleFunc("/api/metrics/cache", s.handleMetricsClearCache).Methods(http.MethodDelete)

	r.HandleFunc("/api/profile", s.handleProfile).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", s.handleProfileUpdate).Methods(http.MethodPut)

	return withRequestID(s.loggingMiddleware(withNoCache(r)))
}
