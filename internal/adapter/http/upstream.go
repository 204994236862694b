package adapthttp

import (
	"net/http"

	"fitlane/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Upstream serves a MetricsRemoteSource over the wire format the remote
// client speaks.
type Upstream struct {
	src domain.MetricsRemoteSource
	log zerolog.Logger
}

// NewUpstream creates an Upstream backed by src.
func NewUpstream(src domain.MetricsRemoteSource, log zerolog.Logger) *Upstream {
	return &Upstream{src: src, log: log.With().Str("component", "upstream").Logger()}
}

// Handler returns the upstream API handler.
func (u *Upstream) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/metrics/today", u.handleToday).Methods(http.MethodGet)
	r.HandleFunc("/metrics/sync", u.handleSync).Methods(http.MethodPost)
	return withRequestID(accessLog(u.log, r))
}

func (u *Upstream) handleToday(w http.ResponseWriter, r *http.Request) {
	m, err := u.src.FetchToday(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (u *Upstream) handleSync(w http.ResponseWriter, r *http.Request) {
	var m domain.DailyMetrics
	if err := parseJSON(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !m.IsValid() {
		writeDomainError(w, domain.NewValidationError("Invalid metrics data", nil))
		return
	}
	synced, err := u.src.Sync(r.Context(), m)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, synced)
}
