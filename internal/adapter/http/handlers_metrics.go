package adapthttp

import (
	"net/http"

	"fitlane/internal/domain"
)

func (s *Server) handleMetricsToday(w http.ResponseWriter, r *http.Request) {
	m, err := s.metrics.GetToday(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": m})
}

func (s *Server) handleMetricsRefresh(w http.ResponseWriter, r *http.Request) {
	m, err := s.metrics.Refresh(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": m})
}

func (s *Server) handleMetricsUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string   `json:"field"`
		Value *float64 `json:"value"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Value == nil {
		writeDomainError(w, domain.NewValidationError("value is required", nil))
		return
	}

	m, err := s.metrics.UpdateMetric(r.Context(), domain.Field(body.Field), *body.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.log.Info().
		Str("principal", PrincipalFrom(r.Context())).
		Str("field", body.Field).
		Float64("value", *body.Value).
		Msg("Metric updated")
	writeJSON(w, http.StatusOK, map[string]any{"metrics": m})
}

func (s *Server) handleMetricsSnapshot(w http.ResponseWriter, r *http.Request) {
	var m domain.DailyMetrics
	if err := parseJSON(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.metrics.Save(r.Context(), m); err != nil {
		writeDomainError(w, err)
		return
	}
	s.log.Info().Str("principal", PrincipalFrom(r.Context())).Msg("Snapshot saved")
	writeJSON(w, http.StatusOK, map[string]any{"metrics": m})
}

func (s *Server) handleMetricsProgress(w http.ResponseWriter, r *http.Request) {
	items, err := s.metrics.Progress(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleMetricsPush(w http.ResponseWriter, r *http.Request) {
	m, err := s.metrics.Push(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": m})
}

func (s *Server) handleMetricsClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.metrics.ClearCache(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
