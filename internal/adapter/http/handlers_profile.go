package adapthttp

import (
	"net/http"

	"fitlane/internal/domain"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.profile.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": u, "displayName": u.DisplayName()})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	var body domain.User
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	u, err := s.profile.Update(r.Context(), body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.log.Info().Str("principal", PrincipalFrom(r.Context())).Str("profile_id", u.ID).Msg("Profile updated")
	writeJSON(w, http.StatusOK, map[string]any{"profile": u, "displayName": u.DisplayName()})
}
