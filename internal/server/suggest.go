package server

import (
	"net/http"
)

func (s *Server) handleSuggestTopic(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		s.writeError(w, http.StatusServiceUnavailable, "topic suggestions are not configured")
		return
	}
	suggestion, err := s.suggester.SuggestTopic(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}
