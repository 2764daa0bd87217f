package http

import (
	"net/http"

	"ledgerdash/internal/auth"
	"ledgerdash/internal/core"
	"ledgerdash/internal/log"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := DecodeJSON(w, r, &creds); err != nil {
		s.fail(w, r, log.OpLogin, err)
		return
	}

	result, err := s.auth.Login(r.Context(), creds, s.detector.ExtractClientIP(r))
	if s.metrics != nil && !core.IsValidation(err) {
		s.metrics.ObserveLogin(err == nil)
	}
	if err != nil {
		s.fail(w, r, log.OpLogin, err)
		return
	}
	NewJSONResponse().Body(result).Write(w)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.Users(r.Context())
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"users": users}).Write(w)
}
