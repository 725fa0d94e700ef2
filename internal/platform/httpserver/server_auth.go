package httpserver

import (
	"net/http"

	accounthttp "tasktrack/contexts/identity-access/account-service/transport/http"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := validateRegister(req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	resp, err := s.accounts.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := validateLogin(req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	resp, err := s.accounts.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
