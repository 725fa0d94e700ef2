package httpserver

import (
	"net/http"

	accounthttp "tasktrack/contexts/identity-access/account-service/transport/http"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	resp, err := s.accounts.Handler.ListAccountsHandler(r.Context(), principal)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req accounthttp.ChangeRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := validateChangeRole(req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	resp, err := s.accounts.Handler.ChangeRoleHandler(r.Context(), principal, r.PathValue("account_id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToggleFreeze(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	resp, err := s.accounts.Handler.ToggleFreezeHandler(r.Context(), principal, r.PathValue("account_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	resp, err := s.accounts.Handler.DeleteAccountHandler(r.Context(), principal, r.PathValue("account_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
