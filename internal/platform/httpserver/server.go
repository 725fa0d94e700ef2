package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	accountservice "tasktrack/contexts/identity-access/account-service"
	accounterrors "tasktrack/contexts/identity-access/account-service/domain/errors"
	todoservice "tasktrack/contexts/task-tracking/todo-service"
	todoerrors "tasktrack/contexts/task-tracking/todo-service/domain/errors"
	"tasktrack/internal/shared/access"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "tasktrack/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	accounts accountservice.Module
	todos    todoservice.Module
}

func New(
	accounts accountservice.Module,
	todos todoservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		accounts: accounts,
		todos:    todos,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	s.mux.HandleFunc("GET /api/todos", s.handleListTodos)
	s.mux.HandleFunc("POST /api/todos", s.handleCreateTodo)
	s.mux.HandleFunc("GET /api/todos/{todo_id}", s.handleGetTodo)
	s.mux.HandleFunc("PUT /api/todos/{todo_id}", s.handleUpdateTodo)
	s.mux.HandleFunc("DELETE /api/todos/{todo_id}", s.handleDeleteTodo)

	s.mux.HandleFunc("GET /api/admin/users", s.handleListAccounts)
	s.mux.HandleFunc("PATCH /api/admin/users/{account_id}/role", s.handleChangeRole)
	s.mux.HandleFunc("POST /api/admin/users/{account_id}/freeze", s.handleToggleFreeze)
	s.mux.HandleFunc("DELETE /api/admin/users/{account_id}", s.handleDeleteAccount)

	s.mux.HandleFunc("GET /api/admin/todos", s.handleListTodos)
	s.mux.HandleFunc("POST /api/admin/todos", s.handleAdminCreateTodo)
	s.mux.HandleFunc("PUT /api/admin/todos/{todo_id}", s.handleUpdateTodo)
	s.mux.HandleFunc("DELETE /api/admin/todos/{todo_id}", s.handleDeleteTodo)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// authenticate resolves the bearer token into a live principal. Missing
// header, bad token, expired token, deleted account and frozen account all
// come back as the same generic 401.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (access.Principal, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return access.Principal{}, false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	principal, err := s.accounts.Handler.VerifyHandler(r.Context(), token)
	if err != nil {
		s.writeDomainError(w, err)
		return access.Principal{}, false
	}
	return principal, true
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounterrors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, accounterrors.ErrAuthRequired),
		errors.Is(err, accounterrors.ErrAccountFrozen):
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, access.ErrProtectedAccount):
		writeError(w, http.StatusForbidden, "protected_account", "the target account is protected")
	case errors.Is(err, access.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, accounterrors.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account_not_found", "account not found")
	case errors.Is(err, todoerrors.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, "todo_not_found", "todo not found")
	case errors.Is(err, todoerrors.ErrOwnerNotFound):
		writeError(w, http.StatusNotFound, "owner_not_found", "owner account not found")
	case errors.Is(err, accounterrors.ErrDuplicateIdentity):
		writeError(w, http.StatusConflict, "duplicate_identity", "email or username already taken")
	case errors.Is(err, accounterrors.ErrInvalidRequest),
		errors.Is(err, todoerrors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request")
	case errors.Is(err, accounterrors.ErrStoreUnavailable),
		errors.Is(err, todoerrors.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "temporarily unavailable, retry later")
	default:
		s.logger.Error("unhandled domain error",
			"event", "http_internal_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Code:    "validation_failed",
		Message: "request validation failed",
		Fields:  fields,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}
