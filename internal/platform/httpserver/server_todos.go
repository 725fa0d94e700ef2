package httpserver

import (
	"net/http"
	"strconv"

	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
	"tasktrack/contexts/task-tracking/todo-service/ports"
	todohttp "tasktrack/contexts/task-tracking/todo-service/transport/http"
)

// handleListTodos serves both the user and the admin listing route. The
// owner/search/category/completed parameters only widen anything for admins:
// the service pins standard users to their own todos regardless.
func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := ports.TodoFilter{
		OwnerID:  query.Get("owner"),
		Search:   query.Get("search"),
		Category: entities.Category(query.Get("category")),
	}
	if filter.Category != "" && !entities.IsValidCategory(filter.Category) {
		writeValidationError(w, map[string]string{"category": "must be urgent or non-urgent"})
		return
	}
	if raw := query.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			writeValidationError(w, map[string]string{"completed": "must be a boolean"})
			return
		}
		filter.Completed = &completed
	}

	resp, err := s.todos.Handler.ListHandler(r.Context(), principal, filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	s.createTodo(w, r, false)
}

// handleAdminCreateTodo honors the owner_id field so an admin can create a
// todo on a specified account's behalf.
func (s *Server) handleAdminCreateTodo(w http.ResponseWriter, r *http.Request) {
	s.createTodo(w, r, true)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request, allowOwner bool) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req todohttp.CreateTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := validateCreateTodo(req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	resp, err := s.todos.Handler.CreateHandler(r.Context(), principal, allowOwner, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	resp, err := s.todos.Handler.GetHandler(r.Context(), principal, r.PathValue("todo_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req todohttp.UpdateTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := validateUpdateTodo(req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	resp, err := s.todos.Handler.UpdateHandler(r.Context(), principal, r.PathValue("todo_id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	resp, err := s.todos.Handler.DeleteHandler(r.Context(), principal, r.PathValue("todo_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
