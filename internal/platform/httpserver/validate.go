package httpserver

import (
	"net/mail"
	"time"

	accounthttp "tasktrack/contexts/identity-access/account-service/transport/http"
	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
	todohttp "tasktrack/contexts/task-tracking/todo-service/transport/http"
	"tasktrack/internal/shared/access"
)

// Shape validation happens here, before the core is invoked. The services
// may assume field shapes are valid but still check business validity
// (existence, ownership) themselves.

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
	minUsernameLen    = 3
	minPasswordLen    = 8
)

func validateRegister(req accounthttp.RegisterRequest) map[string]string {
	fields := make(map[string]string)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(req.Username) < minUsernameLen {
		fields["username"] = "must be at least 3 characters long"
	}
	if len(req.Password) < minPasswordLen {
		fields["password"] = "must be at least 8 characters long"
	}
	return fields
}

func validateLogin(req accounthttp.LoginRequest) map[string]string {
	fields := make(map[string]string)
	if req.Identifier == "" {
		fields["identifier"] = "is required"
	}
	if req.Password == "" {
		fields["password"] = "is required"
	}
	return fields
}

func validateChangeRole(req accounthttp.ChangeRoleRequest) map[string]string {
	fields := make(map[string]string)
	if !access.IsValidRole(access.Role(req.Role)) {
		fields["role"] = "must be standard or admin"
	}
	return fields
}

func validateCreateTodo(req todohttp.CreateTodoRequest) map[string]string {
	fields := make(map[string]string)
	if req.Title == "" || len(req.Title) > maxTitleLen {
		fields["title"] = "is required and must be at most 100 characters"
	}
	if len(req.Description) > maxDescriptionLen {
		fields["description"] = "must be at most 500 characters"
	}
	if req.Category != "" && !entities.IsValidCategory(entities.Category(req.Category)) {
		fields["category"] = "must be urgent or non-urgent"
	}
	if req.DueDate != "" {
		if _, err := time.Parse(time.RFC3339, req.DueDate); err != nil {
			fields["due_date"] = "must be an RFC 3339 timestamp"
		}
	}
	return fields
}

func validateUpdateTodo(req todohttp.UpdateTodoRequest) map[string]string {
	fields := make(map[string]string)
	if req.Title != nil && (*req.Title == "" || len(*req.Title) > maxTitleLen) {
		fields["title"] = "must be between 1 and 100 characters"
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		fields["description"] = "must be at most 500 characters"
	}
	if req.Category != nil && !entities.IsValidCategory(entities.Category(*req.Category)) {
		fields["category"] = "must be urgent or non-urgent"
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if _, err := time.Parse(time.RFC3339, *req.DueDate); err != nil {
			fields["due_date"] = "must be an RFC 3339 timestamp or empty to clear"
		}
	}
	return fields
}
