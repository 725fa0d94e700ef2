package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tasktrack/contexts/task-tracking/todo-service/application"
	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
	domainerrors "tasktrack/contexts/task-tracking/todo-service/domain/errors"
	"tasktrack/contexts/task-tracking/todo-service/ports"
	httptransport "tasktrack/contexts/task-tracking/todo-service/transport/http"
	"tasktrack/internal/shared/access"
)

type Handler struct {
	Service application.Service
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (h Handler) CreateHandler(ctx context.Context, principal access.Principal, allowOwner bool, req httptransport.CreateTodoRequest) (httptransport.TodoResponse, error) {
	input := application.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    entities.Category(req.Category),
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return httptransport.TodoResponse{}, domainerrors.ErrInvalidRequest
		}
		input.DueDate = &due
	}

	ownerID := ""
	if allowOwner {
		ownerID = strings.TrimSpace(req.OwnerID)
	}
	todo, err := h.Service.Create(ctx, principal, ownerID, input)
	if err != nil {
		return httptransport.TodoResponse{}, err
	}
	return httptransport.TodoResponse{Status: "success", Data: h.todoView(todo)}, nil
}

func (h Handler) GetHandler(ctx context.Context, principal access.Principal, todoID string) (httptransport.TodoResponse, error) {
	todo, err := h.Service.Get(ctx, principal, todoID)
	if err != nil {
		return httptransport.TodoResponse{}, err
	}
	return httptransport.TodoResponse{Status: "success", Data: h.todoView(todo)}, nil
}

func (h Handler) ListHandler(ctx context.Context, principal access.Principal, filter ports.TodoFilter) (httptransport.ListTodosResponse, error) {
	todos, err := h.Service.List(ctx, principal, filter)
	if err != nil {
		return httptransport.ListTodosResponse{}, err
	}
	resp := httptransport.ListTodosResponse{
		Status: "success",
		Data:   make([]httptransport.TodoView, 0, len(todos)),
	}
	for _, todo := range todos {
		resp.Data = append(resp.Data, h.todoView(todo))
	}
	return resp, nil
}

func (h Handler) UpdateHandler(ctx context.Context, principal access.Principal, todoID string, req httptransport.UpdateTodoRequest) (httptransport.TodoResponse, error) {
	fields := ports.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Category != nil {
		category := entities.Category(*req.Category)
		fields.Category = &category
	}
	if req.DueDate != nil {
		if strings.TrimSpace(*req.DueDate) == "" {
			fields.ClearDueDate = true
		} else {
			due, err := time.Parse(time.RFC3339, *req.DueDate)
			if err != nil {
				return httptransport.TodoResponse{}, domainerrors.ErrInvalidRequest
			}
			fields.DueDate = &due
		}
	}

	todo, err := h.Service.Update(ctx, principal, todoID, fields)
	if err != nil {
		return httptransport.TodoResponse{}, err
	}
	return httptransport.TodoResponse{Status: "success", Data: h.todoView(todo)}, nil
}

func (h Handler) DeleteHandler(ctx context.Context, principal access.Principal, todoID string) (httptransport.DeleteTodoResponse, error) {
	todoID = strings.TrimSpace(todoID)
	if err := h.Service.Delete(ctx, principal, todoID); err != nil {
		return httptransport.DeleteTodoResponse{}, err
	}
	resp := httptransport.DeleteTodoResponse{Status: "success"}
	resp.Data.TodoID = todoID
	return resp, nil
}

func (h Handler) todoView(todo entities.Todo) httptransport.TodoView {
	view := httptransport.TodoView{
		TodoID:      todo.TodoID,
		Title:       todo.Title,
		Description: todo.Description,
		Category:    string(todo.Category),
		Completed:   todo.Completed,
		IsOverdue:   todo.IsOverdue(h.now()),
		OwnerID:     todo.OwnerID,
		CreatedAt:   todo.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   todo.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if todo.DueDate != nil {
		due := todo.DueDate.UTC().Format(time.RFC3339)
		view.DueDate = &due
	}
	return view
}

func (h Handler) now() time.Time {
	if h.Clock == nil {
		return time.Now().UTC()
	}
	return h.Clock.Now().UTC()
}
