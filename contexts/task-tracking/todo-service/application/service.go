package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
	domainerrors "tasktrack/contexts/task-tracking/todo-service/domain/errors"
	"tasktrack/contexts/task-tracking/todo-service/ports"
	"tasktrack/internal/shared/access"
)

// CreateTodoInput carries the creatable fields. Owner is decided by the
// service from the principal (or an admin-supplied target), never by the
// request payload.
type CreateTodoInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Category    entities.Category
}

// Service implements the permission-gated task store operations. Every
// operation resolves the stored owner and asks access.Decide; none of them
// re-implements a role check locally.
type Service struct {
	Repo         ports.Repository
	Owners       ports.OwnerDirectory
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Logger       *slog.Logger
	StoreTimeout time.Duration
}

// Create stores a new todo. ownerID selects the owning account for admin
// calls; when empty the principal owns the result. A standard user naming
// anyone but themselves is denied by the engine.
func (s Service) Create(ctx context.Context, principal access.Principal, ownerID string, input CreateTodoInput) (entities.Todo, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		ownerID = principal.AccountID
	}
	if err := access.Decide(principal, access.Intent{
		Action:          access.TaskCreate,
		ResourceOwnerID: ownerID,
	}); err != nil {
		return entities.Todo{}, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return entities.Todo{}, domainerrors.ErrInvalidRequest
	}
	if input.Category == "" {
		input.Category = entities.CategoryNonUrgent
	}
	if !entities.IsValidCategory(input.Category) {
		return entities.Todo{}, domainerrors.ErrInvalidRequest
	}

	if ownerID != principal.AccountID {
		var exists bool
		if err := s.store(ctx, func(ctx context.Context) error {
			ok, err := s.Owners.OwnerExists(ctx, ownerID)
			exists = ok
			return err
		}); err != nil {
			return entities.Todo{}, err
		}
		if !exists {
			return entities.Todo{}, domainerrors.ErrOwnerNotFound
		}
	}

	todoID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Todo{}, err
	}
	now := s.now()
	todo := entities.Todo{
		TodoID:      todoID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		DueDate:     input.DueDate,
		Category:    input.Category,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store(ctx, func(ctx context.Context) error {
		return s.Repo.Create(ctx, todo)
	}); err != nil {
		return entities.Todo{}, err
	}

	s.logger().Info("todo created",
		"event", "todo_created",
		"module", "task-tracking/todo-service",
		"layer", "application",
		"todo_id", todo.TodoID,
		"owner_id", todo.OwnerID,
	)
	return todo, nil
}

func (s Service) Get(ctx context.Context, principal access.Principal, todoID string) (entities.Todo, error) {
	var todo entities.Todo
	err := s.store(ctx, func(ctx context.Context) error {
		found, err := s.Repo.Get(ctx, strings.TrimSpace(todoID))
		todo = found
		return err
	})
	if err != nil {
		return entities.Todo{}, err
	}

	if err := access.Decide(principal, access.Intent{
		Action:          access.TaskRead,
		ResourceOwnerID: todo.OwnerID,
	}); err != nil {
		return entities.Todo{}, err
	}
	return todo, nil
}

// List applies the principal's visibility scope before any client-supplied
// filter: a standard user's result set is pinned to their own todos no matter
// what owner filter the request carried.
func (s Service) List(ctx context.Context, principal access.Principal, filter ports.TodoFilter) ([]entities.Todo, error) {
	scope := access.ListScope(principal)
	if !scope.All {
		filter.OwnerID = scope.OwnerID
	}
	if err := access.Decide(principal, access.Intent{
		Action:          access.TaskList,
		ResourceOwnerID: principal.AccountID,
	}); err != nil {
		return nil, err
	}
	if filter.Category != "" && !entities.IsValidCategory(filter.Category) {
		return nil, domainerrors.ErrInvalidRequest
	}

	var todos []entities.Todo
	err := s.store(ctx, func(ctx context.Context) error {
		found, err := s.Repo.List(ctx, filter)
		todos = found
		return err
	})
	return todos, err
}

// Update mutates the allow-listed fields. Non-admin updates are executed as a
// single conditional operation keyed on (id, owner=principal).
func (s Service) Update(ctx context.Context, principal access.Principal, todoID string, fields ports.TodoUpdate) (entities.Todo, error) {
	if fields.Empty() {
		return entities.Todo{}, domainerrors.ErrInvalidRequest
	}
	if fields.Category != nil && !entities.IsValidCategory(*fields.Category) {
		return entities.Todo{}, domainerrors.ErrInvalidRequest
	}
	todoID = strings.TrimSpace(todoID)

	var current entities.Todo
	err := s.store(ctx, func(ctx context.Context) error {
		found, err := s.Repo.Get(ctx, todoID)
		current = found
		return err
	})
	if err != nil {
		return entities.Todo{}, err
	}
	if err := access.Decide(principal, access.Intent{
		Action:          access.TaskUpdate,
		ResourceOwnerID: current.OwnerID,
	}); err != nil {
		return entities.Todo{}, err
	}

	scope := ""
	if principal.Role != access.RoleAdmin {
		scope = principal.AccountID
	}
	var updated entities.Todo
	err = s.store(ctx, func(ctx context.Context) error {
		item, err := s.Repo.Update(ctx, todoID, fields, scope, s.now())
		updated = item
		return err
	})
	if err != nil {
		return entities.Todo{}, err
	}

	s.logger().Info("todo updated",
		"event", "todo_updated",
		"module", "task-tracking/todo-service",
		"layer", "application",
		"todo_id", todoID,
	)
	return updated, nil
}

// Delete removes a todo. For non-admins the storage call itself is keyed on
// (id, owner=principal); a zero-row outcome is classified afterwards so a
// missing todo reads as not found and someone else's as forbidden.
func (s Service) Delete(ctx context.Context, principal access.Principal, todoID string) error {
	if err := access.Decide(principal, access.Intent{
		Action:          access.TaskDelete,
		ResourceOwnerID: principal.AccountID,
	}); err != nil {
		return err
	}

	todoID = strings.TrimSpace(todoID)
	scope := ""
	if principal.Role != access.RoleAdmin {
		scope = principal.AccountID
	}

	var deleted bool
	err := s.store(ctx, func(ctx context.Context) error {
		ok, err := s.Repo.Delete(ctx, todoID, scope)
		deleted = ok
		return err
	})
	if err != nil {
		return err
	}
	if !deleted {
		err := s.store(ctx, func(ctx context.Context) error {
			_, err := s.Repo.Get(ctx, todoID)
			return err
		})
		if err != nil {
			return err
		}
		return access.ErrForbidden
	}

	s.logger().Info("todo deleted",
		"event", "todo_deleted",
		"module", "task-tracking/todo-service",
		"layer", "application",
		"todo_id", todoID,
	)
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s Service) storeTimeout() time.Duration {
	if s.StoreTimeout <= 0 {
		return 5 * time.Second
	}
	return s.StoreTimeout
}

// store applies the bounded per-call timeout and retries once when the store
// reports itself unavailable.
func (s Service) store(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.storeTimeout())
		defer cancel()
		return fn(callCtx)
	}
	err := attempt()
	if errors.Is(err, domainerrors.ErrStoreUnavailable) {
		s.logger().Warn("store unavailable, retrying once",
			"event", "store_retry",
			"module", "task-tracking/todo-service",
			"layer", "application",
		)
		err = attempt()
	}
	return err
}
