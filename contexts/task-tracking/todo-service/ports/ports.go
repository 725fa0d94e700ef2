package ports

import (
	"context"
	"time"

	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts todo id generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OwnerDirectory answers whether an account exists. Used when an admin
// creates a todo on another account's behalf: field shapes are validated at
// the transport edge, but business validity of the owner reference is not.
type OwnerDirectory interface {
	OwnerExists(ctx context.Context, accountID string) (bool, error)
}

// TodoUpdate is the allow-listed mutable field set. Owner and identity fields
// have no representation here, so an update can never reassign ownership.
type TodoUpdate struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Category     *entities.Category
	Completed    *bool
}

func (u TodoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil &&
		!u.ClearDueDate && u.Category == nil && u.Completed == nil
}

// TodoFilter narrows a listing. OwnerID is the storage-level owner scope; the
// service derives it from the principal's visibility, never from raw client
// input for non-admins.
type TodoFilter struct {
	OwnerID   string
	Search    string
	Category  entities.Category
	Completed *bool
}

// Repository is the task store boundary. Update and Delete take an optional
// owner scope: when scopeOwnerID is non-empty the mutation must be a single
// conditional operation keyed on (id, owner), so a concurrent ownership
// change or deletion leaves no read-then-write gap to exploit.
type Repository interface {
	Create(ctx context.Context, todo entities.Todo) error
	Get(ctx context.Context, todoID string) (entities.Todo, error)
	Update(ctx context.Context, todoID string, fields TodoUpdate, scopeOwnerID string, now time.Time) (entities.Todo, error)
	Delete(ctx context.Context, todoID string, scopeOwnerID string) (bool, error)
	List(ctx context.Context, filter TodoFilter) ([]entities.Todo, error)
	// PurgeOwner removes every todo owned by an account; it backs the
	// account deletion cascade.
	PurgeOwner(ctx context.Context, ownerID string) (int64, error)
}
