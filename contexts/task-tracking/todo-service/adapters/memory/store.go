package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
	domainerrors "tasktrack/contexts/task-tracking/todo-service/domain/errors"
	"tasktrack/contexts/task-tracking/todo-service/ports"
)

// Store is the in-memory task store used by tests and the memory storage
// driver. Each method holds the mutex for its whole critical section, so the
// conditional owner-scoped mutations are atomic.
type Store struct {
	mu       sync.RWMutex
	byID     map[string]entities.Todo
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		byID: make(map[string]entities.Todo),
	}
}

func (s *Store) Create(_ context.Context, todo entities.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[todo.TodoID] = todo
	return nil
}

func (s *Store) Get(_ context.Context, todoID string) (entities.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todo, ok := s.byID[todoID]
	if !ok {
		return entities.Todo{}, domainerrors.ErrTodoNotFound
	}
	return todo, nil
}

func (s *Store) Update(_ context.Context, todoID string, fields ports.TodoUpdate, scopeOwnerID string, now time.Time) (entities.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.byID[todoID]
	if !ok || (scopeOwnerID != "" && todo.OwnerID != scopeOwnerID) {
		return entities.Todo{}, domainerrors.ErrTodoNotFound
	}

	if fields.Title != nil {
		todo.Title = *fields.Title
	}
	if fields.Description != nil {
		todo.Description = *fields.Description
	}
	if fields.DueDate != nil {
		due := *fields.DueDate
		todo.DueDate = &due
	}
	if fields.ClearDueDate {
		todo.DueDate = nil
	}
	if fields.Category != nil {
		todo.Category = *fields.Category
	}
	if fields.Completed != nil {
		todo.Completed = *fields.Completed
	}
	todo.UpdatedAt = now.UTC()
	s.byID[todoID] = todo
	return todo, nil
}

func (s *Store) Delete(_ context.Context, todoID string, scopeOwnerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.byID[todoID]
	if !ok || (scopeOwnerID != "" && todo.OwnerID != scopeOwnerID) {
		return false, nil
	}
	delete(s.byID, todoID)
	return true, nil
}

func (s *Store) List(_ context.Context, filter ports.TodoFilter) ([]entities.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := make([]entities.Todo, 0, len(s.byID))
	for _, todo := range s.byID {
		if filter.OwnerID != "" && todo.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Category != "" && todo.Category != filter.Category {
			continue
		}
		if filter.Completed != nil && todo.Completed != *filter.Completed {
			continue
		}
		if filter.Search != "" && !matchesSearch(todo, filter.Search) {
			continue
		}
		todos = append(todos, todo)
	}
	sort.Slice(todos, func(i, j int) bool {
		if todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].TodoID > todos[j].TodoID
		}
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (s *Store) PurgeOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, todo := range s.byID {
		if todo.OwnerID == ownerID {
			delete(s.byID, id)
			purged++
		}
	}
	return purged, nil
}

func matchesSearch(todo entities.Todo, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(todo.Title), needle) ||
		strings.Contains(strings.ToLower(todo.Description), needle)
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID implements ports.IDGenerator with a deterministic sequence.
func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("todo_%06d", s.sequence), nil
}
