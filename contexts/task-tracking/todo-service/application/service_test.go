package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"tasktrack/contexts/task-tracking/todo-service/adapters/memory"
	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
	domainerrors "tasktrack/contexts/task-tracking/todo-service/domain/errors"
	"tasktrack/contexts/task-tracking/todo-service/ports"
	"tasktrack/internal/shared/access"
)

type staticOwners struct {
	known map[string]bool
}

func (o staticOwners) OwnerExists(_ context.Context, accountID string) (bool, error) {
	return o.known[accountID], nil
}

func newTestService(owners ...string) (Service, *memory.Store) {
	store := memory.NewStore()
	known := make(map[string]bool, len(owners))
	for _, owner := range owners {
		known[owner] = true
	}
	service := Service{
		Repo:        store,
		Owners:      staticOwners{known: known},
		Clock:       store,
		IDGenerator: store,
	}
	return service, store
}

var (
	alice = access.Principal{AccountID: "acct_alice", Role: access.RoleStandard}
	bob   = access.Principal{AccountID: "acct_bob", Role: access.RoleStandard}
	admin = access.Principal{AccountID: "acct_admin", Role: access.RoleAdmin}
)

func createTodo(t *testing.T, service Service, principal access.Principal, title string) entities.Todo {
	t.Helper()
	todo, err := service.Create(context.Background(), principal, "", CreateTodoInput{Title: title})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return todo
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	service, _ := newTestService()

	todo := createTodo(t, service, alice, "buy milk")
	if todo.OwnerID != alice.AccountID {
		t.Fatalf("expected the principal to own the todo, got %s", todo.OwnerID)
	}
	if todo.Category != entities.CategoryNonUrgent {
		t.Fatalf("expected non-urgent default category, got %s", todo.Category)
	}
	if todo.Completed {
		t.Fatal("expected a fresh todo to be incomplete")
	}

	if _, err := service.Create(context.Background(), alice, "", CreateTodoInput{Title: "   "}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank title, got %v", err)
	}
	if _, err := service.Create(context.Background(), alice, "", CreateTodoInput{Title: "x", Category: entities.Category("someday")}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown category, got %v", err)
	}
}

func TestCreateForAnotherOwner(t *testing.T) {
	service, _ := newTestService("acct_alice")

	// A standard user naming someone else is denied before any lookup.
	if _, err := service.Create(context.Background(), bob, alice.AccountID, CreateTodoInput{Title: "x"}); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	todo, err := service.Create(context.Background(), admin, alice.AccountID, CreateTodoInput{Title: "assigned"})
	if err != nil {
		t.Fatalf("admin create-for: %v", err)
	}
	if todo.OwnerID != alice.AccountID {
		t.Fatalf("expected alice to own the todo, got %s", todo.OwnerID)
	}

	if _, err := service.Create(context.Background(), admin, "acct_ghost", CreateTodoInput{Title: "orphan"}); !errors.Is(err, domainerrors.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound for unknown owner, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	service, _ := newTestService()
	todo := createTodo(t, service, alice, "private")

	if _, err := service.Get(context.Background(), alice, todo.TodoID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := service.Get(context.Background(), admin, todo.TodoID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := service.Get(context.Background(), bob, todo.TodoID); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := service.Get(context.Background(), alice, "todo_999999"); !errors.Is(err, domainerrors.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestListScopesAndFilters(t *testing.T) {
	service, _ := newTestService()
	createTodo(t, service, alice, "alice one")
	createTodo(t, service, alice, "alice two")
	createTodo(t, service, bob, "bob one")

	all, err := service.List(context.Background(), admin, ports.TodoFilter{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected admin to see 3 todos, got %d", len(all))
	}

	// A standard user's owner filter is pinned, even when they ask for
	// someone else's records.
	mine, err := service.List(context.Background(), alice, ports.TodoFilter{OwnerID: bob.AccountID})
	if err != nil {
		t.Fatalf("alice list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected alice to see only her 2 todos, got %d", len(mine))
	}
	for _, todo := range mine {
		if todo.OwnerID != alice.AccountID {
			t.Fatalf("leaked a foreign todo: %+v", todo)
		}
	}

	scoped, err := service.List(context.Background(), admin, ports.TodoFilter{OwnerID: bob.AccountID})
	if err != nil {
		t.Fatalf("admin scoped list: %v", err)
	}
	if len(scoped) != 1 || scoped[0].OwnerID != bob.AccountID {
		t.Fatalf("expected only bob's todo, got %+v", scoped)
	}

	found, err := service.List(context.Background(), admin, ports.TodoFilter{Search: "ALICE"})
	if err != nil {
		t.Fatalf("search list: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected case-insensitive search to match 2, got %d", len(found))
	}

	if _, err := service.List(context.Background(), admin, ports.TodoFilter{Category: entities.Category("someday")}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown category filter, got %v", err)
	}
}

func TestUpdateAllowedFields(t *testing.T) {
	service, _ := newTestService()
	due := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	todo, err := service.Create(context.Background(), alice, "", CreateTodoInput{Title: "draft", DueDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "final"
	completed := true
	urgent := entities.CategoryUrgent
	updated, err := service.Update(context.Background(), alice, todo.TodoID, ports.TodoUpdate{
		Title:     &title,
		Category:  &urgent,
		Completed: &completed,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "final" || updated.Category != entities.CategoryUrgent || !updated.Completed {
		t.Fatalf("unexpected todo after update: %+v", updated)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Fatal("expected untouched due date to survive the update")
	}

	cleared, err := service.Update(context.Background(), alice, todo.TodoID, ports.TodoUpdate{ClearDueDate: true})
	if err != nil {
		t.Fatalf("clear due date: %v", err)
	}
	if cleared.DueDate != nil {
		t.Fatal("expected the due date to be cleared")
	}

	if _, err := service.Update(context.Background(), alice, todo.TodoID, ports.TodoUpdate{}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty update, got %v", err)
	}
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	service, _ := newTestService()
	todo := createTodo(t, service, alice, "private")

	title := "hijacked"
	if _, err := service.Update(context.Background(), bob, todo.TodoID, ports.TodoUpdate{Title: &title}); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner update, got %v", err)
	}

	if _, err := service.Update(context.Background(), admin, todo.TodoID, ports.TodoUpdate{Title: &title}); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	if _, err := service.Update(context.Background(), alice, "todo_999999", ports.TodoUpdate{Title: &title}); !errors.Is(err, domainerrors.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestDeleteClassifiesOutcomes(t *testing.T) {
	service, _ := newTestService()
	todo := createTodo(t, service, alice, "doomed")

	// Someone else's todo reads as forbidden, not missing.
	if err := service.Delete(context.Background(), bob, todo.TodoID); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner delete, got %v", err)
	}

	if err := service.Delete(context.Background(), alice, todo.TodoID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := service.Get(context.Background(), alice, todo.TodoID); !errors.Is(err, domainerrors.ErrTodoNotFound) {
		t.Fatalf("expected the todo to be gone, got %v", err)
	}

	// A second delete now reads as not found.
	if err := service.Delete(context.Background(), alice, todo.TodoID); !errors.Is(err, domainerrors.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound on repeat delete, got %v", err)
	}
}

func TestAdminDeletesForeignTodo(t *testing.T) {
	service, _ := newTestService()
	todo := createTodo(t, service, alice, "moderated away")

	if err := service.Delete(context.Background(), admin, todo.TodoID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := service.Get(context.Background(), admin, todo.TodoID); !errors.Is(err, domainerrors.ErrTodoNotFound) {
		t.Fatalf("expected the todo to be gone, got %v", err)
	}
}

func TestPurgeOwnerRemovesEverything(t *testing.T) {
	service, store := newTestService()
	createTodo(t, service, alice, "one")
	createTodo(t, service, alice, "two")
	createTodo(t, service, bob, "keep")

	purged, err := store.PurgeOwner(context.Background(), alice.AccountID)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 2 {
		t.Fatalf("expected 2 purged todos, got %d", purged)
	}

	remaining, err := service.List(context.Background(), admin, ports.TodoFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].OwnerID != bob.AccountID {
		t.Fatalf("expected only bob's todo to survive, got %+v", remaining)
	}
}

// flakyTodoRepo wraps the memory store and fails Get a configured number of
// times with the retryable store error.
type flakyTodoRepo struct {
	*memory.Store
	failures    int
	getCalls    int
	sawDeadline bool
}

func (r *flakyTodoRepo) Get(ctx context.Context, todoID string) (entities.Todo, error) {
	r.getCalls++
	_, r.sawDeadline = ctx.Deadline()
	if r.failures > 0 {
		r.failures--
		return entities.Todo{}, domainerrors.ErrStoreUnavailable
	}
	return r.Store.Get(ctx, todoID)
}

func TestGetRetriesOnceWhenStoreUnavailable(t *testing.T) {
	service, store := newTestService()
	todo := createTodo(t, service, alice, "flickering")

	flaky := &flakyTodoRepo{Store: store, failures: 1}
	service.Repo = flaky

	found, err := service.Get(context.Background(), alice, todo.TodoID)
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if found.TodoID != todo.TodoID {
		t.Fatalf("expected todo %s, got %s", todo.TodoID, found.TodoID)
	}
	if flaky.getCalls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", flaky.getCalls)
	}
	if !flaky.sawDeadline {
		t.Fatal("expected the store call to carry a bounded deadline")
	}
}

func TestGetSurfacesPersistentStoreFailure(t *testing.T) {
	service, store := newTestService()
	todo := createTodo(t, service, alice, "dark")

	flaky := &flakyTodoRepo{Store: store, failures: 2}
	service.Repo = flaky

	if _, err := service.Get(context.Background(), alice, todo.TodoID); !errors.Is(err, domainerrors.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable after the retry, got %v", err)
	}
	if flaky.getCalls != 2 {
		t.Fatalf("expected the retry to stop after one attempt, got %d calls", flaky.getCalls)
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	overdue := entities.Todo{DueDate: &past}
	if !overdue.IsOverdue(now) {
		t.Fatal("expected a past-due incomplete todo to be overdue")
	}

	done := entities.Todo{DueDate: &past, Completed: true}
	if done.IsOverdue(now) {
		t.Fatal("expected a completed todo to never be overdue")
	}

	pending := entities.Todo{DueDate: &future}
	if pending.IsOverdue(now) {
		t.Fatal("expected a future-due todo to not be overdue")
	}

	undated := entities.Todo{}
	if undated.IsOverdue(now) {
		t.Fatal("expected a todo without a due date to not be overdue")
	}
}
