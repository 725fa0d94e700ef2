package access

import (
	"errors"
	"testing"
)

func TestDecideDeniesFrozenPrincipalEverything(t *testing.T) {
	frozen := Principal{AccountID: "acct_1", Role: RoleAdmin, Frozen: true}

	actions := []Action{
		TaskCreate, TaskRead, TaskUpdate, TaskDelete, TaskList,
		AccountList, AccountChangeRole, AccountFreeze, AccountDelete,
	}
	for _, action := range actions {
		err := Decide(frozen, Intent{Action: action, ResourceOwnerID: "acct_1"})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("action %s: expected ErrForbidden for frozen principal, got %v", action, err)
		}
	}
}

func TestDecideTaskActions(t *testing.T) {
	admin := Principal{AccountID: "acct_admin", Role: RoleAdmin}
	owner := Principal{AccountID: "acct_owner", Role: RoleStandard}
	stranger := Principal{AccountID: "acct_other", Role: RoleStandard}

	cases := []struct {
		name      string
		principal Principal
		intent    Intent
		want      error
	}{
		{"admin reads anyone's task", admin, Intent{Action: TaskRead, ResourceOwnerID: "acct_owner"}, nil},
		{"admin deletes anyone's task", admin, Intent{Action: TaskDelete, ResourceOwnerID: "acct_owner"}, nil},
		{"owner reads own task", owner, Intent{Action: TaskRead, ResourceOwnerID: "acct_owner"}, nil},
		{"owner updates own task", owner, Intent{Action: TaskUpdate, ResourceOwnerID: "acct_owner"}, nil},
		{"stranger reads someone else's task", stranger, Intent{Action: TaskRead, ResourceOwnerID: "acct_owner"}, ErrForbidden},
		{"stranger updates someone else's task", stranger, Intent{Action: TaskUpdate, ResourceOwnerID: "acct_owner"}, ErrForbidden},
		{"standard user with empty owner is denied", stranger, Intent{Action: TaskRead}, ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Decide(tc.principal, tc.intent)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDecideAccountActions(t *testing.T) {
	admin := Principal{AccountID: "acct_admin", Role: RoleAdmin}
	standard := Principal{AccountID: "acct_user", Role: RoleStandard}

	cases := []struct {
		name      string
		principal Principal
		intent    Intent
		want      error
	}{
		{"admin lists accounts", admin, Intent{Action: AccountList}, nil},
		{"standard user cannot list accounts", standard, Intent{Action: AccountList}, ErrForbidden},
		{"admin changes a role", admin, Intent{Action: AccountChangeRole}, nil},
		{"standard user cannot change a role", standard, Intent{Action: AccountChangeRole}, ErrForbidden},
		{"admin freezes an account", admin, Intent{Action: AccountFreeze}, nil},
		{"admin deletes an account", admin, Intent{Action: AccountDelete}, nil},
		{"protected target denies the admin", admin, Intent{Action: AccountDelete, TargetProtected: true}, ErrProtectedAccount},
		{"protected target denies role change", admin, Intent{Action: AccountChangeRole, TargetProtected: true}, ErrProtectedAccount},
		{"protected target denies freeze", admin, Intent{Action: AccountFreeze, TargetProtected: true}, ErrProtectedAccount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Decide(tc.principal, tc.intent)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDecideUnknownActionIsDenied(t *testing.T) {
	admin := Principal{AccountID: "acct_admin", Role: RoleAdmin}
	if err := Decide(admin, Intent{Action: Action("task.transmogrify")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown action, got %v", err)
	}
}

func TestListScope(t *testing.T) {
	admin := Principal{AccountID: "acct_admin", Role: RoleAdmin}
	if scope := ListScope(admin); !scope.All || scope.OwnerID != "" {
		t.Fatalf("expected unfiltered scope for admin, got %+v", scope)
	}

	standard := Principal{AccountID: "acct_user", Role: RoleStandard}
	if scope := ListScope(standard); scope.All || scope.OwnerID != "acct_user" {
		t.Fatalf("expected owner-pinned scope for standard user, got %+v", scope)
	}

	// A frozen admin never lists anything: the scope is irrelevant because
	// Decide denies the action itself.
	frozenAdmin := Principal{AccountID: "acct_admin", Role: RoleAdmin, Frozen: true}
	if err := Decide(frozenAdmin, Intent{Action: TaskList}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a frozen admin listing, got %v", err)
	}
}

func TestIsValidRole(t *testing.T) {
	if !IsValidRole(RoleStandard) || !IsValidRole(RoleAdmin) {
		t.Fatal("expected standard and admin to be valid roles")
	}
	if IsValidRole(Role("owner")) || IsValidRole(Role("")) {
		t.Fatal("expected unknown roles to be invalid")
	}
}
