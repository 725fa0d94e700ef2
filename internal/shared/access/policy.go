// Package access is the single authorization decision point. Every operation
// builds an Intent and asks Decide; no handler re-implements role checks.
package access

import "errors"

var (
	// ErrForbidden is the generic denial. Transport maps it to 403 with no
	// detail about why the decision went against the caller.
	ErrForbidden = errors.New("forbidden")
	// ErrProtectedAccount denies role/freeze/delete against the provisioned
	// primordial admin regardless of who asks.
	ErrProtectedAccount = errors.New("protected account")
)

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

func IsValidRole(role Role) bool {
	switch role {
	case RoleStandard, RoleAdmin:
		return true
	default:
		return false
	}
}

// Principal is the verified identity making a request.
type Principal struct {
	AccountID string
	Role      Role
	Frozen    bool
}

// Action enumerates everything the service can be asked to do.
type Action string

const (
	TaskCreate Action = "task.create"
	TaskRead   Action = "task.read"
	TaskUpdate Action = "task.update"
	TaskDelete Action = "task.delete"
	TaskList   Action = "task.list"

	AccountList       Action = "account.list"
	AccountChangeRole Action = "account.change_role"
	AccountFreeze     Action = "account.freeze"
	AccountDelete     Action = "account.delete"
)

// Intent describes a requested operation against a resource.
// ResourceOwnerID is the stored owner of the target task, never a value taken
// from client input. TargetProtected is the protected flag of the target
// account for account mutations.
type Intent struct {
	Action          Action
	ResourceOwnerID string
	TargetProtected bool
}

// Decide evaluates the rules in order; the first match wins and anything not
// matched is denied. It is pure and deterministic: the same principal/intent
// pair always yields the same result.
func Decide(p Principal, intent Intent) error {
	if p.Frozen {
		return ErrForbidden
	}

	switch intent.Action {
	case AccountChangeRole, AccountFreeze, AccountDelete:
		if intent.TargetProtected {
			return ErrProtectedAccount
		}
		if p.Role == RoleAdmin {
			return nil
		}
		return ErrForbidden

	case AccountList:
		if p.Role == RoleAdmin {
			return nil
		}
		return ErrForbidden

	case TaskCreate, TaskRead, TaskUpdate, TaskDelete, TaskList:
		if p.Role == RoleAdmin {
			return nil
		}
		if intent.ResourceOwnerID != "" && intent.ResourceOwnerID == p.AccountID {
			return nil
		}
		return ErrForbidden
	}

	return ErrForbidden
}

// Scope is the visibility filter for collection reads.
type Scope struct {
	// All grants unfiltered visibility.
	All bool
	// OwnerID restricts visibility to one owner when All is false.
	OwnerID string
}

// ListScope derives the collection visibility from the principal's role.
// Request parameters can never widen it: a standard user is always pinned to
// their own records. Frozen is not re-checked here; Decide owns that rule and
// every listing consults it before touching storage.
func ListScope(p Principal) Scope {
	if p.Role == RoleAdmin {
		return Scope{All: true}
	}
	return Scope{OwnerID: p.AccountID}
}
