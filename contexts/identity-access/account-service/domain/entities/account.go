package entities

import (
	"time"

	"tasktrack/internal/shared/access"
)

// Account is a registered identity. Email and username are unique,
// case-sensitive identifiers and immutable once set. PasswordHash is opaque
// credential material and never leaves the service boundary.
type Account struct {
	AccountID    string
	Email        string
	Username     string
	PasswordHash string
	Role         access.Role
	Frozen       bool
	// Protected marks the primordial admin. Set once at provisioning; an
	// account carrying it cannot be role-changed, frozen, or deleted.
	Protected bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
