package ports

import (
	"context"
	"time"

	"tasktrack/contexts/identity-access/account-service/domain/entities"
	"tasktrack/internal/shared/access"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts account id generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PasswordHasher is the one-way salted hashing primitive. The service treats
// hashes as opaque; Compare must resist timing shortcuts.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash string, plain string) error
}

// TokenClaims is the payload carried by a session token. The frozen flag is
// deliberately absent: verify re-reads it from the live account every time.
type TokenClaims struct {
	AccountID string
	Role      access.Role
}

// TokenCodec signs and verifies session tokens with a fixed validity window.
type TokenCodec interface {
	Issue(claims TokenClaims, now time.Time) (token string, expiresAt time.Time, err error)
	Verify(token string, now time.Time) (TokenClaims, error)
}

// Repository is the credential store boundary. Create must enforce uniqueness
// of email and username together and report violations as
// domainerrors.ErrDuplicateIdentity. ToggleFrozen must flip the flag in a
// single atomic mutation.
type Repository interface {
	Create(ctx context.Context, account entities.Account) error
	FindByID(ctx context.Context, accountID string) (entities.Account, error)
	// FindByIdentifier matches the email or the username field, exact match.
	FindByIdentifier(ctx context.Context, identifier string) (entities.Account, error)
	List(ctx context.Context) ([]entities.Account, error)
	SetRole(ctx context.Context, accountID string, role access.Role, now time.Time) (entities.Account, error)
	ToggleFrozen(ctx context.Context, accountID string, now time.Time) (entities.Account, error)
	Delete(ctx context.Context, accountID string) error
}

// TodoPurger removes every todo owned by an account. It is implemented by the
// todo store and called by DeleteAccount before the account row goes away, so
// no observable state ever holds an orphaned todo.
type TodoPurger interface {
	PurgeOwner(ctx context.Context, ownerID string) (int64, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   entities.Account
}
