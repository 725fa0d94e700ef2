package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tasktrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "tasktrack/contexts/identity-access/account-service/domain/errors"
	"tasktrack/contexts/identity-access/account-service/ports"
	"tasktrack/internal/shared/access"
)

// Service implements registration, session issuing/verification and the
// admin-only account lifecycle. Every lifecycle mutation consults
// access.Decide before touching storage.
type Service struct {
	Repo         ports.Repository
	Todos        ports.TodoPurger
	Hasher       ports.PasswordHasher
	Tokens       ports.TokenCodec
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Logger       *slog.Logger
	StoreTimeout time.Duration
}

func (s Service) Register(ctx context.Context, email, username, password string) (entities.Account, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return entities.Account{}, domainerrors.ErrInvalidRequest
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return entities.Account{}, err
	}
	accountID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Account{}, err
	}

	now := s.now()
	account := entities.Account{
		AccountID:    accountID,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         access.RoleStandard,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store(ctx, func(ctx context.Context) error {
		return s.Repo.Create(ctx, account)
	}); err != nil {
		return entities.Account{}, err
	}

	s.logger().Info("account registered",
		"event", "account_registered",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", account.AccountID,
	)
	return account, nil
}

// phantomHash is a well-formed bcrypt digest matching no password. Login
// compares against it when the identifier resolves to nothing, so both
// failure paths cost a full hash comparison.
const phantomHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Login authenticates by email or username. Unknown identifier and password
// mismatch both come back as ErrInvalidCredentials so callers cannot
// enumerate accounts, by error shape or by timing.
func (s Service) Login(ctx context.Context, identifier, password string) (ports.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return ports.Session{}, domainerrors.ErrInvalidCredentials
	}

	var account entities.Account
	err := s.store(ctx, func(ctx context.Context) error {
		found, err := s.Repo.FindByIdentifier(ctx, identifier)
		account = found
		return err
	})
	if errors.Is(err, domainerrors.ErrAccountNotFound) {
		_ = s.Hasher.Compare(phantomHash, password)
		return ports.Session{}, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return ports.Session{}, err
	}

	if err := s.Hasher.Compare(account.PasswordHash, password); err != nil {
		return ports.Session{}, domainerrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.Tokens.Issue(ports.TokenClaims{
		AccountID: account.AccountID,
		Role:      account.Role,
	}, s.now())
	if err != nil {
		return ports.Session{}, err
	}

	s.logger().Info("session issued",
		"event", "session_issued",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", account.AccountID,
	)
	return ports.Session{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// Verify decodes the token and re-reads the live account. The frozen flag in
// particular is never trusted from the token: freezing is the only supported
// mid-lifetime revocation and must bite on the next request.
func (s Service) Verify(ctx context.Context, token string) (access.Principal, error) {
	claims, err := s.Tokens.Verify(token, s.now())
	if err != nil {
		return access.Principal{}, domainerrors.ErrAuthRequired
	}

	var account entities.Account
	err = s.store(ctx, func(ctx context.Context) error {
		found, err := s.Repo.FindByID(ctx, claims.AccountID)
		account = found
		return err
	})
	if errors.Is(err, domainerrors.ErrAccountNotFound) {
		return access.Principal{}, domainerrors.ErrAuthRequired
	}
	if err != nil {
		return access.Principal{}, err
	}
	if account.Frozen {
		return access.Principal{}, domainerrors.ErrAccountFrozen
	}

	return access.Principal{
		AccountID: account.AccountID,
		Role:      account.Role,
	}, nil
}

func (s Service) ListAccounts(ctx context.Context, principal access.Principal) ([]entities.Account, error) {
	if err := access.Decide(principal, access.Intent{Action: access.AccountList}); err != nil {
		return nil, err
	}
	var accounts []entities.Account
	err := s.store(ctx, func(ctx context.Context) error {
		found, err := s.Repo.List(ctx)
		accounts = found
		return err
	})
	return accounts, err
}

func (s Service) ChangeRole(ctx context.Context, principal access.Principal, targetID string, role access.Role) (entities.Account, error) {
	if !access.IsValidRole(role) {
		return entities.Account{}, domainerrors.ErrInvalidRequest
	}
	target, err := s.authorizeMutation(ctx, principal, access.AccountChangeRole, targetID)
	if err != nil {
		return entities.Account{}, err
	}

	var updated entities.Account
	err = s.store(ctx, func(ctx context.Context) error {
		item, err := s.Repo.SetRole(ctx, target.AccountID, role, s.now())
		updated = item
		return err
	})
	if err != nil {
		return entities.Account{}, err
	}

	s.logger().Info("account role changed",
		"event", "account_role_changed",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", target.AccountID,
		"role", string(role),
	)
	return updated, nil
}

func (s Service) ToggleFreeze(ctx context.Context, principal access.Principal, targetID string) (entities.Account, error) {
	target, err := s.authorizeMutation(ctx, principal, access.AccountFreeze, targetID)
	if err != nil {
		return entities.Account{}, err
	}

	var updated entities.Account
	err = s.store(ctx, func(ctx context.Context) error {
		item, err := s.Repo.ToggleFrozen(ctx, target.AccountID, s.now())
		updated = item
		return err
	})
	if err != nil {
		return entities.Account{}, err
	}

	s.logger().Info("account freeze toggled",
		"event", "account_freeze_toggled",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", target.AccountID,
		"frozen", updated.Frozen,
	)
	return updated, nil
}

// DeleteAccount purges the target's todos before removing the account, so a
// concurrent reader can never resolve a todo whose owner is gone.
func (s Service) DeleteAccount(ctx context.Context, principal access.Principal, targetID string) error {
	target, err := s.authorizeMutation(ctx, principal, access.AccountDelete, targetID)
	if err != nil {
		return err
	}

	var purged int64
	if err := s.store(ctx, func(ctx context.Context) error {
		count, err := s.Todos.PurgeOwner(ctx, target.AccountID)
		purged = count
		return err
	}); err != nil {
		return err
	}
	if err := s.store(ctx, func(ctx context.Context) error {
		return s.Repo.Delete(ctx, target.AccountID)
	}); err != nil {
		return err
	}

	s.logger().Info("account deleted",
		"event", "account_deleted",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", target.AccountID,
		"todos_purged", purged,
	)
	return nil
}

// EnsurePrimordialAdmin provisions the single protected admin account at
// startup. It is idempotent: an existing account with the same email wins,
// though a holder that is not the protected admin is flagged in the log.
func (s Service) EnsurePrimordialAdmin(ctx context.Context, email, username, password string) error {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return domainerrors.ErrInvalidRequest
	}

	var existing entities.Account
	err := s.store(ctx, func(ctx context.Context) error {
		found, err := s.Repo.FindByIdentifier(ctx, email)
		existing = found
		return err
	})
	if err == nil {
		if !existing.Protected {
			s.logger().Warn("primordial admin email held by an unprotected account",
				"event", "primordial_admin_identity_mismatch",
				"module", "identity-access/account-service",
				"layer", "application",
				"account_id", existing.AccountID,
			)
		}
		return nil
	}
	if !errors.Is(err, domainerrors.ErrAccountNotFound) {
		return err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return err
	}
	accountID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	account := entities.Account{
		AccountID:    accountID,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         access.RoleAdmin,
		Protected:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store(ctx, func(ctx context.Context) error {
		return s.Repo.Create(ctx, account)
	}); err != nil {
		return err
	}

	s.logger().Info("primordial admin provisioned",
		"event", "primordial_admin_provisioned",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", account.AccountID,
	)
	return nil
}

// authorizeMutation runs the two-step engine consultation: the action-only
// intent first, so a non-admin caller is turned away without learning whether
// the target exists, then the full intent carrying the target's protected
// flag once the target has been loaded.
func (s Service) authorizeMutation(ctx context.Context, principal access.Principal, action access.Action, targetID string) (entities.Account, error) {
	if err := access.Decide(principal, access.Intent{Action: action}); err != nil {
		return entities.Account{}, err
	}

	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}

	var target entities.Account
	err := s.store(ctx, func(ctx context.Context) error {
		found, err := s.Repo.FindByID(ctx, targetID)
		target = found
		return err
	})
	if err != nil {
		return entities.Account{}, err
	}

	if err := access.Decide(principal, access.Intent{
		Action:          action,
		TargetProtected: target.Protected,
	}); err != nil {
		return entities.Account{}, err
	}
	return target, nil
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
			"module", "identity-access/account-service",
			"layer", "application",
		)
		err = attempt()
	}
	return err
}
