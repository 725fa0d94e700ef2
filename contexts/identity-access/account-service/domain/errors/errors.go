package errors

import "errors"

var (
	// ErrInvalidCredentials covers both unknown identifier and password
	// mismatch so the two causes stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthRequired covers every token failure: missing, malformed,
	// tampered, expired, or referencing a deleted account.
	ErrAuthRequired = errors.New("authentication required")
	// ErrAccountFrozen fails verify for a frozen account even when the token
	// itself is still valid.
	ErrAccountFrozen = errors.New("account frozen")

	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateIdentity = errors.New("email or username already taken")
	ErrInvalidRequest    = errors.New("invalid request")
	// ErrStoreUnavailable is retryable; the application layer retries once
	// before surfacing it.
	ErrStoreUnavailable = errors.New("store unavailable")
)
