package errors

import "errors"

var (
	ErrTodoNotFound   = errors.New("todo not found")
	ErrOwnerNotFound  = errors.New("owner not found")
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStoreUnavailable is retryable; the application layer retries once
	// before surfacing it.
	ErrStoreUnavailable = errors.New("store unavailable")
)
