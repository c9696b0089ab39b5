// Package apperr holds the error taxonomy shared by the store, service and API layers.
package apperr

import "errors"

var (
	// ErrInvalidArgument marks malformed caller input. Not retried.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks an identifier that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable marks a transient backing-store failure. Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStore marks an unexpected persistence failure.
	ErrStore = errors.New("store error")

	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
)
