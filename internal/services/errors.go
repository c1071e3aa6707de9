package services

import "errors"

// Failure categories surfaced by the services. Handlers translate these
// to HTTP status codes with errors.Is; everything else is a 500.
var (
	// ErrNotFound means a referenced pet, request, post or user id did
	// not resolve to a document.
	ErrNotFound = errors.New("not found")

	// ErrMismatch means a request's stored pet or requester id disagrees
	// with the operation's arguments.
	ErrMismatch = errors.New("mismatch")

	// ErrInvalidState means the target is not in the expected status for
	// the attempted transition.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorized means the acting user is not allowed to perform
	// the operation on this document.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict means the operation lost a race or would duplicate
	// existing state.
	ErrConflict = errors.New("conflict")
)
