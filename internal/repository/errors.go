package repository

import "errors"

var (
	// ErrNotFound is returned when a document id does not resolve.
	ErrNotFound = errors.New("document not found")
	// ErrNotMatched is returned when a guarded update matched no document,
	// e.g. a compare-and-swap ownership transfer racing a concurrent one.
	ErrNotMatched = errors.New("no document matched update filter")
)
