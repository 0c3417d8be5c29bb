package shared

import "errors"

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState indicates an operation that is illegal for the record's lifecycle state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict indicates a duplicate record, e.g. a status assigned twice.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing or invalid token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")
)
