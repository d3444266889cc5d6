package sessiondb

import "errors"

// Sentinel errors for the repository layer. The service decides whether
// they are domain failures.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("session record not found")

	// ErrVersionConflict indicates the stored schedule version moved since it was read.
	ErrVersionConflict = errors.New("schedule version conflict")

	// ErrNoRowsAffected indicates an UPDATE matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
)
