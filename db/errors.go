// Package db holds the sentinel errors shared by every storage backend
// (db/zombiezen, db/crawshaw), following the teacher's plain-sentinel style
// (db.ErrConstraintUnique, db.ErrMissingFields) rather than a generic error
// framework.
package db

import "errors"

var (
	// ErrNotFound is returned by repository Find* methods when no row
	// matches (the aggregate repository's "None" case).
	ErrNotFound = errors.New("db: not found")

	// ErrUsernameConflict and ErrEmailConflict disambiguate
	// ErrConstraintUnique per spec.md §4.2 ("maps the violated constraint
	// name to AlreadyExists(Username|Email)"). The teacher's
	// db/crawshaw/jobqueue.go only checks
	// sqlite.SQLITE_CONSTRAINT_UNIQUE without disambiguating which index
	// fired; this is new code following that same error-translation idiom.
	ErrUsernameConflict = errors.New("db: username already exists")
	ErrEmailConflict    = errors.New("db: email already exists")

	// ErrUnknownStatus is returned when a persisted users.status value is
	// not one of the known UserState tags.
	ErrUnknownStatus = errors.New("db: unknown user status")
)
