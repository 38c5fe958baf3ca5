package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a uniqueness
// constraint. The database index is the authority: application-level
// pre-checks are advisory and racy on their own.
var ErrDuplicate = errors.New("duplicate record")
