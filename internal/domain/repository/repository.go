package repository

import "errors"

// ErrNotFound is returned by all repositories when no record matches.
// Absence is not a failure at this layer; services translate it into a
// domain-level not-found.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when an insert or update loses a race against a
// uniqueness constraint. Services check uniqueness before writing, but the
// constraint is the only check that holds under concurrency.
var ErrConflict = errors.New("record already exists")
