package repository

import "errors"

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("not found")
