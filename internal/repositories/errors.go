package repositories

import "errors"

// Sentinel errors shared by every repository implementation. Callers match
// them with errors.Is and decide the HTTP mapping themselves.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")
)
