package domain

import "errors"

var (
	// ErrValidation marks caller input that fails domain rules.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an operation rejected by the current row state.
	ErrConflict = errors.New("conflict")
)
