package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a lookup by id yields no row.
var ErrNotFound = errors.New("not found")

// ConflictError is a uniqueness violation translated into a field-level
// message ("Username already taken" and friends). Everything the driver
// reports that is not a recognized unique constraint propagates as a
// generic persistence error instead.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ConflictFor pattern-matches a unique constraint name into a typed
// conflict. Constraint names are part of the schema surface, see
// migrations/001_init.sql.
func ConflictFor(constraint string) *ConflictError {
	switch {
	case strings.Contains(constraint, "username"):
		return &ConflictError{Field: "username", Message: "Username already taken"}
	case strings.Contains(constraint, "email"):
		return &ConflictError{Field: "email", Message: "Email already registered"}
	case strings.Contains(constraint, "participants"):
		return &ConflictError{Field: "contest_id", Message: "Already joined this contest"}
	default:
		return &ConflictError{Message: fmt.Sprintf("duplicate value violates %s", constraint)}
	}
}
