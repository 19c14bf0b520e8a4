package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrConstraint is the sentinel all ConstraintError values match via
	// errors.Is, so callers can branch without caring which constraint fired.
	ErrConstraint = errors.New("constraint violation")
)

// ConstraintError reports an identity, uniqueness or foreign-key violation
// at the storage boundary, carrying the offending table and constraint.
type ConstraintError struct {
	Table      string
	Constraint string
	err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation on %s (%s): %v", e.Table, e.Constraint, e.err)
}

func (e *ConstraintError) Unwrap() error { return e.err }

// Is lets errors.Is(err, ErrConstraint) match any ConstraintError.
func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

// constraintError classifies a driver error against the given table.
// Both SQLite drivers surface constraint failures in the error text
// ("UNIQUE constraint failed: table.column", "FOREIGN KEY constraint
// failed", "CHECK constraint failed: ..."), so classification is done on
// the message rather than driver-specific error types.
func constraintError(err error, table string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &ConstraintError{Table: table, Constraint: "unique", err: err}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &ConstraintError{Table: table, Constraint: "foreign key", err: err}
	case strings.Contains(msg, "CHECK constraint failed"):
		return &ConstraintError{Table: table, Constraint: "check", err: err}
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return &ConstraintError{Table: table, Constraint: "not null", err: err}
	}
	return err
}
