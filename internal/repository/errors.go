package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DuplicateError reports a unique index violation on Field.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s: %v", e.Field, e.Err)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// DuplicateField returns the offending field when err is a DuplicateError.
func DuplicateField(err error) (string, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Field, true
	}
	return "", false
}
