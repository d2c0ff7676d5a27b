package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for records that are absent, and also for records
// that exist but belong to another owner. The two cases are deliberately
// indistinguishable so that ids never leak existence across owners.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed input (bad name, bad id, missing
// required field). It is terminal for the request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a uniqueness violation, such as a duplicate
// (owner, name) pair.
type ConflictError struct {
	Resource string
	Name     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Name)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
