// Package apperr defines the error taxonomy shared by the tutoring core:
// validation failures, missing students or modules, and lost-update
// conflicts detected at the store boundary.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a malformed or incomplete input. It is never
// retried and nothing is persisted when it is returned.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
	Rule    string `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field with a formatted message.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidValue is Invalid with the offending value attached.
func InvalidValue(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Value: value}
}

// ValidationErrors collects several field failures from one input.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return ve[0].Error()
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Field+" "+e.Message)
	}
	return fmt.Sprintf("validation failed: %d field errors (%s)", len(ve), strings.Join(parts, "; "))
}

// NotFoundError reports an unknown student or module.
type NotFoundError struct {
	Kind string // "student" or "module"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NotFound returns a NotFoundError for the given kind and id.
func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConflictError reports a lost update: the stored version moved between
// read and write.
type ConflictError struct {
	StudentID string
	Err       error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("concurrent update of student %q: %v", e.StudentID, e.Err)
	}
	return fmt.Sprintf("concurrent update of student %q", e.StudentID)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var ves ValidationErrors
	return errors.As(err, &ves)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err carries a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
