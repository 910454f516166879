package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a resource id has no backing record.
	ErrNotFound = errors.New("resource not found")
	// ErrNotAuthenticated is returned when an anonymous principal attempts a mutation.
	ErrNotAuthenticated = errors.New("authentication required")
	// ErrPermissionDenied is returned when an authenticated principal is not the owner.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotYourProfile is returned when a principal edits a profile they do not own.
	// Kept separate from ErrPermissionDenied so the transport can answer with a
	// not-found response instead of a forbidden one.
	ErrNotYourProfile = errors.New("it is not your profile")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when registering with an email already in use.
	ErrEmailTaken = errors.New("email address already in use")
)

// FieldError describes a single field-level constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one or more field-level violations. It is recovered
// by the caller and re-displayed next to the offending fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// errOrNil returns the error when at least one field failed.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err is a field-level validation failure and
// returns it typed when so.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
