package app

import (
	"errors"
	"strings"
)

var (
	ErrUsernameExists    = errors.New("username already taken")
	ErrEmailExists       = errors.New("email already registered")
	ErrAccountExists     = errors.New("username or email already in use")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrUnauthenticated   = errors.New("invalid or expired token")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTaskID     = errors.New("invalid task id")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected input field, one message per field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsConflict reports whether err is one of the uniqueness errors.
func IsConflict(err error) bool {
	return errors.Is(err, ErrUsernameExists) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrAccountExists)
}
