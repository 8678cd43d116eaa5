package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrSessionNotFound is returned when a console session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a console session is past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnauthorized indicates missing or invalid console credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a signed-in user without the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
