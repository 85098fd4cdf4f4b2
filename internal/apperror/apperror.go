package apperror

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for absent ids and for items the caller may not see.
// The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrUnauthenticated is returned when an anonymous caller attempts an action
// that needs an identity.
var ErrUnauthenticated = errors.New("authentication required")

// ValidationError reports a bad field value.
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

// Invalid is shorthand for a *ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthorizationError means the identity is valid but lacks the capability.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s", e.Action)
}
