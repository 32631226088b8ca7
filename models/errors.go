package models

import (
	"errors"
	"fmt"
	"strings"
)

// Domain error taxonomy. All of these are recoverable conditions returned
// to the calling layer; anything else from the repositories is treated as
// a persistence failure.
var (
	ErrCarNotFound   = errors.New("car not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrUserNotFound  = errors.New("user not found")

	// ErrCarUnavailable is the precondition failure when creating an
	// order for a car that is already reserved
	ErrCarUnavailable = errors.New("car is no longer available")

	// ErrInvalidTransition is returned for any status change outside the
	// order state machine's transition table
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrCarReserved guards car deletion while an in-flight order
	// references the car
	ErrCarReserved = errors.New("car has an order in progress")

	ErrDuplicateUser      = errors.New("user with this email or username already exists")
	ErrAdminProtected     = errors.New("admin users cannot be deleted")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
)

// FieldError is a single field-level validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level validation failures
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Add appends a field-level message
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns the error if any field failed, nil otherwise
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
