package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a bond, wallet, lot or user is absent.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input. Use errors.As with *ValidationError for details.
	ErrValidation = errors.New("validation error")

	// ErrInsufficientBalance is returned when a sale exceeds the open quantity.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUndefinedReturn is returned when a percentage return is requested
	// for a position with zero invested capital.
	ErrUndefinedReturn = errors.New("return undefined: zero invested capital")

	// ErrNoShareholders is returned when a dividend has no eligible lots.
	ErrNoShareholders = fmt.Errorf("no shareholders: %w", ErrNotFound)

	// ErrConflict is returned when a record with the same identity already exists.
	ErrConflict = errors.New("conflict")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
