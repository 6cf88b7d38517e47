package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCategory    = errors.New("invalid property type")
	ErrInvalidAddOn       = errors.New("invalid add-on")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreFailure       = errors.New("store failure")
)

// InvalidAddOnError names the add-on a request referenced that is unknown or inactive.
type InvalidAddOnError struct {
	ID     string
	Reason string
}

func (e *InvalidAddOnError) Error() string {
	return fmt.Sprintf("invalid add-on %q: %s", e.ID, e.Reason)
}

func (e *InvalidAddOnError) Is(target error) bool {
	return target == ErrInvalidAddOn
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field of a request, not just the first.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns nil when no field was added.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StoreError wraps a persistence failure so callers can match ErrStoreFailure.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreFailure, op, err)
}
