package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a call has no valid session or provider credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a record is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks missing or malformed request fields.
	ErrValidation = errors.New("validation failed")
	// ErrDownstream marks a failed call to the data store, a provider or the LLM.
	ErrDownstream = errors.New("downstream failure")
)

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// DownstreamError wraps a failure reported by an external collaborator.
type DownstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *DownstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

// Unwrap exposes both the ErrDownstream marker and the cause.
func (e *DownstreamError) Unwrap() []error { return []error{ErrDownstream, e.Err} }

// Downstream wraps err as a DownstreamError for service. A nil err stays nil.
func Downstream(service string, err error) error {
	if err == nil {
		return nil
	}
	var de *DownstreamError
	if errors.As(err, &de) {
		return err
	}
	return &DownstreamError{Service: service, Err: err}
}
