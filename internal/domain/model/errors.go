package model

import (
	"errors"
	"fmt"
)

// Sentinel errors used by transports to classify failures with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrOracleUnavailable = errors.New("scoring oracle unavailable")
	ErrScoring           = errors.New("scoring failed")
)

// ValidationError reports a single field that violated its bound or enumeration.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// OracleUnavailableError means no score could be requested at all: the model is
// not loaded or the scoring collaborator cannot be reached.
type OracleUnavailableError struct {
	Cause  error
	Reason string
}

// NewOracleUnavailableError creates an OracleUnavailableError. cause may be nil.
func NewOracleUnavailableError(reason string, cause error) *OracleUnavailableError {
	return &OracleUnavailableError{Reason: reason, Cause: cause}
}

func (e *OracleUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scoring oracle unavailable: %s: %v", e.Reason, e.Cause)
	}
	return "scoring oracle unavailable: " + e.Reason
}

func (e *OracleUnavailableError) Unwrap() error { return e.Cause }

// Is matches ErrOracleUnavailable.
func (e *OracleUnavailableError) Is(target error) bool {
	return target == ErrOracleUnavailable
}

// ScoringError wraps a failure raised by the oracle while evaluating a request.
type ScoringError struct {
	Cause error
}

// NewScoringError wraps cause as a ScoringError.
func NewScoringError(cause error) *ScoringError {
	return &ScoringError{Cause: cause}
}

func (e *ScoringError) Error() string {
	if e.Cause == nil {
		return "scoring failed"
	}
	return e.Cause.Error()
}

func (e *ScoringError) Unwrap() error { return e.Cause }

// Is matches ErrScoring.
func (e *ScoringError) Is(target error) bool {
	return target == ErrScoring
}

// ValidationErrors collects every *ValidationError in err's tree, in order.
// It understands both single wrapping and errors.Join.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
