// Package apperrors defines the failure taxonomy shared by the store, mirror,
// provider and repository layers.
//
// Callers classify failures with errors.Is / errors.As:
//
//	if errors.Is(err, apperrors.ErrNotFound) { ... }
//	var te *apperrors.TransportError
//	if errors.As(err, &te) { ... }
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that no record exists for the given key.
var ErrNotFound = errors.New("not found")

// TransportError is a network, remote-store or non-success HTTP status failure.
type TransportError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d", e.Service, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Service, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StoreError is a failure reading or writing local persistence.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("local store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError reports annotation input that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PartialWriteError is returned when the local write committed but the
// mirror write did not. The local row keeps its new state.
type PartialWriteError struct {
	Err error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("saved locally, mirror not updated: %v", e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err carries a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Message returns a human-readable reason suitable for API responses.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var pe *PartialWriteError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Error()
	}
	if errors.Is(err, ErrNotFound) {
		return "not found"
	}
	var se *StoreError
	if errors.As(err, &se) {
		return "local store failure"
	}
	return err.Error()
}
