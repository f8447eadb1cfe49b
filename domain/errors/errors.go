// Package errors provides domain-specific error types for the bridge.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
)

var (
	// ErrTruncated reports a buffer that ended inside an encoded value.
	ErrTruncated = stdErrors.New("truncated input")

	// ErrSessionEnded reports work requested after the guest ended its session.
	ErrSessionEnded = stdErrors.New("session ended")

	// ErrLoopStopped reports work posted to a host loop that no longer runs.
	ErrLoopStopped = stdErrors.New("host loop stopped")

	// ErrExportNotFound reports a call to a guest export the module lacks.
	ErrExportNotFound = stdErrors.New("guest export not found")
)

// ProtocolError is a fatal violation found while decoding a mutation or
// markup stream. Operations before Offset have already been applied.
type ProtocolError struct {
	Err    error
	Reason string
	Offset int
	Opcode byte
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("protocol violation at offset %d (opcode %d): %s", e.Offset, e.Opcode, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// CapabilityError reports a host capability that is not configured or that
// refused the request.
type CapabilityError struct {
	Err        error
	Capability string
}

func (e *CapabilityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capability %s failed: %v", e.Capability, e.Err)
	}
	return fmt.Sprintf("capability %s unavailable", e.Capability)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// StateError reports a session operation attempted in the wrong state.
type StateError struct {
	Operation string
	Want      string
	Got       string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s: session is %s, want %s", e.Operation, e.Got, e.Want)
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// GuestError wraps a failure raised while calling into the guest.
type GuestError struct {
	Err    error
	Export string
}

func (e *GuestError) Error() string {
	return fmt.Sprintf("guest call %s failed: %v", e.Export, e.Err)
}

func (e *GuestError) Unwrap() error {
	return e.Err
}
