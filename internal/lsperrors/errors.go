// Package lsperrors defines the two error kinds the engine surfaces:
// ProtocolError for observable protocol-contract violations and
// InvariantViolation for internal misuse of a collaborator.
package lsperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrProtocol is the sentinel wrapped by every ProtocolError.
	ErrProtocol = errors.New("protocol error")

	// ErrInvariant is the sentinel wrapped by every InvariantViolation.
	ErrInvariant = errors.New("invariant violation")
)

// ProtocolError reports an observable violation of the protocol contract:
// an illegal state transition, a header emitted twice, a body overrun, a
// premature MessageEnd, a send_json call from an incompatible state, or a
// next_event call before a client has sent its request.
type ProtocolError struct {
	// Code is a short machine-readable label (e.g. "illegal-transition").
	Code string
	// Err is the underlying cause, if any.
	Err error
}

// NewProtocolError builds a ProtocolError with the given code and message.
func NewProtocolError(code, msg string) *ProtocolError {
	return &ProtocolError{Code: code, Err: errors.New(msg)}
}

// NewProtocolErrorf builds a ProtocolError with a formatted message.
func NewProtocolErrorf(code, format string, args ...any) *ProtocolError {
	return &ProtocolError{Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lsp protocol error [%s]: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("lsp protocol error [%s]", e.Code)
}

// Unwrap exposes the underlying cause to errors.Unwrap/errors.As.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProtocol, so errors.Is(err, ErrProtocol)
// matches any *ProtocolError regardless of Code.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// InvariantViolation reports internal misuse of a collaborator: append
// before set_length, try_extract_data before header extraction,
// get_received_data on incomplete input, and similar caller bugs.
type InvariantViolation struct {
	// Code is a short machine-readable label (e.g. "length-not-set").
	Code string
	// Err is the underlying cause, if any.
	Err error
}

// NewInvariantViolation builds an InvariantViolation with the given code and message.
func NewInvariantViolation(code, msg string) *InvariantViolation {
	return &InvariantViolation{Code: code, Err: errors.New(msg)}
}

func (e *InvariantViolation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lsp invariant violation [%s]: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("lsp invariant violation [%s]", e.Code)
}

// Unwrap exposes the underlying cause to errors.Unwrap/errors.As.
func (e *InvariantViolation) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvariant, so errors.Is(err, ErrInvariant)
// matches any *InvariantViolation regardless of Code.
func (e *InvariantViolation) Is(target error) bool {
	return target == ErrInvariant
}

// Promote converts an InvariantViolation raised by a collaborator (the
// collector or the receive buffer) into a ProtocolError at the Connection
// boundary. Any other error (including nil) passes through unchanged.
func Promote(code string, err error) error {
	if err == nil {
		return nil
	}
	var iv *InvariantViolation
	if errors.As(err, &iv) {
		return &ProtocolError{Code: code, Err: iv}
	}
	return err
}
