package lsperrors

import (
	"errors"
	"testing"
)

func TestProtocolError_IsMatchesSentinel(t *testing.T) {
	err := NewProtocolError("illegal-transition", "boom")
	if !errors.Is(err, ErrProtocol) {
		t.Error("expected errors.Is(err, ErrProtocol) to be true")
	}
	if errors.Is(err, ErrInvariant) {
		t.Error("expected errors.Is(err, ErrInvariant) to be false")
	}
}

func TestInvariantViolation_IsMatchesSentinel(t *testing.T) {
	err := NewInvariantViolation("length-not-set", "boom")
	if !errors.Is(err, ErrInvariant) {
		t.Error("expected errors.Is(err, ErrInvariant) to be true")
	}
	if errors.Is(err, ErrProtocol) {
		t.Error("expected errors.Is(err, ErrProtocol) to be false")
	}
}

func TestProtocolErrorf_FormatsMessage(t *testing.T) {
	err := NewProtocolErrorf("overrun", "wrote %d bytes, limit %d", 10, 5)
	want := `lsp protocol error [overrun]: wrote 10 bytes, limit 5`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestPromote_WrapsInvariantViolation(t *testing.T) {
	iv := NewInvariantViolation("length-not-set", "set_length was never called")
	promoted := Promote("send", iv)

	var pe *ProtocolError
	if !errors.As(promoted, &pe) {
		t.Fatalf("Promote did not produce a *ProtocolError, got %T", promoted)
	}
	if pe.Code != "send" {
		t.Errorf("Code = %q, want %q", pe.Code, "send")
	}
	if !errors.Is(promoted, ErrProtocol) {
		t.Error("promoted error should satisfy errors.Is(_, ErrProtocol)")
	}
}

func TestPromote_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("something else")
	if got := Promote("send", plain); got != plain {
		t.Errorf("Promote changed a non-InvariantViolation error: got %v, want %v", got, plain)
	}
}

func TestPromote_NilIsNil(t *testing.T) {
	if got := Promote("send", nil); got != nil {
		t.Errorf("Promote(nil) = %v, want nil", got)
	}
}

func TestUnwrap_ExposesUnderlyingCause(t *testing.T) {
	cause := errors.New("root cause")
	err := &ProtocolError{Code: "x", Err: cause}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should expose the underlying cause")
	}
}
