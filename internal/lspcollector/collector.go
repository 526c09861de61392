// Package lspcollector implements the bounded byte accumulator that
// enforces the Content-Length contract: because LSP frames are
// length-prefixed, any overrun must be detected at the earliest possible
// write, and this is the single enforcement point for that.
package lspcollector

import "github.com/lspframe/lspframe/internal/lsperrors"

// FixedLengthCollector accumulates bytes up to a declared capacity.
//
// Invariants: lengthSet implies remain+len(data) == capacity; !lengthSet
// implies remain == 0 && len(data) == 0; remain is never negative.
type FixedLengthCollector struct {
	remain    int
	data      []byte
	lengthSet bool
}

// New returns an empty, unset collector.
func New() *FixedLengthCollector {
	return &FixedLengthCollector{}
}

// SetLength fixes the collector's capacity. It may be called only once
// between Clear calls.
func (c *FixedLengthCollector) SetLength(n int) error {
	if c.lengthSet {
		return lsperrors.NewInvariantViolation(
			"length-already-set",
			"set_length called twice; call clear() first to reset",
		)
	}
	c.remain = n
	c.lengthSet = true
	return nil
}

// Append adds b to the collector. It fails if the length has not been set
// or if b would overrun the remaining capacity.
func (c *FixedLengthCollector) Append(b []byte) error {
	if !c.lengthSet {
		return lsperrors.NewInvariantViolation(
			"length-not-set",
			"append called before set_length",
		)
	}
	if len(b) > c.remain {
		return lsperrors.NewInvariantViolation(
			"overrun",
			"too much data to insert into buffer",
		)
	}
	c.remain -= len(b)
	c.data = append(c.data, b...)
	return nil
}

// Clear idempotently resets the collector to its initial state.
func (c *FixedLengthCollector) Clear() {
	c.lengthSet = false
	c.data = nil
	c.remain = 0
}

// Full reports whether the declared length has been reached exactly.
func (c *FixedLengthCollector) Full() bool {
	return c.lengthSet && c.remain == 0
}

// Len returns the number of bytes accumulated so far.
func (c *FixedLengthCollector) Len() int {
	return len(c.data)
}

// Remain returns the number of bytes still expected before Full.
func (c *FixedLengthCollector) Remain() int {
	return c.remain
}

// LengthSet reports whether SetLength has been called since the last Clear.
func (c *FixedLengthCollector) LengthSet() bool {
	return c.lengthSet
}

// Bytes returns the accumulated data. The returned slice is owned by the
// collector; callers must not mutate it.
func (c *FixedLengthCollector) Bytes() []byte {
	return c.data
}
