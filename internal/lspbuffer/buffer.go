// Package lspbuffer implements the incremental receive-side parser that
// extracts an LSP header block and body bytes from an arbitrarily chunked
// byte stream. It is a rolling byte vector plus an integer body cursor: a
// single split at the "\r\n\r\n" boundary plus a pointer, avoiding a copy
// of the tail on every header-extraction attempt.
package lspbuffer

import (
	"bytes"
	"fmt"

	"github.com/lspframe/lspframe/internal/lsperrors"
)

var headerSeparator = []byte("\r\n\r\n")

// ReceiveBuffer accumulates inbound bytes and incrementally peels off the
// header block, then the body, as enough bytes become available.
type ReceiveBuffer struct {
	raw         []byte
	headerBytes []byte
	headerSeen  bool
	header      map[string]string
	bodyPointer int
}

// New returns an empty ReceiveBuffer.
func New() *ReceiveBuffer {
	return &ReceiveBuffer{}
}

// Append unconditionally extends the buffer with newly received bytes.
func (b *ReceiveBuffer) Append(data []byte) {
	b.raw = append(b.raw, data...)
}

// TryExtractHeader searches for the first "\r\n\r\n" separator in the
// buffered bytes. If the header was already extracted, it returns the
// cached parsed mapping again rather than re-parsing. If the separator
// has not arrived yet, it returns (nil, false, nil). Once found,
// only the first occurrence matters: everything up to it becomes the
// header block, and everything after it becomes the buffer's new raw body
// bytes.
func (b *ReceiveBuffer) TryExtractHeader() (map[string]string, bool, error) {
	if b.headerSeen {
		return b.header, true, nil
	}

	idx := bytes.Index(b.raw, headerSeparator)
	if idx < 0 {
		return nil, false, nil
	}

	b.headerBytes = b.raw[:idx]
	b.raw = b.raw[idx+len(headerSeparator):]
	b.headerSeen = true

	header, err := parseHeader(b.headerBytes)
	if err != nil {
		return nil, false, err
	}
	b.header = header
	return header, true, nil
}

// parseHeader decodes the header block as ASCII, splits it on "\r\n", and
// splits each line once on the literal separator ": " to form name/value
// pairs. No whitespace trimming beyond that literal split is performed:
// a line without a strict ": " separator is a parse error.
func parseHeader(raw []byte) (map[string]string, error) {
	if !isASCII(raw) {
		return nil, lsperrors.NewInvariantViolation(
			"malformed-header",
			"header block is not valid ASCII",
		)
	}
	header := make(map[string]string)
	if len(raw) == 0 {
		return header, nil
	}
	lines := bytes.Split(raw, []byte("\r\n"))
	for _, line := range lines {
		name, value, ok := bytes.Cut(line, []byte(": "))
		if !ok {
			return nil, lsperrors.NewInvariantViolation(
				"malformed-header",
				fmt.Sprintf("header line %q has no ': ' separator", line),
			)
		}
		header[string(name)] = string(value)
	}
	return header, nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}

// TryExtractData returns any body bytes received since the last call.
// Advances the body cursor to the end of the currently buffered data.
// Fails with InvariantViolation if the header has not been extracted yet.
// Returns (nil, false, nil) if no new bytes have arrived since the last
// call.
func (b *ReceiveBuffer) TryExtractData() ([]byte, bool, error) {
	if !b.headerSeen {
		return nil, false, lsperrors.NewInvariantViolation(
			"header-not-extracted",
			"try_extract_data called before try_extract_header",
		)
	}
	if b.bodyPointer == len(b.raw) {
		return nil, false, nil
	}
	data := b.raw[b.bodyPointer:]
	b.bodyPointer = len(b.raw)
	return data, true, nil
}

// Clear resets the buffer to its initial, empty state.
func (b *ReceiveBuffer) Clear() {
	b.raw = nil
	b.headerBytes = nil
	b.headerSeen = false
	b.header = nil
	b.bodyPointer = 0
}

// HeaderBytes returns the raw header block bytes (excluding the
// terminating separator), or nil if the header has not been extracted.
func (b *ReceiveBuffer) HeaderBytes() []byte {
	return b.headerBytes
}

// HeaderSeen reports whether a header has been extracted from this buffer.
func (b *ReceiveBuffer) HeaderSeen() bool {
	return b.headerSeen
}
