package lspevent

import "encoding/json"

// EncodeJSON serializes v the way the wire format expects: Go's compact
// encoder, then a pass that inserts the separator spacing json.dumps
// uses by default (", " between members/elements, ": " between a key
// and its value). This is the default encoder for DataSent and
// SendJSON; callers that need exact byte-for-byte parity with another
// JSON emitter should supply their own Encoder/encoder argument instead.
func EncodeJSON(v any) ([]byte, error) {
	compact, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return spaceSeparators(compact), nil
}

// spaceSeparators inserts a space after every ':' and ',' that lies
// outside a JSON string literal.
func spaceSeparators(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/4)
	inString := false
	escaped := false
	for _, b := range data {
		out = append(out, b)
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case ':', ',':
			out = append(out, ' ')
		}
	}
	return out
}
