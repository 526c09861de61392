package lspevent

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/lspframe/lspframe/internal/lsperrors"
)

// DefaultContentType is used when a header event is constructed without an
// explicit Content-Type.
const DefaultContentType = "application/vscode-jsonrpc; charset=utf-8"

var headerValidate = validator.New(validator.WithRequiredStructEnabled())

// headerFields is the validated shape shared by every header event: a
// required Content-Length and an optional Content-Type that defaults to
// DefaultContentType.
type headerFields struct {
	ContentLength int    `validate:"gte=0"`
	ContentType   string `validate:"required"`
}

func (f headerFields) validate() error {
	if err := headerValidate.Struct(f); err != nil {
		return lsperrors.NewInvariantViolation("invalid-header-fields", err.Error())
	}
	return nil
}

// HeaderFields is the public, read-only view of a header event's
// recognized fields.
type HeaderFields struct {
	ContentLength int
	ContentType   string
}

func newHeaderFields(contentLength int, contentType string) (headerFields, error) {
	if contentType == "" {
		contentType = DefaultContentType
	}
	f := headerFields{ContentLength: contentLength, ContentType: contentType}
	if err := f.validate(); err != nil {
		return headerFields{}, err
	}
	return f, nil
}

// parseHeaderFields builds headerFields from the raw name/value mapping
// produced by ReceiveBuffer.TryExtractHeader. Recognized fields are
// Content-Length (required, integer-valued) and Content-Type (optional,
// defaulted). Unrecognized fields are dropped and reported back as
// non-fatal warnings rather than failing the parse. Malformed
// Content-Length is fatal.
func parseHeaderFields(raw map[string]string) (headerFields, []string, error) {
	lengthStr, ok := raw["Content-Length"]
	if !ok {
		return headerFields{}, nil, lsperrors.NewInvariantViolation(
			"missing-content-length",
			"header is missing required Content-Length field",
		)
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil || length < 0 {
		return headerFields{}, nil, lsperrors.NewInvariantViolation(
			"malformed-content-length",
			fmt.Sprintf("Content-Length %q is not a non-negative integer", lengthStr),
		)
	}

	contentType := raw["Content-Type"]

	var warnings []string
	for name := range raw {
		if name != "Content-Length" && name != "Content-Type" {
			warnings = append(warnings, fmt.Sprintf("unrecognized header field %q ignored", name))
		}
	}

	fields, err := newHeaderFields(length, contentType)
	if err != nil {
		return headerFields{}, warnings, err
	}
	return fields, warnings, nil
}

// toData renders recognized fields as the wire header block, in a stable
// field order (Content-Length first, then Content-Type), terminated by
// the blank-line separator. The protocol leaves field order unspecified;
// this fixes one for determinism.
func (f headerFields) toData() []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, "Content-Length: "...)
	buf = strconv.AppendInt(buf, int64(f.ContentLength), 10)
	buf = append(buf, "\r\n"...)
	buf = append(buf, "Content-Type: "...)
	buf = append(buf, f.ContentType...)
	buf = append(buf, "\r\n\r\n"...)
	return buf
}
