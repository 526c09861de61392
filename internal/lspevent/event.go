// Package lspevent implements the closed event algebra exchanged across
// the Connection boundary: header events, data events, MessageEnd, and
// Close, plus their wire serialization. The algebra is a small set of
// concrete struct types behind a closed Event interface, dispatched with
// a type switch rather than open subclassing.
package lspevent

import (
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/lspframe/lspframe/internal/lsperrors"
	"github.com/lspframe/lspframe/internal/lspstate"
)

// Event is the closed algebra of things that can cross the Connection
// boundary in either direction.
type Event interface {
	// Tag identifies which transition-table row this event drives.
	Tag() lspstate.EventTag
	// ToData serializes the event to the bytes that should be transmitted
	// (or that were parsed from) the wire. Pure signals return nil.
	ToData() ([]byte, error)
}

// ---- header events ----

// RequestSent is emitted when a client sends a request header.
type RequestSent struct{ Fields HeaderFields }

// RequestReceived is emitted when a server receives a request header.
type RequestReceived struct{ Fields HeaderFields }

// ResponseSent is emitted when a server sends a response header.
type ResponseSent struct{ Fields HeaderFields }

// ResponseReceived is emitted when a client receives a response header.
type ResponseReceived struct{ Fields HeaderFields }

// NewRequestSent constructs an outbound request header event. opts may
// override Content-Type; Content-Length is required and supplied
// directly since the sender always knows the body length up front.
func NewRequestSent(contentLength int, opts ...HeaderOption) (*RequestSent, error) {
	f, err := buildHeader(contentLength, opts)
	if err != nil {
		return nil, err
	}
	return &RequestSent{Fields: f}, nil
}

// NewResponseSent constructs an outbound response header event.
func NewResponseSent(contentLength int, opts ...HeaderOption) (*ResponseSent, error) {
	f, err := buildHeader(contentLength, opts)
	if err != nil {
		return nil, err
	}
	return &ResponseSent{Fields: f}, nil
}

// HeaderOption customizes a constructed header event.
type HeaderOption func(*string)

// WithContentType overrides the default Content-Type.
func WithContentType(ct string) HeaderOption {
	return func(dst *string) { *dst = ct }
}

func buildHeader(contentLength int, opts []HeaderOption) (HeaderFields, error) {
	var contentType string
	for _, opt := range opts {
		opt(&contentType)
	}
	f, err := newHeaderFields(contentLength, contentType)
	if err != nil {
		return HeaderFields{}, err
	}
	return HeaderFields{ContentLength: f.ContentLength, ContentType: f.ContentType}, nil
}

// parseInboundHeader builds the appropriate received-header event from a
// raw wire mapping, returning any non-fatal warnings about unrecognized
// fields alongside it.
func parseInboundHeader(raw map[string]string, asRequest bool) (Event, []string, error) {
	f, warnings, err := parseHeaderFields(raw)
	if err != nil {
		return nil, warnings, err
	}
	fields := HeaderFields{ContentLength: f.ContentLength, ContentType: f.ContentType}
	if asRequest {
		return &RequestReceived{Fields: fields}, warnings, nil
	}
	return &ResponseReceived{Fields: fields}, warnings, nil
}

func (e *RequestSent) Tag() lspstate.EventTag      { return lspstate.TagRequestSent }
func (e *RequestReceived) Tag() lspstate.EventTag  { return lspstate.TagRequestReceived }
func (e *ResponseSent) Tag() lspstate.EventTag     { return lspstate.TagResponseSent }
func (e *ResponseReceived) Tag() lspstate.EventTag { return lspstate.TagResponseReceived }

func (e *RequestSent) ToData() ([]byte, error)      { return fieldsOf(e.Fields).toData(), nil }
func (e *RequestReceived) ToData() ([]byte, error)  { return fieldsOf(e.Fields).toData(), nil }
func (e *ResponseSent) ToData() ([]byte, error)     { return fieldsOf(e.Fields).toData(), nil }
func (e *ResponseReceived) ToData() ([]byte, error) { return fieldsOf(e.Fields).toData(), nil }

func fieldsOf(f HeaderFields) headerFields {
	return headerFields{ContentLength: f.ContentLength, ContentType: f.ContentType}
}

// ---- data events ----

// DataSent carries an outbound body chunk.
type DataSent struct {
	Payload any
	Encoder func(any) ([]byte, error)
}

// DataReceived carries an inbound body chunk.
type DataReceived struct {
	Data []byte
}

func (e *DataSent) Tag() lspstate.EventTag     { return lspstate.TagDataSent }
func (e *DataReceived) Tag() lspstate.EventTag { return lspstate.TagDataReceived }

// ToData dispatches on the payload's shape: []byte and string pass
// through (string UTF-8 encoded); a jsonrpc.Message is delegated to the
// SDK's own encoder; anything else is serialized as JSON, using the
// caller-supplied Encoder if set.
func (e *DataSent) ToData() ([]byte, error) {
	switch v := e.Payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case jsonrpc.Message:
		data, err := jsonrpc.EncodeMessage(v)
		if err != nil {
			return nil, lsperrors.NewInvariantViolation("encode-jsonrpc", err.Error())
		}
		return data, nil
	default:
		encode := e.Encoder
		if encode == nil {
			encode = EncodeJSON
		}
		data, err := encode(v)
		if err != nil {
			return nil, lsperrors.NewInvariantViolation("encode-json", err.Error())
		}
		return data, nil
	}
}

// ToData returns the raw bytes this event carries.
func (e *DataReceived) ToData() ([]byte, error) { return e.Data, nil }

// ---- signals ----

// MessageEnd signals that the current message's body is complete.
type MessageEnd struct{}

// Close signals connection termination.
type Close struct{}

func (MessageEnd) Tag() lspstate.EventTag { return lspstate.TagMessageEnd }
func (Close) Tag() lspstate.EventTag      { return lspstate.TagClose }

func (MessageEnd) ToData() ([]byte, error) { return nil, nil }
func (Close) ToData() ([]byte, error)      { return nil, nil }

// IsHeaderEvent reports whether e carries recognized header fields,
// regardless of direction (sent vs. received) or kind (request vs.
// response).
func IsHeaderEvent(e Event) (HeaderFields, bool) {
	switch v := e.(type) {
	case *RequestSent:
		return v.Fields, true
	case *RequestReceived:
		return v.Fields, true
	case *ResponseSent:
		return v.Fields, true
	case *ResponseReceived:
		return v.Fields, true
	default:
		return HeaderFields{}, false
	}
}

// ParseHeader parses a raw wire header mapping into the appropriate
// received-header event for the given role: RequestReceived for a server,
// ResponseReceived for a client.
func ParseHeader(raw map[string]string, asRequest bool) (Event, []string, error) {
	return parseInboundHeader(raw, asRequest)
}
