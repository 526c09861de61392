// Package lspjsonrpc wraps the JSON-RPC 2.0 payload that typically rides
// inside an LSP-framed body. lspframe itself is payload-agnostic (a
// Connection's body is just bytes, see lspevent.DataSent/DataReceived),
// but LSP's wire protocol always carries JSON-RPC, so decoding it is
// common enough to belong in the module rather than every caller
// reimplementing it.
package lspjsonrpc

import (
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/lspframe/lspframe/internal/lsprole"
)

// Message wraps a decoded JSON-RPC message with framing metadata: the
// raw bytes (for passthrough), which role emitted it, and when it was
// observed.
type Message struct {
	// Raw contains the original body bytes, exactly as Connection
	// handed them back from GetReceivedData(raw=true) or accepted via
	// Send.
	Raw []byte

	// Origin is the role that produced this message: Client for a
	// request, Server for a response, under the request/response
	// cycle lspframe itself enforces.
	Origin lsprole.Role

	// Decoded is the parsed JSON-RPC message. Concrete type is either
	// *jsonrpc.Request or *jsonrpc.Response. Nil if parsing failed but
	// passthrough of Raw is still desired.
	Decoded jsonrpc.Message

	// ObservedAt records when this Message was constructed.
	ObservedAt time.Time
}

// Encode serializes a JSON-RPC message to its wire body bytes,
// delegating to the SDK's jsonrpc package.
func Encode(msg jsonrpc.Message) ([]byte, error) {
	return jsonrpc.EncodeMessage(msg)
}

// Decode deserializes JSON-RPC wire bytes into a jsonrpc.Message,
// delegating to the SDK's jsonrpc package.
func Decode(data []byte) (jsonrpc.Message, error) {
	return jsonrpc.DecodeMessage(data)
}

// Wrap decodes raw and wraps it in a Message attributed to origin. If
// decoding fails, the error is returned and no Message is produced; a
// caller that wants best-effort passthrough on decode failure should
// construct a Message directly instead.
func Wrap(raw []byte, origin lsprole.Role) (*Message, error) {
	decoded, err := jsonrpc.DecodeMessage(raw)
	if err != nil {
		return nil, err
	}
	return &Message{
		Raw:        raw,
		Origin:     origin,
		Decoded:    decoded,
		ObservedAt: time.Now(),
	}, nil
}

// IsRequest reports whether the message is a JSON-RPC request.
func (m *Message) IsRequest() bool {
	if m.Decoded == nil {
		return false
	}
	_, ok := m.Decoded.(*jsonrpc.Request)
	return ok
}

// IsResponse reports whether the message is a JSON-RPC response.
func (m *Message) IsResponse() bool {
	if m.Decoded == nil {
		return false
	}
	_, ok := m.Decoded.(*jsonrpc.Response)
	return ok
}

// Method returns the method name if this is a request, "" otherwise.
func (m *Message) Method() string {
	req, ok := m.Decoded.(*jsonrpc.Request)
	if !ok {
		return ""
	}
	return req.Method
}

// Request returns the underlying Request, or nil if this is not one.
func (m *Message) Request() *jsonrpc.Request {
	req, _ := m.Decoded.(*jsonrpc.Request)
	return req
}

// Response returns the underlying Response, or nil if this is not one.
func (m *Message) Response() *jsonrpc.Response {
	resp, _ := m.Decoded.(*jsonrpc.Response)
	return resp
}

// RawID extracts the request ID from Raw as json.RawMessage. The SDK's
// jsonrpc.ID type doesn't round-trip cleanly through interface{}, so
// the ID is pulled directly from the original bytes instead. Returns
// nil if Raw carries no "id" field.
func (m *Message) RawID() json.RawMessage {
	if m.Raw == nil {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(m.Raw, &raw); err != nil {
		return nil
	}
	return raw["id"]
}
