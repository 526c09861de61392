// Package lspengine is the public façade over the sans-I/O LSP framing
// engine: a Connection wires together a ReceiveBuffer, two
// FixedLengthCollectors, and a pair of role-indexed state slots, and
// validates every transition between them. It performs no network, file,
// or thread operations; callers push bytes in via Receive and pull bytes
// out of Send/SendJSON.
package lspengine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lspframe/lspframe/internal/lspbuffer"
	"github.com/lspframe/lspframe/internal/lspcollector"
	"github.com/lspframe/lspframe/internal/lsperrors"
	"github.com/lspframe/lspframe/internal/lspevent"
	"github.com/lspframe/lspframe/internal/lspmetrics"
	"github.com/lspframe/lspframe/internal/lsppolicy"
	"github.com/lspframe/lspframe/internal/lsprole"
	"github.com/lspframe/lspframe/internal/lspstate"
	"github.com/lspframe/lspframe/internal/lsptrace"
	"github.com/lspframe/lspframe/pkg/lspjsonrpc"
)

// ErrNeedData is the sentinel NextEvent returns when the buffered bytes
// are insufficient to yield an event: feed more via Receive and call
// NextEvent again.
var ErrNeedData = errors.New("lspengine: NEED_DATA, call Receive with more bytes")

// Connection is the façade over the framing engine: two state slots
// (ours and theirs), one ReceiveBuffer, one inbound collector, one
// outbound collector.
type Connection struct {
	id uuid.UUID

	ourRole   lsprole.Role
	theirRole lsprole.Role

	ourState   lspstate.State
	theirState lspstate.State

	inBuffer     *lspbuffer.ReceiveBuffer
	inCollector  *lspcollector.FixedLengthCollector
	outCollector *lspcollector.FixedLengthCollector

	headerFingerprint uint64

	logger         *slog.Logger
	metrics        *lspmetrics.Metrics
	tracerProvider trace.TracerProvider
	headerPolicy   *lsppolicy.Evaluator

	strictHeaders    bool
	maxContentLength int
}

// Option configures a Connection at construction time.
type Option func(*Connection) error

// WithLogger attaches a structured logger for diagnostics (state
// transitions at Debug, dropped header fields at Warn).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connection) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics attaches a Prometheus metrics recorder.
func WithMetrics(m *lspmetrics.Metrics) Option {
	return func(c *Connection) error {
		c.metrics = m
		return nil
	}
}

// WithTracerProvider attaches an OpenTelemetry TracerProvider; Send,
// Receive, and NextEvent are wrapped in spans when set.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Connection) error {
		c.tracerProvider = tp
		return nil
	}
}

// WithHeaderPolicy compiles expression as a CEL header policy (see
// internal/lsppolicy) and rejects any inbound header it evaluates false.
func WithHeaderPolicy(expression string) Option {
	return func(c *Connection) error {
		if expression == "" {
			return nil
		}
		ev, err := lsppolicy.NewEvaluator(expression)
		if err != nil {
			return err
		}
		c.headerPolicy = ev
		return nil
	}
}

// WithStrictHeaders rejects an inbound header carrying any field other
// than Content-Length/Content-Type, instead of warning and dropping it.
func WithStrictHeaders(strict bool) Option {
	return func(c *Connection) error {
		c.strictHeaders = strict
		return nil
	}
}

// WithMaxContentLength caps the Content-Length an inbound header may
// declare; 0 (the default) leaves it unbounded. A peer announcing a
// larger body is rejected before any body bytes are collected.
func WithMaxContentLength(max int) Option {
	return func(c *Connection) error {
		c.maxContentLength = max
		return nil
	}
}

// New constructs a Connection for the given role ("client" or "server").
func New(role string, opts ...Option) (*Connection, error) {
	r, ok := lsprole.Parse(role)
	if !ok {
		return nil, lsperrors.NewInvariantViolation(
			"invalid-role",
			`role must be one of "client", "server"`,
		)
	}

	c := &Connection{
		id:           uuid.New(),
		ourRole:      r,
		theirRole:    r.Opposite(),
		ourState:     lspstate.Idle,
		theirState:   lspstate.Idle,
		inBuffer:     lspbuffer.New(),
		inCollector:  lspcollector.New(),
		outCollector: lspcollector.New(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.metrics.RecordOpen()
	return c, nil
}

// ID returns the Connection's unique identity, attached as the
// lspframe.connection_id attribute of every trace span. Log entries and
// metrics do not carry it.
func (c *Connection) ID() uuid.UUID { return c.id }

// OurRole returns the role this Connection was constructed with.
func (c *Connection) OurRole() lsprole.Role { return c.ourRole }

// TheirRole returns the peer's role.
func (c *Connection) TheirRole() lsprole.Role { return c.theirRole }

// OurState returns this side's current state.
func (c *Connection) OurState() lspstate.State { return c.ourState }

// TheirState returns this side's model of the peer's current state.
func (c *Connection) TheirState() lspstate.State { return c.theirState }

// HeaderFingerprint returns an xxhash fingerprint of the most recently
// parsed or emitted header block, a cheap correlation key for logs and
// caches (it is not a security checksum).
func (c *Connection) HeaderFingerprint() uint64 { return c.headerFingerprint }

func (c *Connection) updateFingerprint(headerBytes []byte) {
	c.headerFingerprint = xxhash.Sum64(headerBytes)
}

func (c *Connection) advanceOur(tag lspstate.EventTag) error {
	next, err := lspstate.Next(c.ourRole, c.ourState, tag)
	if err != nil {
		c.metrics.RecordProtocolError("illegal-transition")
		return err
	}
	c.ourState = next
	c.metrics.RecordTransition(c.ourRole.String(), next.String())
	c.logger.Debug("lspengine state transition", "side", "our", "role", c.ourRole, "state", next)
	return nil
}

func (c *Connection) advanceTheir(tag lspstate.EventTag) error {
	next, err := lspstate.Next(c.theirRole, c.theirState, tag)
	if err != nil {
		c.metrics.RecordProtocolError("illegal-transition")
		return err
	}
	c.theirState = next
	c.metrics.RecordTransition(c.theirRole.String(), next.String())
	c.logger.Debug("lspengine state transition", "side", "their", "role", c.theirRole, "state", next)
	return nil
}

// Send advances our_state via the transition table, then serializes event
// to bytes, enforcing the Content-Length contract against out_collector.
// If event is RequestSent, their_state is mirrored as if the peer had
// received it: it is the only Send-side event with an implicit
// peer-state effect, because there is no other way for this side to
// learn its own header arrived.
func (c *Connection) Send(event lspevent.Event) ([]byte, error) {
	_, span := lsptrace.StartSpan(context.Background(), c.tracerProvider, "send",
		attribute.String("lspframe.event", event.Tag().String()),
		attribute.String("lspframe.connection_id", c.id.String()),
	)
	defer span.End()

	if err := c.advanceOur(event.Tag()); err != nil {
		return nil, lsperrors.Promote("send", err)
	}

	data, err := event.ToData()
	if err != nil {
		return nil, lsperrors.Promote("send", err)
	}

	switch e := event.(type) {
	case *lspevent.RequestSent:
		if err := c.outCollector.SetLength(e.Fields.ContentLength); err != nil {
			return nil, lsperrors.Promote("send-header", err)
		}
		c.updateFingerprint(data)
		if err := c.advanceTheir(lspstate.TagRequestReceived); err != nil {
			return nil, lsperrors.Promote("send-mirror", err)
		}
	case *lspevent.ResponseSent:
		if err := c.outCollector.SetLength(e.Fields.ContentLength); err != nil {
			return nil, lsperrors.Promote("send-header", err)
		}
		c.updateFingerprint(data)
	case *lspevent.DataSent:
		if err := c.outCollector.Append(data); err != nil {
			return nil, lsperrors.Promote("send-data", err)
		}
	case lspevent.MessageEnd:
		if c.outCollector.Remain() > 0 {
			return nil, lsperrors.NewProtocolErrorf(
				"premature-message-end",
				"expected %d more bytes before MessageEnd", c.outCollector.Remain(),
			)
		}
	case lspevent.Close:
		// emits empty bytes; state already advanced above.
	}

	c.metrics.RecordBytesSent(len(data))
	return data, nil
}

// SendJSON is a one-shot convenience: it serializes value, constructs
// the appropriate header, and emits header+body bytes
// in one call without an intervening MessageEnd, bypassing the
// SEND_BODY sojourn via a direct state assignment rather than the
// transition table.
func (c *Connection) SendJSON(value any, encoder ...func(any) ([]byte, error)) ([]byte, error) {
	if c.ourRole == lsprole.Client {
		if c.ourState != lspstate.Idle || c.theirState != lspstate.Idle {
			return nil, lsperrors.NewProtocolErrorf(
				"send-json-bad-state",
				"send_json requires our_state=IDLE and their_state=IDLE, got our=%s their=%s",
				c.ourState, c.theirState,
			)
		}
	} else {
		if c.ourState != lspstate.SendResponse || c.theirState != lspstate.Done {
			return nil, lsperrors.NewProtocolErrorf(
				"send-json-bad-state",
				"send_json requires our_state=SEND_RESPONSE and their_state=DONE, got our=%s their=%s",
				c.ourState, c.theirState,
			)
		}
	}

	enc := lspevent.EncodeJSON
	if len(encoder) > 0 && encoder[0] != nil {
		enc = encoder[0]
	}
	body, err := enc(value)
	if err != nil {
		return nil, lsperrors.NewProtocolErrorf("send-json-encode", "%v", err)
	}

	var headerEvent lspevent.Event
	if c.ourRole == lsprole.Client {
		headerEvent, err = lspevent.NewRequestSent(len(body))
	} else {
		headerEvent, err = lspevent.NewResponseSent(len(body))
	}
	if err != nil {
		return nil, lsperrors.Promote("send-json-header", err)
	}
	headerBytes, err := headerEvent.ToData()
	if err != nil {
		return nil, lsperrors.Promote("send-json-header", err)
	}
	c.updateFingerprint(headerBytes)

	if err := c.outCollector.SetLength(len(body)); err != nil {
		return nil, lsperrors.Promote("send-json", err)
	}
	if err := c.outCollector.Append(body); err != nil {
		return nil, lsperrors.Promote("send-json", err)
	}

	if c.ourRole == lsprole.Client {
		c.ourState = lspstate.Done
		c.theirState = lspstate.SendResponse
	} else {
		c.ourState = lspstate.Done
	}

	out := make([]byte, 0, len(headerBytes)+len(body))
	out = append(out, headerBytes...)
	out = append(out, body...)
	c.metrics.RecordBytesSent(len(out))
	return out, nil
}

// Receive buffers inbound bytes. Pure buffering; it never fails.
func (c *Connection) Receive(data []byte) {
	_, span := lsptrace.StartSpan(context.Background(), c.tracerProvider, "receive",
		attribute.String("lspframe.connection_id", c.id.String()),
	)
	defer span.End()

	c.inBuffer.Append(data)
	c.metrics.RecordBytesReceived(len(data))
}

// NextEvent parses the next event out of the inbound buffer. Clients may
// only call this after sending their request (our_state=DONE); servers
// have no such precondition, since a server's first act is to receive a
// request from IDLE.
func (c *Connection) NextEvent() (lspevent.Event, error) {
	_, span := lsptrace.StartSpan(context.Background(), c.tracerProvider, "next_event",
		attribute.String("lspframe.connection_id", c.id.String()),
	)
	defer span.End()

	if c.ourRole == lsprole.Client && c.ourState != lspstate.Done {
		return nil, lsperrors.NewProtocolError(
			"next-event-before-send",
			"client may only call next_event after sending its request",
		)
	}

	event, err := c.extractEvent()
	if err != nil {
		return nil, lsperrors.Promote("next-event", err)
	}
	if event == nil {
		return nil, ErrNeedData
	}
	return event, nil
}

func (c *Connection) extractEvent() (lspevent.Event, error) {
	if !c.inBuffer.HeaderSeen() {
		raw, ok, err := c.inBuffer.TryExtractHeader()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}

		if c.headerPolicy != nil {
			allowed, err := c.headerPolicy.Allow(context.Background(), raw)
			if err != nil {
				return nil, err
			}
			if !allowed {
				return nil, lsperrors.NewProtocolError("header-policy-denied", "header rejected by configured policy")
			}
		}

		asRequest := c.ourRole == lsprole.Server
		event, warnings, err := lspevent.ParseHeader(raw, asRequest)
		if err != nil {
			return nil, err
		}
		if c.strictHeaders && len(warnings) > 0 {
			c.metrics.RecordProtocolError("strict-header-rejected")
			return nil, lsperrors.NewProtocolErrorf(
				"strict-header-rejected",
				"header carries unrecognized fields: %s", strings.Join(warnings, "; "),
			)
		}
		for _, w := range warnings {
			c.logger.Warn("lspengine dropped unknown header field", "reason", w)
		}

		fields, _ := lspevent.IsHeaderEvent(event)
		if c.maxContentLength > 0 && fields.ContentLength > c.maxContentLength {
			c.metrics.RecordProtocolError("content-length-exceeds-max")
			return nil, lsperrors.NewProtocolErrorf(
				"content-length-exceeds-max",
				"Content-Length %d exceeds configured maximum %d", fields.ContentLength, c.maxContentLength,
			)
		}
		if err := c.inCollector.SetLength(fields.ContentLength); err != nil {
			return nil, err
		}
		headerData, _ := event.ToData()
		c.updateFingerprint(headerData)

		if c.ourRole == lsprole.Server {
			if err := c.advanceOur(lspstate.TagRequestReceived); err != nil {
				return nil, err
			}
			if err := c.advanceTheir(lspstate.TagRequestSent); err != nil {
				return nil, err
			}
		} else {
			if err := c.advanceTheir(lspstate.TagResponseSent); err != nil {
				return nil, err
			}
		}
		return event, nil
	}

	data, ok, err := c.inBuffer.TryExtractData()
	if err != nil {
		return nil, err
	}
	if !ok {
		if c.inCollector.Remain() == 0 {
			// Only their_state advances here: this MessageEnd reports the
			// peer's body finishing, not ours. our_state already moved
			// past its own MessageEnd row when the header was extracted
			// (IDLE->SEND_RESPONSE for a server, unchanged for a client
			// draining a response), so it has nothing left to do until it
			// sends its own reply.
			if err := c.advanceTheir(lspstate.TagMessageEnd); err != nil {
				return nil, err
			}
			return lspevent.MessageEnd{}, nil
		}
		return nil, nil
	}

	if err := c.inCollector.Append(data); err != nil {
		return nil, err
	}
	if err := c.advanceTheir(lspstate.TagDataSent); err != nil {
		return nil, err
	}
	return &lspevent.DataReceived{Data: data}, nil
}

// GetReceivedData returns the parsed header and the accumulated body,
// decoding the body as JSON unless raw is true. Precondition: the header
// has been extracted and in_collector is full.
func (c *Connection) GetReceivedData(raw bool) (map[string]string, any, error) {
	if !c.inBuffer.HeaderSeen() || !c.inCollector.Full() {
		return nil, nil, lsperrors.NewInvariantViolation(
			"incomplete-message",
			"get_received_data requires a fully received header and body",
		)
	}
	header, _, err := c.inBuffer.TryExtractHeader()
	if err != nil {
		return nil, nil, err
	}
	body := c.inCollector.Bytes()
	if raw {
		return header, body, nil
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, nil, lsperrors.NewInvariantViolation("decode-body", err.Error())
	}
	return header, value, nil
}

// DecodedMessage returns the received body wrapped as a lspjsonrpc.Message,
// attributed to the peer role (the body was theirs to send). Precondition
// is the same as GetReceivedData: a fully received header and body.
func (c *Connection) DecodedMessage() (*lspjsonrpc.Message, error) {
	_, raw, err := c.GetReceivedData(true)
	if err != nil {
		return nil, err
	}
	body, _ := raw.([]byte)
	msg, err := lspjsonrpc.Wrap(body, c.theirRole)
	if err != nil {
		return nil, lsperrors.Promote("decoded-message", lsperrors.NewInvariantViolation("decode-jsonrpc", err.Error()))
	}
	return msg, nil
}

// GoNextCircle resets a completed request/response cycle under
// asymmetric preconditions: a client may reset with their_state at
// SEND_RESPONSE (where SendJSON or a sent request leaves it before any
// response is drained) or at DONE (after the response was drained
// through SEND_BODY).
func (c *Connection) GoNextCircle() error {
	if c.ourRole == lsprole.Client {
		if c.ourState != lspstate.Done || (c.theirState != lspstate.SendResponse && c.theirState != lspstate.Done) {
			return lsperrors.NewProtocolErrorf(
				"go-next-circle-bad-state",
				"client requires our_state=DONE and their_state in {SEND_RESPONSE,DONE}, got our=%s their=%s",
				c.ourState, c.theirState,
			)
		}
	} else {
		if (c.ourState != lspstate.SendResponse && c.ourState != lspstate.Done) || c.theirState != lspstate.Done {
			return lsperrors.NewProtocolErrorf(
				"go-next-circle-bad-state",
				"server requires our_state in {SEND_RESPONSE,DONE} and their_state=DONE, got our=%s their=%s",
				c.ourState, c.theirState,
			)
		}
	}

	c.ourState = lspstate.Idle
	c.theirState = lspstate.Idle
	c.inBuffer.Clear()
	c.inCollector.Clear()
	c.outCollector.Clear()
	c.headerFingerprint = 0
	return nil
}

// Close transitions both state slots via the Close event and is terminal.
// The active-connection gauge is decremented exactly once, on the first
// successful call; a Close on an already-closed Connection returns an
// error without touching the gauge again.
func (c *Connection) Close() error {
	if err := c.advanceOur(lspstate.TagClose); err != nil {
		return lsperrors.Promote("close", err)
	}
	if err := c.advanceTheir(lspstate.TagClose); err != nil {
		return lsperrors.Promote("close", err)
	}
	c.metrics.RecordClose()
	return nil
}
