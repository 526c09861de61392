// Package lspstate holds the connection state enum and the two static,
// role-indexed transition tables that drive it. The tables are data, not
// code: next_state is a pure lookup.
package lspstate

import (
	"github.com/lspframe/lspframe/internal/lsperrors"
	"github.com/lspframe/lspframe/internal/lsprole"
)

// State is a point in the per-role connection state machine. Distinct
// states are distinguishable by identity; String() makes them observable
// for diagnostics.
type State int

const (
	// Idle is the initial state for both roles.
	Idle State = iota
	// SendBody is entered once a header has been exchanged and the body
	// is being streamed.
	SendBody
	// SendResponse is entered by a server after it has received a request
	// header, before it has sent a response header.
	SendResponse
	// Done is entered once MessageEnd has been exchanged for the current
	// message (or the send_json shortcut completed).
	Done
	// Closed is terminal.
	Closed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case SendBody:
		return "SEND_BODY"
	case SendResponse:
		return "SEND_RESPONSE"
	case Done:
		return "DONE"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// EventTag identifies the kind of event driving a transition, independent
// of the event's payload. This is the third axis of the (role, state,
// event_tag) -> next_state lookup.
type EventTag int

const (
	TagRequestSent EventTag = iota
	TagRequestReceived
	TagResponseSent
	TagResponseReceived
	TagDataSent
	TagDataReceived
	TagMessageEnd
	TagClose
)

// String implements fmt.Stringer.
func (t EventTag) String() string {
	switch t {
	case TagRequestSent:
		return "RequestSent"
	case TagRequestReceived:
		return "RequestReceived"
	case TagResponseSent:
		return "ResponseSent"
	case TagResponseReceived:
		return "ResponseReceived"
	case TagDataSent:
		return "DataSent"
	case TagDataReceived:
		return "DataReceived"
	case TagMessageEnd:
		return "MessageEnd"
	case TagClose:
		return "Close"
	default:
		return "UNKNOWN"
	}
}

type transitionKey struct {
	state State
	tag   EventTag
}

// clientTable is the client-role state transition table.
var clientTable = map[transitionKey]State{
	{Idle, TagRequestSent}: SendBody,
	{Idle, TagClose}:       Closed,

	{SendBody, TagDataSent}:   SendBody,
	{SendBody, TagMessageEnd}: Done,
	{SendBody, TagClose}:      Closed,

	{Done, TagClose}: Closed,
}

// serverTable is the server-role state transition table.
var serverTable = map[transitionKey]State{
	{Idle, TagRequestReceived}: SendResponse,
	{Idle, TagClose}:           Closed,

	{SendResponse, TagResponseSent}: SendBody,
	{SendResponse, TagClose}:        Closed,

	{SendBody, TagDataSent}:   SendBody,
	{SendBody, TagMessageEnd}: Done,
	{SendBody, TagClose}:      Closed,

	{Done, TagClose}: Closed,
}

// Next looks up the successor state for (role, state, tag). Any triple
// outside the table raises ProtocolError with role, state, and event
// identifier.
func Next(role lsprole.Role, state State, tag EventTag) (State, error) {
	table := clientTable
	if role == lsprole.Server {
		table = serverTable
	}
	next, ok := table[transitionKey{state, tag}]
	if !ok {
		return state, lsperrors.NewProtocolErrorf(
			"illegal-transition",
			"no transition for role=%s state=%s event=%s", role, state, tag,
		)
	}
	return next, nil
}
