package lspstate

import (
	"errors"
	"testing"

	"github.com/lspframe/lspframe/internal/lsperrors"
	"github.com/lspframe/lspframe/internal/lsprole"
)

func TestNext_ClientHappyPath(t *testing.T) {
	cases := []struct {
		name  string
		state State
		tag   EventTag
		want  State
	}{
		{"idle to send_body on request sent", Idle, TagRequestSent, SendBody},
		{"idle to closed on close", Idle, TagClose, Closed},
		{"send_body stays on data sent", SendBody, TagDataSent, SendBody},
		{"send_body to done on message end", SendBody, TagMessageEnd, Done},
		{"send_body to closed on close", SendBody, TagClose, Closed},
		{"done to closed on close", Done, TagClose, Closed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Next(lsprole.Client, c.state, c.tag)
			if err != nil {
				t.Fatalf("Next() returned unexpected error: %v", err)
			}
			if got != c.want {
				t.Errorf("Next(%s, %s) = %s, want %s", c.state, c.tag, got, c.want)
			}
		})
	}
}

func TestNext_ServerHappyPath(t *testing.T) {
	cases := []struct {
		name  string
		state State
		tag   EventTag
		want  State
	}{
		{"idle to send_response on request received", Idle, TagRequestReceived, SendResponse},
		{"send_response to send_body on response sent", SendResponse, TagResponseSent, SendBody},
		{"send_body stays on data sent", SendBody, TagDataSent, SendBody},
		{"send_body to done on message end", SendBody, TagMessageEnd, Done},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Next(lsprole.Server, c.state, c.tag)
			if err != nil {
				t.Fatalf("Next() returned unexpected error: %v", err)
			}
			if got != c.want {
				t.Errorf("Next(%s, %s) = %s, want %s", c.state, c.tag, got, c.want)
			}
		})
	}
}

// TestNext_InvalidTriplesRejected asserts that a sample of (role, state,
// event) triples outside the table each raise ProtocolError and leave the
// state unchanged.
func TestNext_InvalidTriplesRejected(t *testing.T) {
	invalid := []struct {
		role  lsprole.Role
		state State
		tag   EventTag
	}{
		{lsprole.Client, Idle, TagDataSent},
		{lsprole.Client, Idle, TagMessageEnd},
		{lsprole.Client, Closed, TagRequestSent},
		{lsprole.Server, Idle, TagRequestSent},
		{lsprole.Server, SendResponse, TagDataSent},
		{lsprole.Server, Closed, TagClose},
	}
	for _, c := range invalid {
		before := c.state
		got, err := Next(c.role, c.state, c.tag)
		if err == nil {
			t.Errorf("Next(%s, %s, %s) = %s, want error", c.role, c.state, c.tag, got)
			continue
		}
		var pe *lsperrors.ProtocolError
		if !errors.As(err, &pe) {
			t.Errorf("Next(%s, %s, %s) error type = %T, want *ProtocolError", c.role, c.state, c.tag, err)
		}
		if got != before {
			t.Errorf("Next(%s, %s, %s) left state=%s, want unchanged %s", c.role, c.state, c.tag, got, before)
		}
	}
}

func TestStringers(t *testing.T) {
	if lsprole.Client.String() != "CLIENT" || lsprole.Server.String() != "SERVER" {
		t.Errorf("unexpected role strings")
	}
	if Idle.String() != "IDLE" || Closed.String() != "CLOSED" {
		t.Errorf("unexpected state strings")
	}
}
