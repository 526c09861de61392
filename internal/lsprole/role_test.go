package lsprole

import "testing"

func TestOpposite(t *testing.T) {
	if Client.Opposite() != Server {
		t.Error("Client.Opposite() should be Server")
	}
	if Server.Opposite() != Client {
		t.Error("Server.Opposite() should be Client")
	}
}

func TestString(t *testing.T) {
	cases := map[Role]string{
		Client: "CLIENT",
		Server: "SERVER",
		Role(99): "UNKNOWN",
	}
	for role, want := range cases {
		if got := role.String(); got != want {
			t.Errorf("Role(%d).String() = %q, want %q", role, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	if r, ok := Parse("client"); !ok || r != Client {
		t.Errorf(`Parse("client") = (%v, %v), want (Client, true)`, r, ok)
	}
	if r, ok := Parse("server"); !ok || r != Server {
		t.Errorf(`Parse("server") = (%v, %v), want (Server, true)`, r, ok)
	}
	if _, ok := Parse("peer"); ok {
		t.Error(`Parse("peer") should fail`)
	}
	if _, ok := Parse(""); ok {
		t.Error(`Parse("") should fail`)
	}
}
