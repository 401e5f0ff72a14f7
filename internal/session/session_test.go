package session

import (
	"fmt"
	"testing"

	"github.com/serialcables/calypso/internal/config"
	"github.com/serialcables/calypso/internal/parser"
	"github.com/serialcables/calypso/internal/topology"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg, err := config.Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return New(cfg)
}

func envelope(t *testing.T, command, raw string) *parser.Envelope {
	t.Helper()
	env, err := parser.DecodeEnvelope(fmt.Appendf(nil, `{
		"success": true,
		"data": {"raw": %q, "command": %q, "timestamp": "2026-08-28T10:00:00Z"}
	}`, raw, command))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

const showportRaw = `{"port_groups": {"g": {"ports": [
	{"port_number": 1, "status": "active", "current_speed": "Gen6", "current_width": 16},
	{"port_number": 112, "status": "active", "current_speed": "Gen5", "current_width": 8},
	{"port_number": 113, "status": "idle"}
]}}}`

func TestSessionStartsOnFallbackActiveSet(t *testing.T) {
	s := newTestSession(t)
	if s.ActivePorts().Source != topology.SourceFallback {
		t.Fatalf("source = %s, want fallback", s.ActivePorts().Source)
	}
}

func TestSessionShowPortThenCounters(t *testing.T) {
	s := newTestSession(t)

	up, err := s.ApplyResult(envelope(t, "showport", showportRaw))
	if err != nil {
		t.Fatalf("apply showport: %v", err)
	}
	if s.Topology() == nil || up.Record != s.Topology() {
		t.Fatal("topology not stored on session")
	}
	if s.ActivePorts().Source != topology.SourceStructured {
		t.Fatalf("source = %s, want structured after showport", s.ActivePorts().Source)
	}

	// Counter poll: port 999 is outside the active set and must vanish.
	up, err = s.ApplyResult(envelope(t, "counters", "1 0 0 0 0 0 0\n112 A 0 0 0 0 0\n999 f f f f f f\n"))
	if err != nil {
		t.Fatalf("apply counters: %v", err)
	}
	if up.Counters == nil || len(up.Counters.Ports) != 2 || up.Counters.Filtered != 1 {
		t.Fatalf("unexpected counters result: %+v", up.Counters)
	}
	if !up.Counters.Ports[112].Critical {
		t.Fatal("port 112 with 10 errors should be critical")
	}
}

func TestSessionCountersDeltaAcrossPolls(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.ApplyResult(envelope(t, "showport", showportRaw)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ApplyResult(envelope(t, "counters", "112 5 0 0 0 0 0\n")); err != nil {
		t.Fatal(err)
	}
	up, err := s.ApplyResult(envelope(t, "counters", "112 8 0 0 0 0 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if d := up.Counters.Ports[112].Delta; d[parser.FieldTotal] != 3 {
		t.Fatalf("delta = %v, want total +3", d)
	}
}

func TestSessionResetOnlyOnAck(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.ApplyResult(envelope(t, "counters", "80 5 0 0 0 0 0\n")); err != nil {
		t.Fatal(err)
	}

	up, err := s.ApplyResult(envelope(t, "counters-reset", "Error: reset failed"))
	if err != nil {
		t.Fatalf("apply nack: %v", err)
	}
	if len(up.Warnings) == 0 {
		t.Fatal("expected warning for unacknowledged reset")
	}
	up2, err := s.ApplyResult(envelope(t, "counters", "80 8 0 0 0 0 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if up2.Counters.Ports[80].Delta == nil {
		t.Fatal("nacked reset must keep the previous snapshot")
	}

	if _, err := s.ApplyResult(envelope(t, "counters-reset", "Counters reset OK")); err != nil {
		t.Fatal(err)
	}
	up3, err := s.ApplyResult(envelope(t, "counters", "80 9 0 0 0 0 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if up3.Counters.Ports[80].Delta != nil {
		t.Fatal("acked reset must clear the previous snapshot")
	}
}

func TestSessionFailedEnvelopeLeavesStateAlone(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.ApplyResult(envelope(t, "showport", showportRaw)); err != nil {
		t.Fatal(err)
	}
	before := s.Topology()

	env := envelope(t, "showport", showportRaw)
	env.Success = false
	env.Message = "device timeout"
	if _, err := s.ApplyResult(env); err == nil {
		t.Fatal("expected error for failed envelope")
	}
	if s.Topology() != before {
		t.Fatal("failed response must not touch topology")
	}

	// Parse failure on a later command likewise keeps prior state.
	if _, err := s.ApplyResult(envelope(t, "clk", "nothing here")); err == nil {
		t.Fatal("expected parse error")
	}
	if s.Topology() != before {
		t.Fatal("parse failure must not touch topology")
	}
}

func TestSessionLegacyStatesFeedActiveSet(t *testing.T) {
	s := newTestSession(t)
	s.SetLegacyStates(map[int]string{120: "active", 121: "idle"})

	set := s.ActivePorts()
	if set.Source != topology.SourceLegacy || !set.Contains(120) || set.Contains(121) {
		t.Fatalf("unexpected active set: %s %v", set.Source, set.Ports())
	}
}
