// Package session holds the per-dashboard state that the original console
// kept in module-level globals: the current topology, the active-port set,
// and the two-generation counter history. One session belongs to one
// caller; methods are not safe for concurrent use and don't need to be.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/serialcables/calypso/internal/cache"
	"github.com/serialcables/calypso/internal/config"
	"github.com/serialcables/calypso/internal/counters"
	"github.com/serialcables/calypso/internal/parser"
	"github.com/serialcables/calypso/internal/topology"
)

// Session is the explicit state object passed through the core. Zero shared
// mutable state lives outside it.
type Session struct {
	ID string

	cfg   *config.Config
	agg   *counters.Aggregator
	cache *cache.Cache

	topo     *topology.Topology
	active   topology.ActiveSet
	legacy   map[int]string
	arrays   []topology.PortArrayEntry
	clk      *parser.ClkRecord
	spread   *parser.SpreadRecord
	showMode *parser.ShowModeRecord

	LastUpdate time.Time
}

// New creates a session using cfg's thresholds and fallback port set.
func New(cfg *config.Config) *Session {
	s := &Session{
		ID:    uuid.NewString(),
		cfg:   cfg,
		agg:   counters.New(cfg.Thresholds.CriticalErrorCount),
		cache: cache.New(),
	}
	s.active = s.deriveActive()
	return s
}

// Update describes the outcome of applying one device response.
type Update struct {
	Command  parser.Command   `json:"command"`
	Record   any              `json:"record,omitempty"`
	Counters *counters.Result `json:"counters,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// ApplyResult feeds one transport envelope through the matching normalizer
// and folds the record into session state. A failed or unparseable response
// is reported back as an error and leaves prior state untouched.
func (s *Session) ApplyResult(env *parser.Envelope) (*Update, error) {
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "device reported failure"
		}
		return nil, fmt.Errorf("%s: %s", env.Command, msg)
	}

	up := &Update{Command: env.Command}

	switch env.Command {
	case parser.CmdShowPort:
		sp, err := s.parseShowPort(env)
		if err != nil {
			return nil, err
		}
		s.topo = topology.Build(sp)
		s.active = s.deriveActive()
		up.Record = s.topo
		up.Warnings = s.topo.Warnings

	case parser.CmdCounters:
		rows, err := parser.ParseCounters(env.Raw)
		if err != nil {
			return nil, err
		}
		res := s.agg.Apply(rows, s.active)
		up.Counters = &res
		up.Record = rows

	case parser.CmdCountersReset:
		acked, err := parser.ParseCountersReset(env.Raw)
		if err != nil {
			return nil, err
		}
		s.agg.Reset(acked)
		up.Record = acked
		if !acked {
			up.Warnings = append(up.Warnings, "reset not acknowledged; retained counter state kept")
		}

	case parser.CmdClk:
		rec, err := parser.ParseClk(env.Raw)
		if err != nil {
			return nil, err
		}
		s.clk = rec
		up.Record = rec

	case parser.CmdSpread:
		rec, err := parser.ParseSpread(env.Raw)
		if err != nil {
			return nil, err
		}
		s.spread = rec
		up.Record = rec

	case parser.CmdShowMode:
		rec, err := parser.ParseShowMode(env.Raw)
		if err != nil {
			return nil, err
		}
		s.showMode = rec
		up.Record = rec

	default:
		return nil, fmt.Errorf("unsupported command %s", env.Command)
	}

	s.LastUpdate = env.Timestamp
	if s.LastUpdate.IsZero() {
		s.LastUpdate = time.Now()
	}
	return up, nil
}

// parseShowPort memoizes topology parses: rapid repeat polls with an
// identical payload skip the rebuild.
func (s *Session) parseShowPort(env *parser.Envelope) (*parser.ShowPort, error) {
	payload := env.Raw
	if env.Parsed.Exists() {
		payload = env.Parsed.Raw
	}
	key := "showport:" + payload
	if cached := s.cache.Get(key); cached != nil {
		return cached.(*parser.ShowPort), nil
	}
	sp, err := parser.ParseShowPort(payload)
	if err != nil {
		return nil, err
	}
	s.cache.SetSlow(key, sp)
	return sp, nil
}

// SetLegacyStates supplies the legacy per-port state dictionary as a
// topology source.
func (s *Session) SetLegacyStates(states map[int]string) {
	s.legacy = states
	s.active = s.deriveActive()
}

// SetPortArrays supplies parsed upstream/downstream port arrays as a
// topology source.
func (s *Session) SetPortArrays(entries []topology.PortArrayEntry) {
	s.arrays = entries
	s.active = s.deriveActive()
}

func (s *Session) deriveActive() topology.ActiveSet {
	src := topology.Sources{
		Legacy:     s.legacy,
		PortArrays: s.arrays,
		Fallback:   s.cfg.FallbackActivePorts,
	}
	if s.topo != nil {
		src.ShowPort = showPortFromTopology(s.topo)
	}
	return topology.DeriveActiveSet(src)
}

// showPortFromTopology reshapes a built topology into the structured source
// for active-set derivation.
func showPortFromTopology(t *topology.Topology) *parser.ShowPort {
	sp := &parser.ShowPort{Groups: make(map[string][]parser.PortInfo, len(t.Groups))}
	for name, g := range t.Groups {
		sp.Groups[name] = g.Ports
	}
	return sp
}

// Topology returns the last built topology, or nil before the first
// successful showport.
func (s *Session) Topology() *topology.Topology {
	return s.topo
}

// ActivePorts returns the current active-port set.
func (s *Session) ActivePorts() topology.ActiveSet {
	return s.active
}

// Clk, Spread, and Mode return the most recent configuration records.
func (s *Session) Clk() *parser.ClkRecord       { return s.clk }
func (s *Session) Spread() *parser.SpreadRecord { return s.spread }
func (s *Session) Mode() *parser.ShowModeRecord { return s.showMode }
