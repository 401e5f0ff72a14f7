// Package counters accumulates per-port error-counter snapshots, computes
// poll-to-poll deltas, and flags ports crossing the critical threshold.
// Only two generations of data exist at any time: the current snapshot and
// the one immediately before it.
package counters

import (
	"sort"

	"github.com/serialcables/calypso/internal/parser"
	"github.com/serialcables/calypso/internal/topology"
)

// DefaultCriticalThreshold marks a counter field, or a port's error total,
// as critical. Fixed by the device documentation; overridable via config.
const DefaultCriticalThreshold = 10

// Delta holds strictly-positive field increases between two polls, keyed by
// counter field name. Counter regressions (device-side resets) produce no
// entry rather than a negative one.
type Delta map[string]uint64

// PortState is the aggregated view of one port after a poll.
type PortState struct {
	Row            parser.CounterRow `json:"counters"`
	Delta          Delta             `json:"delta,omitempty"`
	CriticalFields []string          `json:"critical_fields,omitempty"`
	Critical       bool              `json:"critical"`
}

// Result is the outcome of applying one snapshot.
type Result struct {
	Ports    map[int]PortState `json:"ports"`
	Filtered int               `json:"filtered"` // ports dropped by the active set
}

// CriticalPorts returns the port numbers flagged critical, sorted.
func (r Result) CriticalPorts() []int {
	var out []int
	for port, st := range r.Ports {
		if st.Critical {
			out = append(out, port)
		}
	}
	sort.Ints(out)
	return out
}

// Aggregator owns the previous snapshot for one dashboard session. Not safe
// for concurrent use; each session has exactly one caller.
type Aggregator struct {
	previous  map[int]parser.CounterRow
	threshold uint64
}

// New returns an aggregator using threshold for critical flagging. A zero
// threshold selects the default.
func New(threshold uint64) *Aggregator {
	if threshold == 0 {
		threshold = DefaultCriticalThreshold
	}
	return &Aggregator{threshold: threshold}
}

// Apply replaces the current snapshot wholesale, computing deltas against
// the previous poll and dropping ports outside the active set before any
// aggregation. The previous snapshot is discarded once deltas are computed.
func (a *Aggregator) Apply(current map[int]parser.CounterRow, active topology.ActiveSet) Result {
	res := Result{Ports: make(map[int]PortState, len(current))}
	kept := make(map[int]parser.CounterRow, len(current))

	for port, row := range current {
		if !active.Empty() && !active.Contains(port) {
			res.Filtered++
			continue
		}
		kept[port] = row

		st := PortState{Row: row}
		if prev, ok := a.previous[port]; ok {
			st.Delta = diff(prev, row)
		}
		for _, field := range parser.CounterFields {
			if row.FieldValue(field) >= a.threshold {
				st.CriticalFields = append(st.CriticalFields, field)
			}
		}
		st.Critical = row.Total >= a.threshold
		res.Ports[port] = st
	}

	a.previous = kept
	return res
}

// Reset clears the retained snapshot. Called only after the device has
// acknowledged a counters-reset command; a zero snapshot on the wire does
// not imply a reset.
func (a *Aggregator) Reset(acked bool) {
	if !acked {
		return
	}
	a.previous = nil
}

// HasPrevious reports whether a prior snapshot is retained.
func (a *Aggregator) HasPrevious() bool {
	return a.previous != nil
}

// diff returns the strictly-positive field increases from prev to cur,
// including the total.
func diff(prev, cur parser.CounterRow) Delta {
	var d Delta
	add := func(field string, p, c uint64) {
		if c > p {
			if d == nil {
				d = make(Delta)
			}
			d[field] = c - p
		}
	}
	add(parser.FieldPortRx, prev.PortRx, cur.PortRx)
	add(parser.FieldBadTLP, prev.BadTLP, cur.BadTLP)
	add(parser.FieldBadDLLP, prev.BadDLLP, cur.BadDLLP)
	add(parser.FieldRecDiag, prev.RecDiag, cur.RecDiag)
	add(parser.FieldLinkDown, prev.LinkDown, cur.LinkDown)
	add(parser.FieldFlitError, prev.FlitError, cur.FlitError)
	add(parser.FieldTotal, prev.Total, cur.Total)
	return d
}

// Diff exposes the delta computation for callers comparing two standalone
// snapshots (for example the CLI given --previous).
func Diff(prev, cur parser.CounterRow) Delta {
	return diff(prev, cur)
}
