// Package topology aggregates normalized port records into the canonical
// Atlas switch port topology and derives the set of in-service ports.
package topology

import "fmt"

// portRange maps a fixed span of port numbers to a physical location on
// the board. Membership is defined by these spans, not by whatever grouping
// the firmware happened to report.
type portRange struct {
	name string
	lo   int
	hi   int
}

var portRanges = []portRange{
	{"Gold Finger/Host", 1, 32},
	{"Straddle Mount", 80, 95},
	{"Upper Left MCIO", 112, 119},
	{"Lower Left MCIO", 120, 127},
	{"Upper Right MCIO", 128, 135},
	{"Lower Right MCIO", 136, 143},
}

// UnknownPortName is returned for port numbers outside every known range.
const UnknownPortName = "Unknown Port"

// PortName returns the human-readable location for a port number.
func PortName(n int) string {
	for _, r := range portRanges {
		if n >= r.lo && n <= r.hi {
			return r.name
		}
	}
	return UnknownPortName
}

// RangeLabel returns the "lo-hi" label for the range containing n, or ""
// for unknown ports.
func RangeLabel(n int) string {
	for _, r := range portRanges {
		if n >= r.lo && n <= r.hi {
			return fmt.Sprintf("%d-%d", r.lo, r.hi)
		}
	}
	return ""
}

// GroupNames returns every known group name in board order.
func GroupNames() []string {
	names := make([]string, len(portRanges))
	for i, r := range portRanges {
		names[i] = r.name
	}
	return names
}
