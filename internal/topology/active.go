package topology

import (
	"sort"
	"strings"

	"github.com/serialcables/calypso/internal/parser"
)

// ActiveSource records which topology source yielded the active-port set,
// so "assumed active" is distinguishable from "observed active".
type ActiveSource string

const (
	SourceStructured   ActiveSource = "structured"    // showport port groups
	SourceLegacy       ActiveSource = "legacy"        // per-port state dictionary
	SourceParsedArrays ActiveSource = "parsed_arrays" // upstream/downstream port arrays
	SourceFallback     ActiveSource = "fallback"      // configured default set
)

// DefaultFallbackPorts is assumed active when no topology source yields
// data. Deployments override it via config.
var DefaultFallbackPorts = []int{80, 112}

// ActiveSet is the set of port numbers considered in service.
type ActiveSet struct {
	ports  map[int]bool
	Source ActiveSource
}

// PortArrayEntry is one entry from parsed upstream/downstream port arrays,
// the third-priority topology source.
type PortArrayEntry struct {
	PortNumber   int  `json:"port_number"`
	IsActive     bool `json:"is_active"`
	CurrentWidth int  `json:"current_width"`
}

// Sources carries whichever topology inputs the caller has. Nil or empty
// fields are skipped in priority order.
type Sources struct {
	ShowPort   *parser.ShowPort
	Legacy     map[int]string
	PortArrays []PortArrayEntry
	Fallback   []int
}

// DeriveActiveSet builds the active-port set from the highest-priority
// source that yields at least one port: structured showport groups, then
// the legacy state dictionary, then parsed port arrays. When every source
// comes up empty the configured fallback set is assumed active rather than
// reporting zero ports.
func DeriveActiveSet(src Sources) ActiveSet {
	if src.ShowPort != nil {
		ports := make(map[int]bool)
		for _, p := range src.ShowPort.AllPorts() {
			if p.Active() {
				ports[p.PortNumber] = true
			}
		}
		if len(ports) > 0 {
			return ActiveSet{ports: ports, Source: SourceStructured}
		}
	}

	if len(src.Legacy) > 0 {
		ports := make(map[int]bool)
		for port, status := range src.Legacy {
			lower := strings.ToLower(status)
			if strings.Contains(lower, "active") || strings.Contains(lower, "connected") || strings.Contains(lower, "degraded") {
				ports[port] = true
			}
		}
		if len(ports) > 0 {
			return ActiveSet{ports: ports, Source: SourceLegacy}
		}
	}

	if len(src.PortArrays) > 0 {
		ports := make(map[int]bool)
		for _, e := range src.PortArrays {
			if e.IsActive || e.CurrentWidth > 0 {
				ports[e.PortNumber] = true
			}
		}
		if len(ports) > 0 {
			return ActiveSet{ports: ports, Source: SourceParsedArrays}
		}
	}

	fallback := src.Fallback
	if len(fallback) == 0 {
		fallback = DefaultFallbackPorts
	}
	ports := make(map[int]bool, len(fallback))
	for _, p := range fallback {
		ports[p] = true
	}
	return ActiveSet{ports: ports, Source: SourceFallback}
}

// Contains reports whether port is in the set.
func (s ActiveSet) Contains(port int) bool {
	return s.ports[port]
}

// Len returns the number of ports in the set.
func (s ActiveSet) Len() int {
	return len(s.ports)
}

// Empty reports whether the set carries no ports at all. Only possible for
// the zero value; DeriveActiveSet never returns an empty set.
func (s ActiveSet) Empty() bool {
	return len(s.ports) == 0
}

// Ports returns the member port numbers, sorted.
func (s ActiveSet) Ports() []int {
	out := make([]int, 0, len(s.ports))
	for p := range s.ports {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Filter returns the subset of ports that are members, preserving order.
// Filtering an already-filtered list is a no-op. An empty set filters
// nothing out.
func (s ActiveSet) Filter(ports []int) []int {
	if s.Empty() {
		return ports
	}
	var out []int
	for _, p := range ports {
		if s.ports[p] {
			out = append(out, p)
		}
	}
	return out
}
