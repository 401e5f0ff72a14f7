package topology

import (
	"fmt"
	"sort"

	"github.com/serialcables/calypso/internal/parser"
)

// PortGroup is a named collection of ports sharing a physical location.
type PortGroup struct {
	Name        string            `json:"name"`
	Range       string            `json:"port_range"`
	Ports       []parser.PortInfo `json:"ports"`
	ActivePorts int               `json:"active_ports"`
}

// Topology is the canonical view built from one showport payload.
type Topology struct {
	Groups        map[string]*PortGroup `json:"port_groups"`
	Atlas3Version string                `json:"atlas3_version,omitempty"`
	TotalPorts    int                   `json:"total_ports"`
	ActivePorts   int                   `json:"active_ports"`
	MaxSpeed      parser.Generation     `json:"max_speed_detected"`
	HostSpeed     parser.Generation     `json:"host_speed"`
	HostWidth     int                   `json:"host_width"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// Build assigns each port from a showport payload to its canonical group by
// port number and computes the aggregate counters. Groups with zero active
// ports are retained; ActiveGroups filters them out.
func Build(sp *parser.ShowPort) *Topology {
	topo := &Topology{
		Groups:        make(map[string]*PortGroup),
		Atlas3Version: sp.Atlas3Version,
		Warnings:      append([]string(nil), sp.Warnings...),
	}

	ports := sp.AllPorts()
	sort.Slice(ports, func(i, j int) bool { return ports[i].PortNumber < ports[j].PortNumber })

	for _, p := range ports {
		name := PortName(p.PortNumber)
		group, ok := topo.Groups[name]
		if !ok {
			group = &PortGroup{Name: name, Range: RangeLabel(p.PortNumber)}
			topo.Groups[name] = group
		}
		group.Ports = append(group.Ports, p)
		topo.TotalPorts++

		if p.Active() {
			group.ActivePorts++
			topo.ActivePorts++
			// First-seen wins on ties; ports arrive in number order.
			if p.CurrentSpeed > topo.MaxSpeed {
				topo.MaxSpeed = p.CurrentSpeed
			}
		}
	}

	topo.resolveHostLink()
	return topo
}

// resolveHostLink reports the Gold Finger host-link speed separately. The
// host group is expected to carry a single active port.
func (t *Topology) resolveHostLink() {
	host, ok := t.Groups["Gold Finger/Host"]
	if !ok {
		return
	}
	seen := 0
	for _, p := range host.Ports {
		if !p.Active() {
			continue
		}
		seen++
		if seen == 1 {
			t.HostSpeed = p.CurrentSpeed
			t.HostWidth = p.CurrentWidth
		}
	}
	if seen > 1 {
		t.Warnings = append(t.Warnings,
			fmt.Sprintf("gold finger group has %d active ports, expected 1", seen))
	}
}

// ActiveGroups returns groups that have at least one active port, in board
// order.
func (t *Topology) ActiveGroups() []*PortGroup {
	var out []*PortGroup
	for _, name := range GroupNames() {
		if g, ok := t.Groups[name]; ok && g.ActivePorts > 0 {
			out = append(out, g)
		}
	}
	if g, ok := t.Groups[UnknownPortName]; ok && g.ActivePorts > 0 {
		out = append(out, g)
	}
	return out
}

// PortNumbers returns every port number present in the topology, sorted.
func (t *Topology) PortNumbers() []int {
	var nums []int
	for _, g := range t.Groups {
		for _, p := range g.Ports {
			nums = append(nums, p.PortNumber)
		}
	}
	sort.Ints(nums)
	return nums
}
