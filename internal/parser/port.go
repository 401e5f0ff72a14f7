package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// PortStatus is the canonical link state of a switch port.
type PortStatus string

const (
	StatusIdle      PortStatus = "idle"
	StatusActive    PortStatus = "active"
	StatusConnected PortStatus = "connected"
	StatusError     PortStatus = "error"
	StatusUnknown   PortStatus = "unknown"
)

// ParseStatus coerces raw status text by case-insensitive substring match.
func ParseStatus(raw string) PortStatus {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "idle"):
		return StatusIdle
	case strings.Contains(lower, "connect"):
		return StatusConnected
	case strings.Contains(lower, "active") || strings.Contains(lower, "up") || strings.Contains(lower, "degraded"):
		return StatusActive
	case strings.Contains(lower, "err") || strings.Contains(lower, "fault") || strings.Contains(lower, "down"):
		return StatusError
	}
	return StatusUnknown
}

// IsActive reports whether the port is in service. Any non-idle status
// counts, including error: a faulted link is still a link.
func (s PortStatus) IsActive() bool {
	return s != StatusIdle
}

// Generation is a PCIe link generation, ordered Gen1 < Gen2 < ... < Gen6.
type Generation int

const (
	GenUnknown Generation = 0
	Gen1       Generation = 1
	Gen2       Generation = 2
	Gen3       Generation = 3
	Gen4       Generation = 4
	Gen5       Generation = 5
	Gen6       Generation = 6
)

func (g Generation) String() string {
	if g < Gen1 || g > Gen6 {
		return "unknown"
	}
	return "Gen" + strconv.Itoa(int(g))
}

// GTps returns the per-lane raw bit rate in GT/s.
func (g Generation) GTps() float64 {
	switch g {
	case Gen1:
		return 2.5
	case Gen2:
		return 5.0
	case Gen3:
		return 8.0
	case Gen4:
		return 16.0
	case Gen5:
		return 32.0
	case Gen6:
		return 64.0
	}
	return 0
}

// LaneGBps returns the usable per-lane bandwidth in GB/s after encoding
// overhead.
func (g Generation) LaneGBps() float64 {
	switch g {
	case Gen1:
		return 0.25
	case Gen2:
		return 0.5
	case Gen3:
		return 0.985
	case Gen4:
		return 1.969
	case Gen5:
		return 3.938
	case Gen6:
		return 7.563
	}
	return 0
}

var genPattern = regexp.MustCompile(`(?i)gen\s*([1-6])`)

// ParseGeneration coerces raw speed text ("Gen4", "gen 4", "4") to a
// Generation. Unrecognized text maps to GenUnknown.
func ParseGeneration(raw string) Generation {
	trimmed := strings.TrimSpace(raw)
	if m := genPattern.FindStringSubmatch(trimmed); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Generation(n)
	}
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= 6 {
		return Generation(n)
	}
	return GenUnknown
}

// CompareSpeed orders two raw speed strings by generation ordinal. Returns
// a negative value when a is slower than b, zero when equal.
func CompareSpeed(a, b string) int {
	return int(ParseGeneration(a)) - int(ParseGeneration(b))
}

// PortInfo is one coerced port entry from a showport payload.
type PortInfo struct {
	PortNumber   int        `json:"port_number"`
	Status       PortStatus `json:"status"`
	CurrentSpeed Generation `json:"current_speed"`
	MaxSpeed     Generation `json:"max_speed"`
	CurrentWidth int        `json:"current_width"`
	MaxWidth     int        `json:"max_width"`
}

// Active reports whether the port should count toward active topology.
func (p PortInfo) Active() bool {
	return p.Status.IsActive()
}
