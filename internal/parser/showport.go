package parser

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ShowPort is the validated form of a pre-segmented `showport` payload.
// Group names are kept as reported; canonical grouping by port-number range
// happens in the topology model.
type ShowPort struct {
	Atlas3Version string                `json:"atlas3_version,omitempty"`
	Groups        map[string][]PortInfo `json:"port_groups"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// AllPorts returns every port across all groups.
func (sp *ShowPort) AllPorts() []PortInfo {
	var out []PortInfo
	for _, ports := range sp.Groups {
		out = append(out, ports...)
	}
	return out
}

// ParseShowPort validates a showport JSON payload and coerces each port's
// status, speed, and width to the canonical types. The payload arrives
// already segmented by the transport layer; missing or oddly-typed fields
// on a port produce a warning, not a failure.
func ParseShowPort(payload string) (*ShowPort, error) {
	if !gjson.Valid(payload) {
		return nil, newParseError(CmdShowPort, "payload is not valid JSON")
	}
	root := gjson.Parse(payload)

	groups := root.Get("port_groups")
	if !groups.Exists() || !groups.IsObject() {
		return nil, newParseError(CmdShowPort, "payload has no port_groups mapping")
	}

	sp := &ShowPort{
		Atlas3Version: root.Get("atlas3_version").String(),
		Groups:        make(map[string][]PortInfo),
	}

	groups.ForEach(func(name, group gjson.Result) bool {
		var ports []PortInfo
		portList := group.Get("ports")
		if !portList.Exists() {
			// Some firmware revisions emit the port array directly.
			portList = group
		}
		portList.ForEach(func(_, entry gjson.Result) bool {
			info, warn := coercePort(entry)
			if warn != "" {
				sp.Warnings = append(sp.Warnings, fmt.Sprintf("group %s: %s", name.String(), warn))
			}
			if info != nil {
				ports = append(ports, *info)
			}
			return true
		})
		sp.Groups[name.String()] = ports
		return true
	})

	if len(sp.AllPorts()) == 0 {
		return nil, newNoData(CmdShowPort)
	}
	return sp, nil
}

func coercePort(entry gjson.Result) (*PortInfo, string) {
	num := entry.Get("port_number")
	if !num.Exists() {
		num = entry.Get("port")
	}
	if !num.Exists() {
		return nil, "port entry missing port_number, skipped"
	}

	info := &PortInfo{
		PortNumber:   int(num.Int()),
		Status:       ParseStatus(entry.Get("status").String()),
		CurrentSpeed: ParseGeneration(entry.Get("current_speed").String()),
		MaxSpeed:     ParseGeneration(entry.Get("max_speed").String()),
		CurrentWidth: int(entry.Get("current_width").Int()),
		MaxWidth:     int(entry.Get("max_width").Int()),
	}

	// Idle ports carry no link data; clear anything the device reported so
	// downstream views don't render stale speeds.
	if info.Status == StatusIdle {
		info.CurrentSpeed = GenUnknown
		info.CurrentWidth = 0
	}

	var warn string
	if info.Status == StatusUnknown && entry.Get("status").String() != "" {
		warn = fmt.Sprintf("port %d: unrecognized status %q", info.PortNumber, entry.Get("status").String())
	}
	return info, warn
}
