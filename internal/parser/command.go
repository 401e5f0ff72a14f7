package parser

import (
	"fmt"
	"strings"
)

// Command identifies a diagnostic command understood by the Atlas switch.
// The set is closed: responses for anything else are rejected up front
// instead of silently ignored.
type Command int

const (
	CmdUnknown Command = iota
	CmdCounters
	CmdCountersReset
	CmdShowPort
	CmdClk
	CmdSpread
	CmdShowMode
)

var commandNames = map[Command]string{
	CmdCounters:      "counters",
	CmdCountersReset: "counters-reset",
	CmdShowPort:      "showport",
	CmdClk:           "clk",
	CmdSpread:        "spread",
	CmdShowMode:      "showmode",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCommand maps a wire command name to its Command value.
func ParseCommand(name string) (Command, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for cmd, n := range commandNames {
		if n == trimmed {
			return cmd, nil
		}
	}
	return CmdUnknown, fmt.Errorf("unsupported command %q", name)
}

// Commands returns the supported command names in a stable order.
func Commands() []string {
	return []string{"counters", "counters-reset", "showport", "clk", "spread", "showmode"}
}
