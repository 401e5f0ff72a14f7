// Package parser normalizes raw Atlas switch command responses into typed
// records. Parsers never panic on device output: malformed lines are
// skipped, empty responses come back as ErrNoData, and callers decide
// whether partial data is still usable.
package parser

// Parse dispatches a raw response block to the normalizer for cmd. The
// returned record is one of map[int]CounterRow, bool (counters-reset ack),
// *ShowPort, *ClkRecord, *SpreadRecord, or *ShowModeRecord.
func Parse(cmd Command, raw string) (any, error) {
	fn, ok := parsers[cmd]
	if !ok {
		return nil, newParseError(cmd, "no parser registered")
	}
	return fn(raw)
}

// parsers is the closed dispatch table. A supported command with no entry
// here is a bug, not a silent no-op.
var parsers = map[Command]func(string) (any, error){
	CmdCounters: func(raw string) (any, error) {
		return ParseCounters(raw)
	},
	CmdCountersReset: func(raw string) (any, error) {
		return ParseCountersReset(raw)
	},
	CmdShowPort: func(raw string) (any, error) {
		return ParseShowPort(raw)
	},
	CmdClk: func(raw string) (any, error) {
		return ParseClk(raw)
	},
	CmdSpread: func(raw string) (any, error) {
		return ParseSpread(raw)
	},
	CmdShowMode: func(raw string) (any, error) {
		return ParseShowMode(raw)
	},
}
