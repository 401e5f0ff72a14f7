package parser

import (
	"strconv"
	"strings"
)

// CounterRow holds the six per-port error counters from one row of the
// `counters` table. All values are parsed as hexadecimal.
type CounterRow struct {
	PortNumber int    `json:"port_number"`
	PortRx     uint64 `json:"port_rx"`
	BadTLP     uint64 `json:"bad_tlp"`
	BadDLLP    uint64 `json:"bad_dllp"`
	RecDiag    uint64 `json:"rec_diag"`
	LinkDown   uint64 `json:"link_down"`
	FlitError  uint64 `json:"flit_error"`
	Total      uint64 `json:"total_errors"`
}

// Counter field names in column order. Shared with the aggregator so delta
// maps use the same keys as the wire columns.
const (
	FieldPortRx    = "port_rx"
	FieldBadTLP    = "bad_tlp"
	FieldBadDLLP   = "bad_dllp"
	FieldRecDiag   = "rec_diag"
	FieldLinkDown  = "link_down"
	FieldFlitError = "flit_error"
	FieldTotal     = "total_errors"
)

// CounterFields lists the six counter field names in column order.
var CounterFields = []string{FieldPortRx, FieldBadTLP, FieldBadDLLP, FieldRecDiag, FieldLinkDown, FieldFlitError}

// FieldValue returns a counter field by name.
func (r CounterRow) FieldValue(name string) uint64 {
	switch name {
	case FieldPortRx:
		return r.PortRx
	case FieldBadTLP:
		return r.BadTLP
	case FieldBadDLLP:
		return r.BadDLLP
	case FieldRecDiag:
		return r.RecDiag
	case FieldLinkDown:
		return r.LinkDown
	case FieldFlitError:
		return r.FlitError
	case FieldTotal:
		return r.Total
	}
	return 0
}

// ParseCounters extracts per-port counter rows from raw `counters` output.
// A data row is a leading decimal port number followed by at least five
// more hex tokens; anything else (headers, separators, prompts) is skipped.
// Returns ErrNoData when no row matches.
func ParseCounters(raw string) (map[int]CounterRow, error) {
	rows := make(map[int]CounterRow)

	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}

		port, err := strconv.Atoi(fields[0])
		if err != nil || port < 0 {
			continue
		}
		if !allHex(fields[1:6]) {
			continue
		}

		row := CounterRow{
			PortNumber: port,
			PortRx:     parseHex(fields, 1),
			BadTLP:     parseHex(fields, 2),
			BadDLLP:    parseHex(fields, 3),
			RecDiag:    parseHex(fields, 4),
			LinkDown:   parseHex(fields, 5),
			FlitError:  parseHex(fields, 6),
		}
		row.Total = row.PortRx + row.BadTLP + row.BadDLLP + row.RecDiag + row.LinkDown + row.FlitError
		rows[port] = row
	}

	if len(rows) == 0 {
		return nil, newNoData(CmdCounters)
	}
	return rows, nil
}

// parseHex parses fields[i] as base-16, tolerating a 0x prefix. Missing or
// malformed tokens default to zero.
func parseHex(fields []string, i int) uint64 {
	if i >= len(fields) {
		return 0
	}
	tok := strings.TrimPrefix(strings.ToLower(fields[i]), "0x")
	v, err := strconv.ParseUint(tok, 16, 64)
	if err != nil {
		return 0
	}
	return v
}

func allHex(toks []string) bool {
	for _, tok := range toks {
		tok = strings.TrimPrefix(strings.ToLower(tok), "0x")
		if _, err := strconv.ParseUint(tok, 16, 64); err != nil {
			return false
		}
	}
	return true
}

// ParseCountersReset checks a `counters-reset` response for the device's
// acknowledgement. Local counter state must only be cleared on a positive
// ack, never inferred from a zero snapshot.
func ParseCountersReset(raw string) (bool, error) {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "reset") && (strings.Contains(lower, "ok") || strings.Contains(lower, "done") || strings.Contains(lower, "complete") || strings.Contains(lower, "success")):
		return true, nil
	case strings.Contains(lower, "error") || strings.Contains(lower, "fail"):
		return false, nil
	case strings.TrimSpace(raw) == "":
		return false, newNoData(CmdCountersReset)
	}
	return false, newParseError(CmdCountersReset, "unrecognized reset response %q", strings.TrimSpace(raw))
}
