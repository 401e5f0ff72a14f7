package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// ClkRecord holds per-port-group clock output status from `clk`.
type ClkRecord struct {
	Groups map[int]string `json:"groups"` // group index -> status text
	Source string         `json:"source,omitempty"`
}

var clkGroupPattern = regexp.MustCompile(`(?i)^Port Group\s+(\d+)\s*:\s*(.+)$`)

// ParseClk extracts "Port Group N: <status>" lines from raw `clk` output.
// Unmatched lines are ignored.
func ParseClk(raw string) (*ClkRecord, error) {
	rec := &ClkRecord{Groups: make(map[int]string)}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if m := clkGroupPattern.FindStringSubmatch(line); m != nil {
			idx, _ := strconv.Atoi(m[1])
			rec.Groups[idx] = strings.TrimSpace(m[2])
			continue
		}
		if v, ok := labelValue(line, "Clock Source"); ok {
			rec.Source = v
		}
	}

	if len(rec.Groups) == 0 && rec.Source == "" {
		return nil, newNoData(CmdClk)
	}
	return rec, nil
}

// SpreadRecord holds spread-spectrum clocking state from `spread`.
type SpreadRecord struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
}

// ParseSpread extracts spread-spectrum status and percentage. Unmatched
// lines are ignored.
func ParseSpread(raw string) (*SpreadRecord, error) {
	rec := &SpreadRecord{}
	matched := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := labelValue(line, "Spread Spectrum"); ok {
			lower := strings.ToLower(v)
			rec.Enabled = strings.Contains(lower, "enable") || strings.Contains(lower, "on")
			matched = true
			continue
		}
		if v, ok := labelValue(line, "Spread Percentage"); ok {
			v = strings.TrimSuffix(strings.TrimSpace(v), "%")
			if pct, err := strconv.ParseFloat(v, 64); err == nil {
				rec.Percentage = pct
			}
			matched = true
		}
	}

	if !matched {
		return nil, newNoData(CmdSpread)
	}
	return rec, nil
}

// ShowModeRecord holds the switch operating mode from `showmode`.
type ShowModeRecord struct {
	Mode        string `json:"mode"`
	Description string `json:"description,omitempty"`
}

// ParseShowMode extracts the current operating mode. Unmatched lines are
// ignored.
func ParseShowMode(raw string) (*ShowModeRecord, error) {
	rec := &ShowModeRecord{}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := labelValue(line, "Current Mode"); ok {
			rec.Mode = v
			continue
		}
		if v, ok := labelValue(line, "Mode"); ok && rec.Mode == "" {
			rec.Mode = v
			continue
		}
		if v, ok := labelValue(line, "Description"); ok {
			rec.Description = v
		}
	}

	if rec.Mode == "" {
		return nil, newNoData(CmdShowMode)
	}
	return rec, nil
}

// labelValue matches "Label: value" with an exact label, case-insensitive.
func labelValue(line, label string) (string, bool) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(strings.TrimSpace(parts[0]), label) {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
