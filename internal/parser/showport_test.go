package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showportPayload = `{
	"atlas3_version": "1.4.2",
	"port_groups": {
		"Gold Finger": {
			"port_range": "1-32",
			"ports": [
				{"port_number": 1, "status": "Active", "current_speed": "Gen5", "max_speed": "Gen6", "current_width": 16, "max_width": 16}
			]
		},
		"Upper Left MCIO": {
			"port_range": "112-119",
			"ports": [
				{"port_number": 112, "status": "Connected", "current_speed": "Gen4", "max_speed": "Gen6", "current_width": 8, "max_width": 8},
				{"port_number": 113, "status": "Idle", "current_speed": "Gen6", "max_speed": "Gen6", "current_width": 8, "max_width": 8}
			]
		}
	}
}`

func TestParseShowPortCoercesFields(t *testing.T) {
	sp, err := ParseShowPort(showportPayload)
	require.NoError(t, err)

	assert.Equal(t, "1.4.2", sp.Atlas3Version)
	require.Len(t, sp.Groups, 2)

	host := sp.Groups["Gold Finger"]
	require.Len(t, host, 1)
	assert.Equal(t, StatusActive, host[0].Status)
	assert.Equal(t, Gen5, host[0].CurrentSpeed)
	assert.Equal(t, 16, host[0].CurrentWidth)

	mcio := sp.Groups["Upper Left MCIO"]
	require.Len(t, mcio, 2)
	assert.Equal(t, StatusConnected, mcio[0].Status)
}

func TestParseShowPortIdlePortsCarryNoLinkData(t *testing.T) {
	sp, err := ParseShowPort(showportPayload)
	require.NoError(t, err)

	idle := sp.Groups["Upper Left MCIO"][1]
	assert.Equal(t, StatusIdle, idle.Status)
	assert.Equal(t, GenUnknown, idle.CurrentSpeed)
	assert.Equal(t, 0, idle.CurrentWidth)
}

func TestParseShowPortRejectsMissingGroups(t *testing.T) {
	_, err := ParseShowPort(`{"atlas3_version": "1.0.0"}`)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, CmdShowPort, perr.Command)
}

func TestParseShowPortEmptyGroupsIsNoData(t *testing.T) {
	_, err := ParseShowPort(`{"port_groups": {"Gold Finger": {"ports": []}}}`)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestParseShowPortWarnsOnSkippedEntries(t *testing.T) {
	sp, err := ParseShowPort(`{"port_groups": {"Straddle Mount": {"ports": [
		{"status": "Active"},
		{"port_number": 80, "status": "humming"}
	]}}}`)
	require.NoError(t, err)

	require.Len(t, sp.Groups["Straddle Mount"], 1)
	assert.Len(t, sp.Warnings, 2)
	assert.Equal(t, StatusUnknown, sp.Groups["Straddle Mount"][0].Status)
}

func TestParseStatusSubstrings(t *testing.T) {
	cases := map[string]PortStatus{
		"Link Active":  StatusActive,
		"IDLE":         StatusIdle,
		"connected x8": StatusConnected,
		"Link Error":   StatusError,
		"degraded":     StatusActive,
		"???":          StatusUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseStatus(raw), "status %q", raw)
	}
}

func TestCompareSpeed(t *testing.T) {
	assert.Positive(t, CompareSpeed("Gen3", "Gen1"))
	assert.Zero(t, CompareSpeed("Gen1", "Gen1"))
	assert.Negative(t, CompareSpeed("Gen2", "Gen6"))
}

func TestParseGeneration(t *testing.T) {
	assert.Equal(t, Gen4, ParseGeneration("Gen4"))
	assert.Equal(t, Gen6, ParseGeneration("gen 6"))
	assert.Equal(t, Gen2, ParseGeneration("2"))
	assert.Equal(t, GenUnknown, ParseGeneration("fast"))
}
