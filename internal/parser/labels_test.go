package parser

import (
	"errors"
	"testing"
)

func TestParseClk(t *testing.T) {
	raw := `Clock configuration:
Clock Source: Internal
Port Group 0: Enabled
Port Group 1: Disabled
some trailing chatter`

	rec, err := ParseClk(raw)
	if err != nil {
		t.Fatalf("parse clk: %v", err)
	}
	if rec.Source != "Internal" {
		t.Fatalf("expected Internal source, got %q", rec.Source)
	}
	if rec.Groups[0] != "Enabled" || rec.Groups[1] != "Disabled" {
		t.Fatalf("unexpected groups: %+v", rec.Groups)
	}
}

func TestParseClkNoData(t *testing.T) {
	_, err := ParseClk("nothing useful here\n")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestParseSpread(t *testing.T) {
	rec, err := ParseSpread("Spread Spectrum: Enabled\nSpread Percentage: 0.5%\n")
	if err != nil {
		t.Fatalf("parse spread: %v", err)
	}
	if !rec.Enabled || rec.Percentage != 0.5 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestParseSpreadDisabled(t *testing.T) {
	rec, err := ParseSpread("Spread Spectrum: Off\n")
	if err != nil {
		t.Fatalf("parse spread: %v", err)
	}
	if rec.Enabled {
		t.Fatal("expected disabled")
	}
}

func TestParseShowMode(t *testing.T) {
	rec, err := ParseShowMode("Current Mode: Fanout\nDescription: x16 host, x4 downstream\n")
	if err != nil {
		t.Fatalf("parse showmode: %v", err)
	}
	if rec.Mode != "Fanout" || rec.Description != "x16 host, x4 downstream" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestParseShowModeNoData(t *testing.T) {
	if _, err := ParseShowMode("???\n"); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
