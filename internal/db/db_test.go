package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/serialcables/calypso/internal/compliance"
	"github.com/serialcables/calypso/internal/counters"
	"github.com/serialcables/calypso/internal/parser"
	"github.com/serialcables/calypso/internal/topology"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestRecordAndListPolls(t *testing.T) {
	database := newTestDB(t)

	res := counters.New(0).Apply(map[int]parser.CounterRow{
		112: {PortNumber: 112, PortRx: 3, BadTLP: 8, Total: 11},
		113: {PortNumber: 113, Total: 0},
	}, topology.ActiveSet{})

	ts := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	if err := database.RecordPoll("sess-1", ts, res); err != nil {
		t.Fatalf("record poll: %v", err)
	}

	polls, err := database.ListPolls(10)
	if err != nil {
		t.Fatalf("list polls: %v", err)
	}
	if len(polls) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(polls))
	}
	byPort := map[int]*PollRow{}
	for _, p := range polls {
		byPort[p.Port] = p
	}
	if byPort[112] == nil || byPort[112].Total != 11 || !byPort[112].Critical {
		t.Fatalf("unexpected row for 112: %+v", byPort[112])
	}
	if byPort[113].Critical {
		t.Fatal("port 113 should not be critical")
	}

	totals, err := database.PortTotals("sess-1")
	if err != nil {
		t.Fatalf("port totals: %v", err)
	}
	if totals[112] != 11 {
		t.Fatalf("totals = %v", totals)
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	database := newTestDB(t)

	report := compliance.Score(compliance.Metrics{
		RetrainTimesMs: []float64{150},
	}, compliance.DefaultThresholds())

	if err := database.SaveReport("sess-1", report); err != nil {
		t.Fatalf("save report: %v", err)
	}

	loaded, err := database.GetReport(report.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if loaded.Score != report.Score || len(loaded.Violations) != 1 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}

	// Reports are immutable: same id cannot be saved twice.
	if err := database.SaveReport("sess-1", report); err == nil {
		t.Fatal("expected duplicate id error")
	}

	list, err := database.ListReports(5)
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 report, got %d", len(list))
	}
}

func TestAlertLifecycle(t *testing.T) {
	database := newTestDB(t)

	if err := database.CreateAlertWithDetails("critical", "port_errors",
		"Port 112 exceeded error threshold", map[string]any{"port": 112, "total": 14}); err != nil {
		t.Fatalf("create alert: %v", err)
	}

	open, err := database.GetUnacknowledgedAlerts()
	if err != nil {
		t.Fatalf("get unacked: %v", err)
	}
	if len(open) != 1 || open[0].Port == nil || *open[0].Port != 112 {
		t.Fatalf("unexpected alerts: %+v", open)
	}

	if err := database.AcknowledgeAlert(open[0].ID); err != nil {
		t.Fatalf("ack: %v", err)
	}
	open, err = database.GetUnacknowledgedAlerts()
	if err != nil {
		t.Fatalf("get unacked: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open alerts, got %d", len(open))
	}
}
