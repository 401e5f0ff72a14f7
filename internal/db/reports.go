package db

import (
	"encoding/json"
	"fmt"

	"github.com/serialcables/calypso/internal/compliance"
)

// SaveReport persists a compliance report. Reports are immutable; saving
// the same id twice is an error.
func (d *DB) SaveReport(sessionID string, report *compliance.Report) error {
	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = d.conn.Exec(`
		INSERT INTO compliance_reports (id, session_id, overall_compliant, score, report, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.ID, sessionID, report.OverallCompliant, report.Score, string(blob), report.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport loads one report by id.
func (d *DB) GetReport(id string) (*compliance.Report, error) {
	var blob string
	err := d.conn.QueryRow("SELECT report FROM compliance_reports WHERE id = ?", id).Scan(&blob)
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}
	var report compliance.Report
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns recent reports, newest first.
func (d *DB) ListReports(limit int) ([]*compliance.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
		SELECT report FROM compliance_reports ORDER BY generated_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []*compliance.Report
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var report compliance.Report
		if err := json.Unmarshal([]byte(blob), &report); err != nil {
			return nil, err
		}
		out = append(out, &report)
	}
	return out, rows.Err()
}
