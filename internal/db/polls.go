package db

import (
	"fmt"
	"time"

	"github.com/serialcables/calypso/internal/counters"
)

// PollRow is one persisted per-port counter sample.
type PollRow struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Port      int       `json:"port"`
	PortRx    uint64    `json:"port_rx"`
	BadTLP    uint64    `json:"bad_tlp"`
	BadDLLP   uint64    `json:"bad_dllp"`
	RecDiag   uint64    `json:"rec_diag"`
	LinkDown  uint64    `json:"link_down"`
	FlitError uint64    `json:"flit_error"`
	Total     uint64    `json:"total_errors"`
	Critical  bool      `json:"critical"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordPoll persists every port state from one applied snapshot. The
// in-memory model stays two-generation; this table is an audit log only.
func (d *DB) RecordPoll(sessionID string, ts time.Time, res counters.Result) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin poll transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO polls (session_id, port, port_rx, bad_tlp, bad_dllp, rec_diag, link_down, flit_error, total_errors, critical, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for port, st := range res.Ports {
		r := st.Row
		if _, err := stmt.Exec(sessionID, port, r.PortRx, r.BadTLP, r.BadDLLP, r.RecDiag,
			r.LinkDown, r.FlitError, r.Total, st.Critical, ts); err != nil {
			return fmt.Errorf("failed to record poll for port %d: %w", port, err)
		}
	}

	return tx.Commit()
}

// ListPolls returns the most recent poll rows, newest first.
func (d *DB) ListPolls(limit int) ([]*PollRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(`
		SELECT id, session_id, port, port_rx, bad_tlp, bad_dllp, rec_diag, link_down, flit_error, total_errors, critical, timestamp
		FROM polls ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var out []*PollRow
	for rows.Next() {
		var p PollRow
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Port, &p.PortRx, &p.BadTLP, &p.BadDLLP,
			&p.RecDiag, &p.LinkDown, &p.FlitError, &p.Total, &p.Critical, &p.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// PortTotals returns the latest recorded total per port for a session.
func (d *DB) PortTotals(sessionID string) (map[int]uint64, error) {
	rows, err := d.conn.Query(`
		SELECT port, total_errors FROM polls
		WHERE session_id = ? AND id IN (SELECT MAX(id) FROM polls WHERE session_id = ? GROUP BY port)
	`, sessionID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int]uint64)
	for rows.Next() {
		var port int
		var total uint64
		if err := rows.Scan(&port, &total); err != nil {
			return nil, err
		}
		totals[port] = total
	}
	return totals, rows.Err()
}
