package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Alert is one recorded condition worth surfacing to an operator.
type Alert struct {
	ID           int64     `json:"id"`
	Severity     string    `json:"severity"` // info, warning, critical
	Category     string    `json:"category"`
	Message      string    `json:"message"`
	Port         *int      `json:"port,omitempty"`
	Details      string    `json:"details,omitempty"`
	Acknowledged bool      `json:"acknowledged"`
	Timestamp    time.Time `json:"timestamp"`
}

// CreateAlert creates a new alert
func (d *DB) CreateAlert(alert *Alert) error {
	var detailsJSON sql.NullString
	if alert.Details != "" {
		detailsJSON = sql.NullString{String: alert.Details, Valid: true}
	}

	result, err := d.conn.Exec(`
		INSERT INTO alerts (severity, category, message, port, details)
		VALUES (?, ?, ?, ?, ?)
	`, alert.Severity, alert.Category, alert.Message, alert.Port, detailsJSON)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	id, _ := result.LastInsertId()
	alert.ID = id
	alert.Timestamp = time.Now()

	return nil
}

// CreateAlertWithDetails creates a new alert with structured details
func (d *DB) CreateAlertWithDetails(severity, category, message string, details map[string]any) error {
	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err == nil {
			detailsJSON = string(b)
		}
	}

	alert := &Alert{
		Severity: severity,
		Category: category,
		Message:  message,
		Details:  detailsJSON,
	}

	if details != nil {
		if port, ok := details["port"].(int); ok {
			alert.Port = &port
		}
	}

	return d.CreateAlert(alert)
}

// GetUnacknowledgedAlerts returns all unacknowledged alerts, newest first.
func (d *DB) GetUnacknowledgedAlerts() ([]*Alert, error) {
	return d.queryAlerts("SELECT id, severity, category, message, port, details, acknowledged, timestamp FROM alerts WHERE acknowledged = 0 ORDER BY id DESC")
}

// ListAlerts returns recent alerts, newest first.
func (d *DB) ListAlerts(limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	return d.queryAlerts("SELECT id, severity, category, message, port, details, acknowledged, timestamp FROM alerts ORDER BY id DESC LIMIT ?", limit)
}

// AcknowledgeAlert marks an alert as handled.
func (d *DB) AcknowledgeAlert(id int64) error {
	_, err := d.conn.Exec("UPDATE alerts SET acknowledged = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert %d: %w", id, err)
	}
	return nil
}

func (d *DB) queryAlerts(query string, args ...any) ([]*Alert, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		var a Alert
		var port sql.NullInt64
		var details sql.NullString
		if err := rows.Scan(&a.ID, &a.Severity, &a.Category, &a.Message, &port, &details, &a.Acknowledged, &a.Timestamp); err != nil {
			return nil, err
		}
		if port.Valid {
			p := int(port.Int64)
			a.Port = &p
		}
		a.Details = details.String
		out = append(out, &a)
	}
	return out, rows.Err()
}
