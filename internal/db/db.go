package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultPath is the default history database location
const DefaultPath = "/var/lib/calypso/history.db"

// DB wraps the SQLite history database connection
type DB struct {
	conn *sql.DB
	path string
}

// New opens or creates the SQLite database at the given path
func New(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Get current version
	var version int
	err = d.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return err
	}

	migrations := []string{schemaV1}
	for i, migration := range migrations {
		target := i + 1
		if version >= target {
			continue
		}
		if _, err := d.conn.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", target, err)
		}
		if _, err := d.conn.Exec("INSERT INTO schema_version (version) VALUES (?)", target); err != nil {
			return err
		}
	}

	return nil
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS polls (
    id INTEGER PRIMARY KEY,
    session_id TEXT NOT NULL,
    port INTEGER NOT NULL,
    port_rx INTEGER NOT NULL DEFAULT 0,
    bad_tlp INTEGER NOT NULL DEFAULT 0,
    bad_dllp INTEGER NOT NULL DEFAULT 0,
    rec_diag INTEGER NOT NULL DEFAULT 0,
    link_down INTEGER NOT NULL DEFAULT 0,
    flit_error INTEGER NOT NULL DEFAULT 0,
    total_errors INTEGER NOT NULL DEFAULT 0,
    critical INTEGER NOT NULL DEFAULT 0,
    timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_polls_session ON polls(session_id);
CREATE INDEX IF NOT EXISTS idx_polls_port ON polls(port);

CREATE TABLE IF NOT EXISTS compliance_reports (
    id TEXT PRIMARY KEY,
    session_id TEXT,
    overall_compliant INTEGER NOT NULL,
    score REAL NOT NULL,
    report TEXT NOT NULL,
    generated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS alerts (
    id INTEGER PRIMARY KEY,
    severity TEXT NOT NULL,
    category TEXT NOT NULL,
    message TEXT NOT NULL,
    port INTEGER,
    details TEXT,
    acknowledged INTEGER NOT NULL DEFAULT 0,
    timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_alerts_ack ON alerts(acknowledged);
`
