package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/torqcare/torqcare-diagnosis/internal/models"
)

// Store keeps a bounded window of sensor readings for trend queries and a
// write-only diagnosis log. The log is never read back for decisions.
type Store struct {
	log *slog.Logger
	db  *sql.DB
}

// New opens (or creates) the SQLite database at dbPath.
func New(logger *slog.Logger, dbPath string) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{log: logger, db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vehicle_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_readings_vehicle_timestamp ON readings(vehicle_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_readings_created_at ON readings(created_at);

	CREATE TABLE IF NOT EXISTS diagnoses (
		diagnosis_id TEXT PRIMARY KEY,
		vehicle_id TEXT NOT NULL,
		severity TEXT NOT NULL,
		component TEXT NOT NULL,
		failure_probability REAL NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_diagnoses_vehicle ON diagnoses(vehicle_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveReading appends one reading to the history window.
func (s *Store) SaveReading(ctx context.Context, reading models.SensorReading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO readings (vehicle_id, timestamp, payload_json, created_at) VALUES (?, ?, ?, ?)`,
		reading.VehicleID,
		reading.Timestamp.UTC().Format(time.RFC3339),
		string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// RecentReadings returns up to limit readings for a vehicle, newest first.
func (s *Store) RecentReadings(ctx context.Context, vehicleID string, limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload_json FROM readings WHERE vehicle_id = ? ORDER BY timestamp DESC LIMIT ?`,
		vehicleID, limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var readings []models.SensorReading
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		var reading models.SensorReading
		if err := json.Unmarshal([]byte(payload), &reading); err != nil {
			return nil, fmt.Errorf("decode reading: %w", err)
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// LogDiagnosis records a composed diagnosis for audit. Failures here are the
// caller's to ignore: logging must never fail a diagnosis response.
func (s *Store) LogDiagnosis(ctx context.Context, result models.DiagnosisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal diagnosis: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diagnoses (diagnosis_id, vehicle_id, severity, component, failure_probability, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.DiagnosisID,
		result.VehicleID,
		string(result.Severity),
		string(result.Component),
		result.FailureProbability,
		string(payload),
		result.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert diagnosis: %w", err)
	}
	return nil
}

// PruneReadings drops readings older than maxAge, keeping the history window
// bounded. Returns the number of rows removed.
func (s *Store) PruneReadings(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM readings WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune readings: %w", err)
	}
	removed, _ := res.RowsAffected()
	if removed > 0 {
		s.log.Debug("pruned reading history", slog.Int64("removed", removed))
	}
	return removed, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
