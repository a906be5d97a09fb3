package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for telemetry persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Append-only inserts, one per stream
	InsertTemperature(ctx context.Context, r TemperatureReading) error
	InsertDetection(ctx context.Context, e DetectionEvent) error
	InsertActuatorState(ctx context.Context, s ActuatorState) error

	// Latest-per-room reads
	LatestTemperature(ctx context.Context, room string) (*TemperatureReading, error)
	AllLatestTemperatures(ctx context.Context) ([]TemperatureReading, error)
	LatestDetection(ctx context.Context, room string) (*DetectionEvent, error)
	AllLatestDetections(ctx context.Context) ([]DetectionEvent, error)
	LatestActuatorState(ctx context.Context, kind, room string) (*ActuatorState, error)
	AllLatestActuatorStates(ctx context.Context, kind string) ([]ActuatorState, error)
}

// SQLiteRepository implements Repository using SQLite.
//
// Every table is append-only; "latest" queries pick the row with the
// highest id per room, so insertion order is the ordering key rather
// than device-reported timestamps (which may lag or repeat).
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InsertTemperature appends one temperature sample.
func (r *SQLiteRepository) InsertTemperature(ctx context.Context, reading TemperatureReading) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO temperature_readings (room, temp_f, recorded_at) VALUES (?, ?, ?)`,
		reading.Room,
		reading.TempF,
		reading.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting temperature reading: %w", err)
	}
	return nil
}

// InsertDetection appends one person-detection sample.
func (r *SQLiteRepository) InsertDetection(ctx context.Context, event DetectionEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO detection_events (room, detected, confidence, detected_at) VALUES (?, ?, ?, ?)`,
		event.Room,
		boolToInt(event.Detected),
		event.Confidence,
		event.DetectedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting detection event: %w", err)
	}
	return nil
}

// InsertActuatorState appends one heater or fan status report.
func (r *SQLiteRepository) InsertActuatorState(ctx context.Context, state ActuatorState) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO actuator_states (room, kind, status, recorded_at) VALUES (?, ?, ?, ?)`,
		state.Room,
		state.Kind,
		boolToInt(state.On),
		state.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting actuator state: %w", err)
	}
	return nil
}

// LatestTemperature returns the most recent sample for a room.
func (r *SQLiteRepository) LatestTemperature(ctx context.Context, room string) (*TemperatureReading, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, room, temp_f, recorded_at FROM temperature_readings
		 WHERE room = ? ORDER BY id DESC LIMIT 1`, room)

	reading, err := scanTemperature(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReadings
		}
		return nil, fmt.Errorf("querying latest temperature: %w", err)
	}
	return reading, nil
}

// AllLatestTemperatures returns the most recent sample for every room.
func (r *SQLiteRepository) AllLatestTemperatures(ctx context.Context) ([]TemperatureReading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room, temp_f, recorded_at FROM temperature_readings
		 WHERE id IN (SELECT MAX(id) FROM temperature_readings GROUP BY room)
		 ORDER BY room`)
	if err != nil {
		return nil, fmt.Errorf("querying latest temperatures: %w", err)
	}
	defer rows.Close()

	var readings []TemperatureReading
	for rows.Next() {
		reading, err := scanTemperature(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning temperature row: %w", err)
		}
		readings = append(readings, *reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating temperature rows: %w", err)
	}
	return readings, nil
}

// LatestDetection returns the most recent detection for a room.
func (r *SQLiteRepository) LatestDetection(ctx context.Context, room string) (*DetectionEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, room, detected, confidence, detected_at FROM detection_events
		 WHERE room = ? ORDER BY id DESC LIMIT 1`, room)

	event, err := scanDetection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReadings
		}
		return nil, fmt.Errorf("querying latest detection: %w", err)
	}
	return event, nil
}

// AllLatestDetections returns the most recent detection for every room.
func (r *SQLiteRepository) AllLatestDetections(ctx context.Context) ([]DetectionEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room, detected, confidence, detected_at FROM detection_events
		 WHERE id IN (SELECT MAX(id) FROM detection_events GROUP BY room)
		 ORDER BY room`)
	if err != nil {
		return nil, fmt.Errorf("querying latest detections: %w", err)
	}
	defer rows.Close()

	var events []DetectionEvent
	for rows.Next() {
		event, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning detection row: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating detection rows: %w", err)
	}
	return events, nil
}

// LatestActuatorState returns the most recent state of one actuator kind
// in a room.
func (r *SQLiteRepository) LatestActuatorState(ctx context.Context, kind, room string) (*ActuatorState, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, room, kind, status, recorded_at FROM actuator_states
		 WHERE kind = ? AND room = ? ORDER BY id DESC LIMIT 1`, kind, room)

	state, err := scanActuatorState(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReadings
		}
		return nil, fmt.Errorf("querying latest actuator state: %w", err)
	}
	return state, nil
}

// AllLatestActuatorStates returns the most recent state of one actuator
// kind for every room.
func (r *SQLiteRepository) AllLatestActuatorStates(ctx context.Context, kind string) ([]ActuatorState, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room, kind, status, recorded_at FROM actuator_states
		 WHERE id IN (SELECT MAX(id) FROM actuator_states WHERE kind = ? GROUP BY room)
		 ORDER BY room`, kind)
	if err != nil {
		return nil, fmt.Errorf("querying latest actuator states: %w", err)
	}
	defer rows.Close()

	var states []ActuatorState
	for rows.Next() {
		state, err := scanActuatorState(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning actuator row: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actuator rows: %w", err)
	}
	return states, nil
}

// scanner abstracts sql.Row and sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanTemperature(s scanner) (*TemperatureReading, error) {
	var r TemperatureReading
	var recordedAt string
	if err := s.Scan(&r.ID, &r.Room, &r.TempF, &recordedAt); err != nil {
		return nil, err
	}
	r.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck // Format is controlled
	return &r, nil
}

func scanDetection(s scanner) (*DetectionEvent, error) {
	var e DetectionEvent
	var detected int
	var detectedAt string
	if err := s.Scan(&e.ID, &e.Room, &detected, &e.Confidence, &detectedAt); err != nil {
		return nil, err
	}
	e.Detected = detected != 0
	e.DetectedAt, _ = time.Parse(time.RFC3339, detectedAt) //nolint:errcheck // Format is controlled
	return &e, nil
}

func scanActuatorState(s scanner) (*ActuatorState, error) {
	var a ActuatorState
	var status int
	var recordedAt string
	if err := s.Scan(&a.ID, &a.Room, &a.Kind, &status, &recordedAt); err != nil {
		return nil, err
	}
	a.On = status != 0
	a.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck // Format is controlled
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
