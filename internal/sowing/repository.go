package sowing

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/geo"
)

// Repository stores ledger events.
//
// List returns events in the order they were appended.
type Repository interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context) ([]Event, error)
}

// SQLiteRepository implements Repository over the sowing_events table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append inserts e. A repeated id returns ErrEventExists.
func (r *SQLiteRepository) Append(ctx context.Context, e Event) error {
	const query = `INSERT INTO sowing_events (
			id, occurred_at, node, crop, variety, block_id, sector_id,
			claimed_hectares, gps_lat, gps_lon, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var lat, lon sql.NullFloat64
	if e.GPS != nil {
		lat = sql.NullFloat64{Float64: e.GPS.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: e.GPS.Lon, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Node, e.Crop, e.Variety,
		e.Block, e.Sector, e.ClaimedHectares, lat, lon, e.Notes,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrEventExists, e.ID)
		}
		return fmt.Errorf("inserting event %s: %w", e.ID, err)
	}
	return nil
}

// List returns all events in ledger order.
func (r *SQLiteRepository) List(ctx context.Context) ([]Event, error) {
	const query = `SELECT id, occurred_at, node, crop, variety, block_id, sector_id,
			claimed_hectares, gps_lat, gps_lon, notes
		FROM sowing_events ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var occurredAt string
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&e.ID, &occurredAt, &e.Node, &e.Crop, &e.Variety,
			&e.Block, &e.Sector, &e.ClaimedHectares, &lat, &lon, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, occurredAt) //nolint:errcheck // Written by Append
		if lat.Valid && lon.Valid {
			e.GPS = &geo.Point{Lat: lat.Float64, Lon: lon.Float64}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return events, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
