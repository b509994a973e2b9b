package plot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/geo"
)

// Repository persists plot boundaries.
//
// List must return boundaries in definition order.
type Repository interface {
	Create(ctx context.Context, b Boundary) error
	List(ctx context.Context) ([]Boundary, error)
	Exists(ctx context.Context, k Key) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// SQLiteRepository implements Repository over the plot_boundaries table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a boundary. A second boundary for the same key returns
// ErrDuplicatePlot.
func (r *SQLiteRepository) Create(ctx context.Context, b Boundary) error {
	const query = `INSERT INTO plot_boundaries (block_id, sector_id, vertices, created_at)
		VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		b.Block, b.Sector, geo.FormatVertices(b.Vertices), b.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicatePlot, b.Key)
		}
		return fmt.Errorf("inserting boundary %s: %w", b.Key, err)
	}
	return nil
}

// List returns every boundary in definition order. Coordinate text that
// does not decode yields a boundary with no vertices.
func (r *SQLiteRepository) List(ctx context.Context) ([]Boundary, error) {
	const query = `SELECT block_id, sector_id, vertices, created_at
		FROM plot_boundaries ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying boundaries: %w", err)
	}
	defer rows.Close()

	boundaries := []Boundary{}
	for rows.Next() {
		var b Boundary
		var vertices, createdAt string
		if err := rows.Scan(&b.Block, &b.Sector, &vertices, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning boundary row: %w", err)
		}
		b.Vertices = geo.ParseVertices(vertices)
		b.CreatedAt = parseTime(createdAt)
		boundaries = append(boundaries, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating boundary rows: %w", err)
	}
	return boundaries, nil
}

// Exists reports whether a boundary is defined for k.
func (r *SQLiteRepository) Exists(ctx context.Context, k Key) (bool, error) {
	const query = `SELECT 1 FROM plot_boundaries WHERE block_id = ? AND sector_id = ?`

	var one int
	err := r.db.QueryRowContext(ctx, query, k.Block, k.Sector).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking boundary %s: %w", k, err)
	}
	return true, nil
}

// DeleteAll removes every boundary and returns how many were removed.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plot_boundaries`)
	if err != nil {
		return 0, fmt.Errorf("deleting boundaries: %w", err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	return n, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// parseTime parses a timestamp written by this package or by the schema
// default. Zero time is returned for anything else.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
