package sowing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/plot"
)

// Event is one accepted sowing report.
//
// ClaimedHectares is what the crew reported. It is kept for the ledger's
// own statistics and never used for plot area, which always comes from
// the surveyed boundary.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Node      string    `json:"node"`
	Crop      string    `json:"crop"`
	Variety   string    `json:"variety"`
	plot.Key
	ClaimedHectares float64    `json:"claimed_hectares"`
	GPS             *geo.Point `json:"gps,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// HasValidGPS reports whether the event carries an in-range position.
func (e Event) HasValidGPS() bool {
	return geo.ValidGPS(e.GPS)
}

// Report is the wire form a field node sends.
type Report struct {
	ID        string   `json:"id,omitempty"`
	Timestamp string   `json:"timestamp"`
	Node      string   `json:"node"`
	Crop      string   `json:"crop"`
	Variety   string   `json:"variety"`
	Block     string   `json:"block"`
	Sector    string   `json:"sector"`
	Hectares  float64  `json:"hectares"`
	GPSLat    *float64 `json:"gps_lat,omitempty"`
	GPSLon    *float64 `json:"gps_lon,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads the timestamp forms field nodes are known to send.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", ErrInvalidEvent, s)
}

// Event validates the report and converts it. A missing id is replaced
// with a new UUID. Block and sector are copied exactly as sent.
func (r Report) Event() (Event, error) {
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return Event{}, err
	}

	e := Event{
		ID:              strings.TrimSpace(r.ID),
		Timestamp:       ts,
		Node:            r.Node,
		Crop:            r.Crop,
		Variety:         r.Variety,
		Key:             plot.Key{Block: r.Block, Sector: r.Sector},
		ClaimedHectares: r.Hectares,
		Notes:           r.Notes,
	}
	if r.GPSLat != nil && r.GPSLon != nil {
		e.GPS = &geo.Point{Lat: *r.GPSLat, Lon: *r.GPSLon}
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	if err := Validate(e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Validate performs the required-field checks for an event.
func Validate(e Event) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidEvent)
	}
	if strings.TrimSpace(e.Crop) == "" {
		return fmt.Errorf("%w: crop is required", ErrInvalidEvent)
	}
	if err := plot.ValidateKey(e.Key, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if math.IsNaN(e.ClaimedHectares) || math.IsInf(e.ClaimedHectares, 0) || e.ClaimedHectares < 0 {
		return fmt.Errorf("%w: claimed hectares must be a non-negative number", ErrInvalidEvent)
	}
	return nil
}
