package spreadsheet

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/plot"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

// Events sheet columns.
const (
	colEventID = iota
	colEventTimestamp
	colEventNode
	colEventCrop
	colEventVariety
	colEventBlock
	colEventSector
	colEventHectares
	colEventLat
	colEventLon
	colEventNotes
)

// EventSheet implements sowing.Repository over the events sheet.
type EventSheet struct {
	wb *Workbook
}

// Append writes e as a new row. A row with the same id returns
// sowing.ErrEventExists.
func (s *EventSheet) Append(ctx context.Context, e sowing.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	return s.wb.update(s.wb.eventsSheet, eventsHeader, func(f *excelize.File, rows [][]string) error {
		for _, row := range dataRows(rows) {
			if len(row) > colEventID && row[colEventID] == e.ID {
				return fmt.Errorf("%w: %s", sowing.ErrEventExists, e.ID)
			}
		}

		var lat, lon any = "", ""
		if e.GPS != nil {
			lat, lon = e.GPS.Lat, e.GPS.Lon
		}
		values := []any{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			e.Node,
			e.Crop,
			e.Variety,
			e.Block,
			e.Sector,
			e.ClaimedHectares,
			lat,
			lon,
			e.Notes,
		}
		return writeRow(f, s.wb.eventsSheet, nextRow(rows), values)
	})
}

// List returns the events in row order. Rows that fail the required-field
// checks are logged and skipped.
func (s *EventSheet) List(ctx context.Context) ([]sowing.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	rows, err := s.wb.read(s.wb.eventsSheet, eventColumns)
	if err != nil {
		return nil, err
	}

	events := make([]sowing.Event, 0, len(rows))
	for i, row := range rows {
		e, err := parseEventRow(i, row)
		if err != nil {
			s.wb.logger.Warn("skipping event row", "sheet", s.wb.eventsSheet, "row", i+2, "error", err)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// parseEventRow converts a padded data row. index is the 0-based data row
// and names rows that carry no id.
func parseEventRow(index int, row []string) (sowing.Event, error) {
	ts, err := sowing.ParseTimestamp(row[colEventTimestamp])
	if err != nil {
		return sowing.Event{}, err
	}

	id := strings.TrimSpace(row[colEventID])
	if id == "" {
		id = fmt.Sprintf("registro-%d", index)
	}

	e := sowing.Event{
		ID:              id,
		Timestamp:       ts,
		Node:            row[colEventNode],
		Crop:            row[colEventCrop],
		Variety:         row[colEventVariety],
		Key:             plot.Key{Block: row[colEventBlock], Sector: row[colEventSector]},
		ClaimedHectares: parseFloat(row[colEventHectares]),
		Notes:           row[colEventNotes],
	}

	lat, latOK := parseOptionalFloat(row[colEventLat])
	lon, lonOK := parseOptionalFloat(row[colEventLon])
	if latOK && lonOK {
		e.GPS = &geo.Point{Lat: lat, Lon: lon}
	}

	if err := sowing.Validate(e); err != nil {
		return sowing.Event{}, err
	}
	return e, nil
}

// parseFloat reads a hectare cell. Blanks, text and non-finite values
// read as 0.
func parseFloat(s string) float64 {
	v, ok := parseOptionalFloat(s)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func parseOptionalFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
