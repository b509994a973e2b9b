package spreadsheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nerrad567/agrosirius-core/internal/crop"
	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/plot"
)

// Boundary sheet columns.
const (
	colBoundaryBlock = iota
	colBoundarySector
	colBoundaryCrop
	colBoundaryVariety
	colBoundaryHectares
	colBoundaryCoords
	colBoundaryColor
	colBoundaryCreatedAt
)

// BoundarySheet implements plot.Repository over the boundary sheet.
//
// The crop, variety, hectares and colour columns are written for people
// reading the sheet. They are ignored on read: geometry comes from the
// coordinates and crop state from the events sheet.
type BoundarySheet struct {
	wb *Workbook
}

// Create appends a boundary row. A row with the same block and sector
// returns plot.ErrDuplicatePlot.
func (s *BoundarySheet) Create(ctx context.Context, b plot.Boundary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	return s.wb.update(s.wb.boundarySheet, boundaryHeader, func(f *excelize.File, rows [][]string) error {
		for _, row := range dataRows(rows) {
			row = pad(row, boundaryColumns)
			if row[colBoundaryBlock] == b.Block && row[colBoundarySector] == b.Sector {
				return fmt.Errorf("%w: %s", plot.ErrDuplicatePlot, b.Key)
			}
		}

		values := []any{
			b.Block,
			b.Sector,
			"",
			"",
			geo.GeodesicArea(b.Vertices),
			geo.FormatVertices(b.Vertices),
			crop.NeutralColor,
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		return writeRow(f, s.wb.boundarySheet, nextRow(rows), values)
	})
}

// List returns boundaries in row order. Rows without a block or sector
// are skipped; unreadable coordinates give an empty vertex list.
func (s *BoundarySheet) List(ctx context.Context) ([]plot.Boundary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	rows, err := s.wb.read(s.wb.boundarySheet, boundaryColumns)
	if err != nil {
		return nil, err
	}

	boundaries := make([]plot.Boundary, 0, len(rows))
	for i, row := range rows {
		key := plot.Key{Block: row[colBoundaryBlock], Sector: row[colBoundarySector]}
		if strings.TrimSpace(key.Block) == "" || strings.TrimSpace(key.Sector) == "" {
			s.wb.logger.Warn("skipping boundary row without a key", "sheet", s.wb.boundarySheet, "row", i+2)
			continue
		}
		createdAt, _ := time.Parse(time.RFC3339, strings.TrimSpace(row[colBoundaryCreatedAt])) //nolint:errcheck // Zero time on hand-edited rows
		boundaries = append(boundaries, plot.Boundary{
			Key:       key,
			Vertices:  geo.ParseVertices(strings.TrimSpace(row[colBoundaryCoords])),
			CreatedAt: createdAt,
		})
	}
	return boundaries, nil
}

// Exists reports whether a row for k is present.
func (s *BoundarySheet) Exists(ctx context.Context, k plot.Key) (bool, error) {
	boundaries, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range boundaries {
		if b.Key == k {
			return true, nil
		}
	}
	return false, nil
}

// DeleteAll removes every boundary row and keeps the header.
func (s *BoundarySheet) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	var removed int64
	err := s.wb.update(s.wb.boundarySheet, boundaryHeader, func(f *excelize.File, rows [][]string) error {
		for r := len(rows); r >= 2; r-- {
			if err := f.RemoveRow(s.wb.boundarySheet, r); err != nil {
				return fmt.Errorf("removing row %d: %w", r, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// dataRows drops the header from rows as returned by GetRows.
func dataRows(rows [][]string) [][]string {
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}

// nextRow is the 1-based row number after the last used one.
func nextRow(rows [][]string) int {
	return len(rows) + 1
}
