package spreadsheet

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/nerrad567/agrosirius-core/internal/infrastructure/config"
)

// Header rows written when a sheet is created.
var (
	eventsHeader   = []any{"ID", "Timestamp", "Nodo", "Cultivo", "Variedad", "Lote", "Sector", "Hectareas", "GPS Lat", "GPS Lon", "Notas"}
	boundaryHeader = []any{"Lote", "Sector", "Cultivo", "Variedad", "Hectareas", "PolygonCoords", "Color", "CreatedAt"}
)

const (
	eventColumns    = 11
	boundaryColumns = 8
)

// Logger defines the logging interface used by the workbook.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Workbook is a farm store backed by one .xlsx file.
type Workbook struct {
	path          string
	eventsSheet   string
	boundarySheet string

	mu     sync.Mutex
	logger Logger
}

// Open returns a workbook store for cfg.Path. The file need not exist
// yet; it is created on the first write.
func Open(cfg config.WorkbookConfig) (*Workbook, error) {
	if cfg.Path == "" {
		return nil, errors.New("workbook path is required")
	}
	w := &Workbook{
		path:          cfg.Path,
		eventsSheet:   cfg.EventsSheet,
		boundarySheet: cfg.BoundarySheet,
		logger:        noopLogger{},
	}
	if w.eventsSheet == "" {
		w.eventsSheet = "Sheet1"
	}
	if w.boundarySheet == "" {
		w.boundarySheet = "Lotes Definidos"
	}
	return w, nil
}

// SetLogger sets the logger used to report skipped rows.
func (w *Workbook) SetLogger(logger Logger) {
	w.logger = logger
}

// Path returns the workbook file path.
func (w *Workbook) Path() string {
	return w.path
}

// Boundaries returns the boundary sheet as a plot.Repository.
func (w *Workbook) Boundaries() *BoundarySheet {
	return &BoundarySheet{wb: w}
}

// Events returns the events sheet as a sowing.Repository.
func (w *Workbook) Events() *EventSheet {
	return &EventSheet{wb: w}
}

// read opens the file and returns the padded data rows of sheet, header
// excluded. A missing file or sheet reads as empty.
func (w *Workbook) read(sheet string, width int) ([][]string, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return [][]string{}, nil
		}
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only

	rows, err := f.GetRows(sheet)
	if err != nil {
		var missing excelize.ErrSheetNotExist
		if errors.As(err, &missing) {
			return [][]string{}, nil
		}
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return [][]string{}, nil
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		data = append(data, pad(row, width))
	}
	return data, nil
}

// update opens (or creates) the file, makes sure sheet exists with its
// header, runs fn and saves.
func (w *Workbook) update(sheet string, header []any, fn func(f *excelize.File, rows [][]string) error) error {
	f, err := w.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // Saved below

	if err := ensureSheet(f, sheet, header); err != nil {
		return err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if err := fn(f, rows); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// openOrCreate opens the file, or starts a new one if it does not exist.
// A new file already has a "Sheet1", the default events sheet.
func (w *Workbook) openOrCreate() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), nil
	}
	return nil, fmt.Errorf("opening workbook: %w", err)
}

func ensureSheet(f *excelize.File, sheet string, header []any) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("looking up sheet %q: %w", sheet, err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %q: %w", sheet, err)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return writeRow(f, sheet, 1, header)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d of %q: %w", row, sheet, err)
	}
	return nil
}

// pad extends row to width with empty cells; GetRows trims trailing blanks.
func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
