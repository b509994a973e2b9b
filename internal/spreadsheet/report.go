package spreadsheet

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nerrad567/agrosirius-core/internal/aggregate"
	"github.com/nerrad567/agrosirius-core/internal/reconcile"
)

// Report sheet names.
const (
	ReportPlotsSheet  = "Lotes"
	ReportBlocksSheet = "Bloques"
	ReportCropsSheet  = "Cultivos"
)

var (
	plotsReportHeader  = []any{"Lote", "Sector", "Cultivo", "Variedad", "Hectareas", "Registros", "Ultimo registro", "Color"}
	blocksReportHeader = []any{"Lote", "Hectareas", "Sectores"}
	cropsReportHeader  = []any{"Cultivo", "Hectareas", "Lotes", "Color"}
)

// WriteReport renders a snapshot as an .xlsx workbook to w: one row per
// painted plot, per block and per sown crop.
func WriteReport(w io.Writer, plots []reconcile.PaintedPlot, summary aggregate.Summary) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // In-memory file

	if err := f.SetSheetName("Sheet1", ReportPlotsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{ReportBlocksSheet, ReportCropsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeTable(f, ReportPlotsSheet, bold, plotsReportHeader, plotRows(plots)); err != nil {
		return err
	}
	if err := writeTable(f, ReportBlocksSheet, bold, blocksReportHeader, blockRows(summary.ByBlock)); err != nil {
		return err
	}
	if err := writeTable(f, ReportCropsSheet, bold, cropsReportHeader, cropRows(summary.ByCrop)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling header of %q: %w", sheet, err)
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func plotRows(plots []reconcile.PaintedPlot) [][]any {
	rows := make([][]any, 0, len(plots))
	for _, p := range plots {
		var cropName, variety, last string
		if p.Crop != nil {
			cropName = *p.Crop
		}
		if p.Variety != nil {
			variety = *p.Variety
		}
		if p.LastEventAt != nil {
			last = p.LastEventAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []any{
			p.Block, p.Sector, cropName, variety, p.AreaHectares, p.EventCount, last, p.Color,
		})
	}
	return rows
}

func blockRows(blocks []aggregate.BlockTotal) [][]any {
	rows := make([][]any, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, []any{b.Block, b.AreaHectares, len(b.Sectors)})
	}
	return rows
}

func cropRows(crops []aggregate.CropTotal) [][]any {
	rows := make([][]any, 0, len(crops))
	for _, c := range crops {
		rows = append(rows, []any{c.Crop, c.AreaHectares, c.Plots, c.Color})
	}
	return rows
}
