package api

import (
	"fmt"
	"net/http"

	"github.com/nerrad567/agrosirius-core/internal/farm"
	"github.com/nerrad567/agrosirius-core/internal/mapview"
	"github.com/nerrad567/agrosirius-core/internal/spreadsheet"
)

const (
	contentTypeGeoJSON = "application/geo+json"
	contentTypeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// snapshot takes a reconciliation pass, writing a 500 on failure.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*farm.Snapshot, bool) {
	snap, err := s.farm.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
		writeInternalError(w, "failed to reconcile plots")
		return nil, false
	}
	return snap, true
}

// handleListPlots returns every painted plot in registry order.
func (s *Server) handleListPlots(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"plots":    snap.Plots,
		"count":    len(snap.Plots),
		"taken_at": snap.TakenAt,
	})
}

// handlePlotsGeoJSON returns the painted plots as a FeatureCollection.
func (s *Server) handlePlotsGeoJSON(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	data, err := mapview.FeatureCollection(snap.Plots).MarshalJSON()
	if err != nil {
		s.logger.Error("encoding geojson failed", "error", err)
		writeInternalError(w, "failed to encode plots")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // Best-effort write to response
}

// handleSummary returns the by-crop, by-block and count views.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":  snap.Summary,
		"taken_at": snap.TakenAt,
	})
}

// handleReport streams the current snapshot as an .xlsx workbook.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("agrosirius-%s.xlsx", snap.TakenAt.Format("20060102-150405"))
	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Last-Modified", snap.TakenAt.Format(http.TimeFormat))

	if err := spreadsheet.WriteReport(w, snap.Plots, snap.Summary); err != nil {
		// Headers are gone by now; the client sees a truncated file.
		s.logger.Error("writing report failed", "error", err)
	}
}
