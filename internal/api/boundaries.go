package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/plot"
)

// boundaryRequest is the body of POST /boundaries. Vertices are
// [lat, lon] pairs.
type boundaryRequest struct {
	Block    string      `json:"block"`
	Sector   string      `json:"sector"`
	Vertices []geo.Point `json:"vertices"`
}

// boundaryResponse adds the derived geometry to a stored boundary.
type boundaryResponse struct {
	plot.Key
	Vertices     []geo.Point `json:"vertices"`
	AreaHectares float64     `json:"area_hectares"`
	Centroid     geo.Point   `json:"centroid"`
	CreatedAt    time.Time   `json:"created_at"`
}

func toBoundaryResponse(b plot.Boundary) boundaryResponse {
	return boundaryResponse{
		Key:          b.Key,
		Vertices:     b.Vertices,
		AreaHectares: geo.GeodesicArea(b.Vertices),
		Centroid:     geo.Centroid(b.Vertices),
		CreatedAt:    b.CreatedAt,
	}
}

// handleListBoundaries returns every boundary in definition order.
func (s *Server) handleListBoundaries(w http.ResponseWriter, r *http.Request) {
	boundaries, err := s.registry.ListBoundaries(r.Context())
	if err != nil {
		s.logger.Error("listing boundaries failed", "error", err)
		writeInternalError(w, "failed to list boundaries")
		return
	}

	out := make([]boundaryResponse, 0, len(boundaries))
	for _, b := range boundaries {
		out = append(out, toBoundaryResponse(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"boundaries": out,
		"count":      len(out),
	})
}

// handleCreateBoundary defines a new plot. Invalid geometry or names give
// 400 and an existing plot gives 409.
func (s *Server) handleCreateBoundary(w http.ResponseWriter, r *http.Request) {
	var req boundaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	stored, err := s.registry.Define(r.Context(), plot.Boundary{
		Key:      plot.Key{Block: req.Block, Sector: req.Sector},
		Vertices: req.Vertices,
	})
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		s.logger.Error("defining boundary failed", "block", req.Block, "sector", req.Sector, "error", err)
		writeInternalError(w, "failed to define boundary")
		return
	}

	writeJSON(w, http.StatusCreated, toBoundaryResponse(stored))
}

// handleClearBoundaries removes every boundary. The ledger is untouched.
func (s *Server) handleClearBoundaries(w http.ResponseWriter, r *http.Request) {
	n, err := s.registry.Clear(r.Context())
	if err != nil {
		s.logger.Error("clearing boundaries failed", "error", err)
		writeInternalError(w, "failed to clear boundaries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": n})
}
