package api

import (
	"net/http"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/aggregate"
)

// nodeStatsResponse is the body of GET /stats/nodes.
type nodeStatsResponse struct {
	Nodes           []aggregate.NodeStats `json:"nodes"`
	Crops           []string              `json:"crops"`
	Events          int                   `json:"events"`
	ClaimedHectares float64               `json:"claimed_hectares"`
	LatestEventAt   *time.Time            `json:"latest_event_at"`
}

// handleNodeStats returns ledger statistics per field node. The crop and
// node filters apply before grouping.
//
// Hectares here are what crews claimed, not surveyed area.
func (s *Server) handleNodeStats(w http.ResponseWriter, r *http.Request) {
	events, err := s.ledger.ListEvents(r.Context())
	if err != nil {
		s.logger.Error("listing events failed", "error", err)
		writeInternalError(w, "failed to list events")
		return
	}

	cropName, node := eventFilter(r)
	filtered := aggregate.FilterEvents(events, cropName, node)

	resp := nodeStatsResponse{
		Nodes:           aggregate.ByNode(filtered),
		Crops:           aggregate.UniqueCrops(filtered),
		Events:          len(filtered),
		ClaimedHectares: aggregate.ClaimedHectares(filtered),
	}
	if latest, ok := aggregate.LatestEvent(filtered); ok {
		at := latest.Timestamp
		resp.LatestEventAt = &at
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTimeline returns the number of reports per day, oldest first.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := s.ledger.ListEvents(r.Context())
	if err != nil {
		s.logger.Error("listing events failed", "error", err)
		writeInternalError(w, "failed to list events")
		return
	}

	cropName, node := eventFilter(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"days": aggregate.Timeline(aggregate.FilterEvents(events, cropName, node)),
	})
}
