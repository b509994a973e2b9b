package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/agrosirius-core/internal/aggregate"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

// eventFilter reads the crop and node query parameters.
func eventFilter(r *http.Request) (cropName, node string) {
	q := r.URL.Query()
	return q.Get("crop"), q.Get("node")
}

// handleListEvents returns ledger events, optionally filtered by crop and node.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.ledger.ListEvents(r.Context())
	if err != nil {
		s.logger.Error("listing events failed", "error", err)
		writeInternalError(w, "failed to list events")
		return
	}

	cropName, node := eventFilter(r)
	filtered := aggregate.FilterEvents(events, cropName, node)

	writeJSON(w, http.StatusOK, map[string]any{
		"events":           filtered,
		"count":            len(filtered),
		"claimed_hectares": aggregate.ClaimedHectares(filtered),
	})
}

// handleCreateEvent records a sowing report submitted over HTTP.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var report sowing.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	event, err := s.ledger.Record(r.Context(), report)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		s.logger.Error("recording event failed", "node", report.Node, "error", err)
		writeInternalError(w, "failed to record event")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}
