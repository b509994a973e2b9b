package api

import (
	"net/http"

	"github.com/nerrad567/agrosirius-core/internal/crop"
	"github.com/nerrad567/agrosirius-core/internal/mapview"
)

// farmResponse describes the farm to map clients.
type farmResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Viewport      mapview.Viewport `json:"viewport"`
	StrictNames   bool             `json:"strict_names"`
	BlockOptions  []string         `json:"block_options"`
	SectorOptions []string         `json:"sector_options"`
}

// handleFarm returns the farm identity, map viewport and naming options.
func (s *Server) handleFarm(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, farmResponse{
		ID:            s.farmCfg.ID,
		Name:          s.farmCfg.Name,
		Viewport:      mapview.ViewportFrom(s.farmCfg.Map),
		StrictNames:   s.farmCfg.StrictNames,
		BlockOptions:  s.farmCfg.BlockOptions,
		SectorOptions: s.farmCfg.SectorOptions,
	})
}

type varietyResponse struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

type cropResponse struct {
	crop.Style
	Varieties []varietyResponse `json:"varieties"`
}

// handleListCrops returns the map legend: every known crop with its
// colour, emoji and varieties.
func (s *Server) handleListCrops(w http.ResponseWriter, _ *http.Request) {
	known := crop.Known()
	crops := make([]cropResponse, 0, len(known))
	for _, style := range known {
		entry := cropResponse{Style: style, Varieties: []varietyResponse{}}
		for _, v := range crop.Varieties(style.Name) {
			entry.Varieties = append(entry.Varieties, varietyResponse{Name: v, Emoji: crop.VarietyEmoji(v)})
		}
		crops = append(crops, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"crops":   crops,
		"neutral": crop.NeutralColor,
	})
}
