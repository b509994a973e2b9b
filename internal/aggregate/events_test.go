package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nerrad567/agrosirius-core/internal/crop"
	"github.com/nerrad567/agrosirius-core/internal/plot"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

func report(id, node, cropName string, hectares float64, at time.Time) sowing.Event {
	return sowing.Event{
		ID:              id,
		Timestamp:       at,
		Node:            node,
		Crop:            cropName,
		Key:             plot.Key{Block: "Lote 1", Sector: "Sector A"},
		ClaimedHectares: hectares,
	}
}

func ledgerEvents() []sowing.Event {
	return []sowing.Event{
		report("e1", "node-b", crop.Coffee, 3, time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)),
		report("e2", "node-a", crop.Cacao, 1, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)),
		report("e3", "node-b", crop.Cacao, 1, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		report("e4", "", crop.Citrus, 0, time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC)),
	}
}

func TestFilterEvents(t *testing.T) {
	tests := []struct {
		name    string
		crop    string
		node    string
		wantIDs []string
	}{
		{"no filter", "", "", []string{"e1", "e2", "e3", "e4"}},
		{"by crop", crop.Cacao, "", []string{"e2", "e3"}},
		{"by node", "", "node-b", []string{"e1", "e3"}},
		{"both", crop.Cacao, "node-b", []string{"e3"}},
		{"no match", "Aguacate", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := []string{}
			for _, e := range FilterEvents(ledgerEvents(), tt.crop, tt.node) {
				ids = append(ids, e.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("FilterEvents() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUniqueNodesAndCrops(t *testing.T) {
	if diff := cmp.Diff([]string{"node-a", "node-b"}, UniqueNodes(ledgerEvents())); diff != "" {
		t.Errorf("UniqueNodes() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Cacao", "Café", "Cítricos"}, UniqueCrops(ledgerEvents())); diff != "" {
		t.Errorf("UniqueCrops() mismatch (-want +got):\n%s", diff)
	}
}

func TestClaimedHectares(t *testing.T) {
	if got := ClaimedHectares(ledgerEvents()); got != 5 {
		t.Errorf("ClaimedHectares() = %v, want 5", got)
	}
	if got := ClaimedHectares(nil); got != 0 {
		t.Errorf("ClaimedHectares(nil) = %v, want 0", got)
	}
}

func TestLatestEvent(t *testing.T) {
	got, ok := LatestEvent(ledgerEvents())
	if !ok || got.ID != "e1" {
		t.Errorf("LatestEvent() = %q, %v, want e1, true", got.ID, ok)
	}

	if _, ok := LatestEvent(nil); ok {
		t.Error("LatestEvent(nil) ok = true, want false")
	}
}

func TestByNode(t *testing.T) {
	got := ByNode(ledgerEvents())
	want := []NodeStats{
		{
			Node: "node-a", Events: 1, Hectares: 1, Share: "20%",
			ByCrop: []CropClaim{
				{Crop: crop.Cacao, Hectares: 1, Color: "#6F4E37", Emoji: "🍫", Share: "100%"},
			},
		},
		{
			Node: "node-b", Events: 2, Hectares: 4, Share: "80%",
			ByCrop: []CropClaim{
				{Crop: crop.Coffee, Hectares: 3, Color: "#8B4513", Emoji: "☕", Share: "75%"},
				{Crop: crop.Cacao, Hectares: 1, Color: "#6F4E37", Emoji: "🍫", Share: "25%"},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByNode() mismatch (-want +got):\n%s", diff)
	}
}

func TestClaimsByCrop_Unclassified(t *testing.T) {
	got := ClaimsByCrop([]sowing.Event{report("e1", "n", "", 2, time.Now())})
	want := []CropClaim{{Crop: "Sin clasificar", Hectares: 2, Color: crop.NeutralColor, Emoji: crop.NeutralEmoji, Share: "100%"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ClaimsByCrop() mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeline(t *testing.T) {
	got := Timeline(ledgerEvents())
	want := []DayCount{
		{Date: "2026-02-28", Events: 1},
		{Date: "2026-03-01", Events: 1},
		{Date: "2026-03-02", Events: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Timeline() mismatch (-want +got):\n%s", diff)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		value, total float64
		want         string
	}{
		{0, 0, "0%"},
		{5, 0, "0%"},
		{1, 3, "33%"},
		{2, 3, "67%"},
		{1, 8, "13%"},
		{4, 4, "100%"},
	}
	for _, tt := range tests {
		if got := Percentage(tt.value, tt.total); got != tt.want {
			t.Errorf("Percentage(%v, %v) = %q, want %q", tt.value, tt.total, got, tt.want)
		}
	}
}
