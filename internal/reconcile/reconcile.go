// Package reconcile joins surveyed plot boundaries with the sowing ledger.
//
// Boundaries own the geometry and events own the current crop. Reconcile
// is a pure function of the two snapshots it is given: it performs no I/O,
// keeps no state between calls and is safe to call from any goroutine.
package reconcile

import (
	"sort"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/crop"
	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/plot"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

// PaintedPlot is a boundary annotated with its reconciled crop state.
//
// Crop, Variety, Emoji and LastEventAt are nil for a plot with no matching
// events. AreaHectares always comes from the vertices.
type PaintedPlot struct {
	plot.Key
	Vertices     []geo.Point `json:"vertices"`
	Centroid     geo.Point   `json:"centroid"`
	AreaHectares float64     `json:"area_hectares"`
	Crop         *string     `json:"crop"`
	Variety      *string     `json:"variety"`
	Emoji        *string     `json:"emoji"`
	Color        string      `json:"color"`
	EventCount   int         `json:"event_count"`
	LastEventAt  *time.Time  `json:"last_event_at"`
}

// IsSown reports whether any event matched the plot.
func (p PaintedPlot) IsSown() bool {
	return p.Crop != nil
}

// Reconcile paints each boundary, in registry order, with the crop of its
// most recent matching event.
//
// Events match on exact block and sector strings. Among matches the
// latest timestamp wins and equal timestamps keep ledger order. Events
// whose key names no boundary are ignored.
func Reconcile(boundaries []plot.Boundary, events []sowing.Event) []PaintedPlot {
	byKey := make(map[plot.Key][]sowing.Event, len(boundaries))
	for _, e := range events {
		byKey[e.Key] = append(byKey[e.Key], e)
	}

	painted := make([]PaintedPlot, 0, len(boundaries))
	for _, b := range boundaries {
		painted = append(painted, paint(b, byKey[b.Key]))
	}
	return painted
}

func paint(b plot.Boundary, matches []sowing.Event) PaintedPlot {
	vertices := make([]geo.Point, len(b.Vertices))
	copy(vertices, b.Vertices)

	p := PaintedPlot{
		Key:          b.Key,
		Vertices:     vertices,
		Centroid:     geo.Centroid(vertices),
		AreaHectares: geo.GeodesicArea(vertices),
		Color:        crop.NeutralColor,
	}
	if len(matches) == 0 {
		return p
	}

	latest := latestEvent(matches)
	style := crop.Lookup(latest.Crop)
	name, variety, emoji := latest.Crop, latest.Variety, style.Emoji
	at := latest.Timestamp

	p.Crop = &name
	p.Variety = &variety
	p.Emoji = &emoji
	p.Color = style.Color
	p.EventCount = len(matches)
	p.LastEventAt = &at
	return p
}

// latestEvent returns the newest event, preferring the earliest in ledger
// order on a tie. matches must not be empty.
func latestEvent(matches []sowing.Event) sowing.Event {
	sorted := make([]sowing.Event, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted[0]
}
