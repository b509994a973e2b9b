// Package mapview renders painted plots as GeoJSON for map clients.
//
// Each plot becomes a Polygon feature carrying its style. Plots with a
// usable centroid also get a Point feature for the crop label. The
// viewport defaults come from the farm configuration.
package mapview

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/infrastructure/config"
	"github.com/nerrad567/agrosirius-core/internal/reconcile"
)

// Feature kinds, stored in the "kind" property.
const (
	KindPlot  = "plot"
	KindLabel = "label"
)

// Styling applied to every plot polygon.
const (
	strokeOpacity = 0.8
	fillOpacity   = 0.6
	strokeWeight  = 2
)

// Viewport is the initial map position.
type Viewport struct {
	Center  [2]float64 `json:"center"`
	Zoom    int        `json:"zoom"`
	MinZoom int        `json:"min_zoom"`
	MaxZoom int        `json:"max_zoom"`
}

// ViewportFrom reads the map defaults out of the farm configuration.
func ViewportFrom(cfg config.MapConfig) Viewport {
	return Viewport{
		Center:  [2]float64{cfg.CenterLat, cfg.CenterLon},
		Zoom:    cfg.Zoom,
		MinZoom: cfg.MinZoom,
		MaxZoom: cfg.MaxZoom,
	}
}

// FeatureCollection converts plots to GeoJSON, preserving their order.
//
// A plot with fewer than three vertices still yields its polygon feature
// (with an empty ring) so clients can list it, but never a label.
func FeatureCollection(plots []reconcile.PaintedPlot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range plots {
		fc.Append(polygonFeature(p))
		if hasLabel(p) {
			fc.Append(labelFeature(p))
		}
	}
	return fc
}

func polygonFeature(p reconcile.PaintedPlot) *geojson.Feature {
	polygon := orb.Polygon{}
	if len(p.Vertices) >= geo.MinPolygonVertices {
		polygon = orb.Polygon{geo.ToOrbRing(p.Vertices)}
	}

	f := geojson.NewFeature(polygon)
	f.Properties = baseProperties(p, KindPlot)
	f.Properties["area_hectares"] = p.AreaHectares
	f.Properties["event_count"] = p.EventCount
	f.Properties["fill_color"] = p.Color
	f.Properties["stroke_color"] = p.Color
	f.Properties["fill_opacity"] = fillOpacity
	f.Properties["stroke_opacity"] = strokeOpacity
	f.Properties["stroke_weight"] = strokeWeight

	if p.Variety != nil {
		f.Properties["variety"] = *p.Variety
	}
	if p.LastEventAt != nil {
		f.Properties["last_event_at"] = p.LastEventAt.UTC().Format(time.RFC3339)
	}
	return f
}

func labelFeature(p reconcile.PaintedPlot) *geojson.Feature {
	f := geojson.NewFeature(geo.ToOrbPoint(p.Centroid))
	f.Properties = baseProperties(p, KindLabel)
	return f
}

func baseProperties(p reconcile.PaintedPlot, kind string) geojson.Properties {
	props := geojson.Properties{
		"kind":   kind,
		"block":  p.Block,
		"sector": p.Sector,
		"color":  p.Color,
		"sown":   p.IsSown(),
	}
	if p.Crop != nil {
		props["crop"] = *p.Crop
	}
	if p.Emoji != nil {
		props["emoji"] = *p.Emoji
	}
	return props
}

// hasLabel reports whether the centroid is worth drawing. (0,0) is the
// empty-input sentinel and is never labelled.
func hasLabel(p reconcile.PaintedPlot) bool {
	return len(p.Vertices) >= geo.MinPolygonVertices && !p.Centroid.IsZero()
}
