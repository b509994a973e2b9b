package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// EarthRadius is the spherical Earth radius in metres used for area.
const EarthRadius = 6371000.0

const squareMetresPerHectare = 10000.0

// MinPolygonVertices is the fewest vertices that enclose an area.
const MinPolygonVertices = 3

// Point is a geographic position in decimal degrees.
//
// Its JSON form is the two-element array [lat, lon], matching the
// coordinate pairs map clients draw with.
type Point struct {
	Lat float64
	Lon float64
}

// IsZero reports whether p is the (0, 0) sentinel returned by Centroid
// for an empty vertex list.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}

// MarshalJSON encodes p as [lat, lon].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lon})
}

var errPointArity = errors.New("coordinate must be a [lat, lon] pair")

// UnmarshalJSON decodes a [lat, lon] pair. Any other arity is an error.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decoding coordinate: %w", err)
	}
	if len(pair) != 2 {
		return errPointArity
	}
	p.Lat, p.Lon = pair[0], pair[1]
	return nil
}

// Centroid returns the arithmetic mean of the vertices.
//
// This is not an area-weighted centroid. An empty list yields Point{}.
func Centroid(vertices []Point) Point {
	if len(vertices) == 0 {
		return Point{}
	}
	var sumLat, sumLon float64
	for _, v := range vertices {
		sumLat += v.Lat
		sumLon += v.Lon
	}
	n := float64(len(vertices))
	return Point{Lat: sumLat / n, Lon: sumLon / n}
}

// GeodesicArea returns the area enclosed by the polygon in hectares,
// rounded to two decimals.
//
// The ring is implicitly closed (last vertex joins the first) and the
// result does not depend on winding direction. Fewer than three vertices
// enclose nothing and return 0.
func GeodesicArea(vertices []Point) float64 {
	n := len(vertices)
	if n < MinPolygonVertices {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		p1 := vertices[i]
		p2 := vertices[(i+1)%n]
		sum += radians(p2.Lon-p1.Lon) * (2 + math.Sin(radians(p1.Lat)) + math.Sin(radians(p2.Lat)))
	}

	squareMetres := math.Abs(sum) * EarthRadius * EarthRadius / 2
	return Round2(squareMetres / squareMetresPerHectare)
}

// ValidGPS reports whether p is present and inside the WGS84 ranges.
func ValidGPS(p *Point) bool {
	if p == nil {
		return false
	}
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Round2 rounds x to two decimal places, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ParseVertices decodes stored coordinate text such as
// "[[4.71,-74.07],[4.72,-74.07],[4.72,-74.06]]".
//
// Malformed text (bad JSON, non-numeric values, pairs of the wrong arity)
// yields an empty list rather than an error, so a corrupt record paints as
// a zero-area plot instead of failing the whole map.
func ParseVertices(text string) []Point {
	if text == "" {
		return []Point{}
	}
	var vertices []Point
	if err := json.Unmarshal([]byte(text), &vertices); err != nil {
		return []Point{}
	}
	if vertices == nil {
		return []Point{}
	}
	return vertices
}

// FormatVertices is the inverse of ParseVertices.
func FormatVertices(vertices []Point) string {
	if len(vertices) == 0 {
		return "[]"
	}
	data, err := json.Marshal(vertices)
	if err != nil {
		// Only non-finite floats fail to encode.
		return "[]"
	}
	return string(data)
}

// ToOrbPoint converts p to orb's lon/lat ordering.
func ToOrbPoint(p Point) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// ToOrbRing converts vertices to a closed orb.Ring.
func ToOrbRing(vertices []Point) orb.Ring {
	if len(vertices) == 0 {
		return orb.Ring{}
	}
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, ToOrbPoint(v))
	}
	if !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}
