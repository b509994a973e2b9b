// Package geo holds the pure geometry used to paint the farm map: polygon
// centroid, spherical polygon area in hectares, and GPS range checks.
//
// Nothing here fails. Degenerate input degrades to a defined value (zero
// area, the (0, 0) centroid sentinel, an empty vertex list) so that one bad
// boundary never prevents the rest of the map from rendering.
package geo
