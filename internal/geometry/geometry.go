// Package geometry holds the canonical coordinate and geometry types used by
// the enrichment engine, along with CRS normalization and parsing of feature
// service geometry payloads.
package geometry

import "github.com/rotisserie/eris"

// Coordinate is a geographic point in WGS84 degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is within geographic bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Kind discriminates the geometry variants.
type Kind int

const (
	KindPoint Kind = iota + 1
	KindPolyline
	KindPolygon
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindPolyline:
		return "polyline"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Geometry is a tagged variant: exactly one of Point, Paths, or Rings is
// populated depending on Kind. For polygons, Rings[0] is the outer boundary
// and Rings[1:] are holes.
type Geometry struct {
	Kind  Kind           `json:"kind"`
	Point Coordinate     `json:"point,omitzero"`
	Paths [][]Coordinate `json:"paths,omitempty"`
	Rings [][]Coordinate `json:"rings,omitempty"`
}

// GeometryError wraps a per-feature geometry problem (missing or malformed
// rings/paths). Features carrying one are dropped, never fatal.
type GeometryError struct {
	Reason string
	Err    error
}

func (e *GeometryError) Error() string {
	if e.Err != nil {
		return "geometry: " + e.Reason + ": " + e.Err.Error()
	}
	return "geometry: " + e.Reason
}

func (e *GeometryError) Unwrap() error { return e.Err }

// NewGeometryError creates a GeometryError with the given reason.
func NewGeometryError(reason string) *GeometryError {
	return &GeometryError{Reason: reason}
}

// Validate checks structural invariants of the geometry: points must have a
// coordinate, polylines at least one path with two coordinates, polygons at
// least one ring with three coordinates.
func (g Geometry) Validate() error {
	switch g.Kind {
	case KindPoint:
		return nil
	case KindPolyline:
		if len(g.Paths) == 0 {
			return NewGeometryError("polyline has no paths")
		}
		for _, p := range g.Paths {
			if len(p) < 2 {
				return NewGeometryError("polyline path has fewer than 2 coordinates")
			}
		}
		return nil
	case KindPolygon:
		if len(g.Rings) == 0 {
			return NewGeometryError("polygon has no rings")
		}
		for _, r := range g.Rings {
			if len(r) < 3 {
				return NewGeometryError("polygon ring has fewer than 3 coordinates")
			}
		}
		return nil
	default:
		return &GeometryError{Reason: "unknown kind", Err: eris.Errorf("kind %d", int(g.Kind))}
	}
}
