package geometry

import "math"

// mercatorRadius is the half-circumference of the spherical web-mercator
// projection plane in meters (pi * 6378137).
const mercatorRadius = 20037508.34

// CRS identifies the coordinate reference system of a raw geometry.
type CRS int

const (
	// CRSGeographic means coordinates are already WGS84 degrees.
	CRSGeographic CRS = iota + 1
	// CRSWebMercator means coordinates look like projected meters.
	CRSWebMercator
)

// DetectCRS classifies a geometry by coordinate magnitude: any |x| > 180 or
// |y| > 90 means the values cannot be degrees, so the geometry is treated as
// web-mercator. The heuristic is ambiguous for projected points very close to
// the origin; such features are carried through as geographic.
func DetectCRS(g Geometry) CRS {
	projected := false
	eachCoord(g, func(c Coordinate) {
		if math.Abs(c.Lon) > 180 || math.Abs(c.Lat) > 90 {
			projected = true
		}
	})
	if projected {
		return CRSWebMercator
	}
	return CRSGeographic
}

// ToWGS84 converts spherical web-mercator meters to WGS84 degrees.
func ToWGS84(x, y float64) Coordinate {
	lon := x / mercatorRadius * 180
	lat := y / mercatorRadius * 180
	lat = 180 / math.Pi * (2*math.Atan(math.Exp(lat*math.Pi/180)) - math.Pi/2)
	return Coordinate{Lat: lat, Lon: lon}
}

// FromWGS84 converts WGS84 degrees to spherical web-mercator meters.
func FromWGS84(c Coordinate) (x, y float64) {
	x = c.Lon * mercatorRadius / 180
	y = math.Log(math.Tan((90+c.Lat)*math.Pi/360)) / (math.Pi / 180) * mercatorRadius / 180
	return x, y
}

// Normalize returns a copy of g with every coordinate in WGS84 degrees.
// Geometries already detected as geographic are returned unchanged.
func Normalize(g Geometry) Geometry {
	if DetectCRS(g) == CRSGeographic {
		return g
	}
	return mapCoords(g, func(c Coordinate) Coordinate {
		// Raw projected pairs arrive with x in the Lon slot and y in Lat.
		return ToWGS84(c.Lon, c.Lat)
	})
}

// eachCoord visits every coordinate in the geometry.
func eachCoord(g Geometry, fn func(Coordinate)) {
	switch g.Kind {
	case KindPoint:
		fn(g.Point)
	case KindPolyline:
		for _, path := range g.Paths {
			for _, c := range path {
				fn(c)
			}
		}
	case KindPolygon:
		for _, ring := range g.Rings {
			for _, c := range ring {
				fn(c)
			}
		}
	}
}

// mapCoords returns a deep copy of g with fn applied to every coordinate.
func mapCoords(g Geometry, fn func(Coordinate) Coordinate) Geometry {
	out := Geometry{Kind: g.Kind}
	switch g.Kind {
	case KindPoint:
		out.Point = fn(g.Point)
	case KindPolyline:
		out.Paths = make([][]Coordinate, len(g.Paths))
		for i, path := range g.Paths {
			out.Paths[i] = make([]Coordinate, len(path))
			for j, c := range path {
				out.Paths[i][j] = fn(c)
			}
		}
	case KindPolygon:
		out.Rings = make([][]Coordinate, len(g.Rings))
		for i, ring := range g.Rings {
			out.Rings[i] = make([]Coordinate, len(ring))
			for j, c := range ring {
				out.Rings[i][j] = fn(c)
			}
		}
	}
	return out
}
