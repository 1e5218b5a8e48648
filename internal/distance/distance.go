// Package distance computes geodesic distances and containment for the
// enrichment engine. Distances are tuned for human-scale proximity decisions
// (feet to miles), not surveying: segments are projected on a local plane and
// only the final hop uses the haversine formula. No rounding happens here;
// presentation layers round at the boundary so sort comparisons never compound
// error.
package distance

import (
	"math"

	"github.com/sitewise/geoenrich/internal/geometry"
)

// EarthRadiusMiles is the mean Earth radius used by the haversine formula.
const EarthRadiusMiles = 3958.8

// degenerateSegment is the squared-degree threshold below which a segment is
// treated as a point.
const degenerateSegment = 1e-18

// Haversine returns the great-circle distance between two coordinates in miles.
func Haversine(a, b geometry.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PointToSegment returns the distance in miles from p to the segment s1-s2.
// The projection parameter is computed on the lat/lon plane, which is an
// acceptable approximation at municipal and regional scale, then the distance
// to the clamped projection point is measured with haversine.
func PointToSegment(p, s1, s2 geometry.Coordinate) float64 {
	dLat := s2.Lat - s1.Lat
	dLon := s2.Lon - s1.Lon
	lenSq := dLat*dLat + dLon*dLon

	if lenSq < degenerateSegment {
		return math.Min(Haversine(p, s1), Haversine(p, s2))
	}

	t := ((p.Lat-s1.Lat)*dLat + (p.Lon-s1.Lon)*dLon) / lenSq
	t = math.Max(0, math.Min(1, t))

	nearest := geometry.Coordinate{
		Lat: s1.Lat + t*dLat,
		Lon: s1.Lon + t*dLon,
	}
	return Haversine(p, nearest)
}

// PointToPolyline returns the minimum distance in miles from p to any segment
// of any path. Returns +Inf for an empty polyline.
func PointToPolyline(p geometry.Coordinate, paths [][]geometry.Coordinate) float64 {
	min := math.Inf(1)
	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			if d := PointToSegment(p, path[i], path[i+1]); d < min {
				min = d
			}
		}
	}
	return min
}

// PointInPolygon reports whether p lies inside the polygon described by
// rings. Ring 0 is the outer boundary; a point inside any hole ring is
// outside the polygon.
func PointInPolygon(p geometry.Coordinate, rings [][]geometry.Coordinate) bool {
	if len(rings) == 0 || !pointInRing(p, rings[0]) {
		return false
	}
	for _, hole := range rings[1:] {
		if pointInRing(p, hole) {
			return false
		}
	}
	return true
}

// pointInRing is the standard ray-casting test against a single ring.
func pointInRing(p geometry.Coordinate, ring []geometry.Coordinate) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lon < (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lon {
			inside = !inside
		}
	}
	return inside
}

// DistanceToPolygonBoundary returns 0 when p is inside the polygon, otherwise
// the minimum distance in miles to any edge of any ring, holes included.
func DistanceToPolygonBoundary(p geometry.Coordinate, rings [][]geometry.Coordinate) float64 {
	if PointInPolygon(p, rings) {
		return 0
	}
	min := math.Inf(1)
	for _, ring := range rings {
		n := len(ring)
		for i := 0; i < n; i++ {
			// Rings close implicitly: the last edge joins back to ring[0].
			if d := PointToSegment(p, ring[i], ring[(i+1)%n]); d < min {
				min = d
			}
		}
	}
	return min
}
