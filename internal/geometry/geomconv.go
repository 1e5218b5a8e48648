package geometry

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ToGeom converts a normalized Geometry into a go-geom geometry with SRID
// 4326, for GeoJSON/WKB interop. Coordinates are emitted in lon/lat order.
func ToGeom(g Geometry) (geom.T, error) {
	switch g.Kind {
	case KindPoint:
		return geom.NewPointFlat(geom.XY, []float64{g.Point.Lon, g.Point.Lat}).SetSRID(4326), nil

	case KindPolyline:
		mls := geom.NewMultiLineString(geom.XY).SetSRID(4326)
		for _, path := range g.Paths {
			ls := geom.NewLineStringFlat(geom.XY, flatCoords(path))
			if err := mls.Push(ls); err != nil {
				return nil, eris.Wrap(err, "geometry: push linestring")
			}
		}
		return mls, nil

	case KindPolygon:
		poly := geom.NewPolygon(geom.XY).SetSRID(4326)
		for _, ring := range g.Rings {
			closed := closeRing(ring)
			lr := geom.NewLinearRingFlat(geom.XY, flatCoords(closed))
			if err := poly.Push(lr); err != nil {
				return nil, eris.Wrap(err, "geometry: push ring")
			}
		}
		return poly, nil

	default:
		return nil, eris.Errorf("geometry: cannot convert kind %d", int(g.Kind))
	}
}

// closeRing appends the first coordinate when the ring is not closed, which
// go-geom linear rings require.
func closeRing(ring []Coordinate) []Coordinate {
	if len(ring) == 0 || ring[0] == ring[len(ring)-1] {
		return ring
	}
	out := make([]Coordinate, len(ring)+1)
	copy(out, ring)
	out[len(ring)] = ring[0]
	return out
}

func flatCoords(coords []Coordinate) []float64 {
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		flat = append(flat, c.Lon, c.Lat)
	}
	return flat
}
