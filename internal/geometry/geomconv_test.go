package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestToGeom_Point(t *testing.T) {
	g, err := ToGeom(Geometry{Kind: KindPoint, Point: Coordinate{Lat: 43, Lon: -71.5}})
	require.NoError(t, err)
	pt, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{-71.5, 43}, pt.FlatCoords())
	assert.Equal(t, 4326, pt.SRID())
}

func TestToGeom_Polyline(t *testing.T) {
	g, err := ToGeom(Geometry{Kind: KindPolyline, Paths: [][]Coordinate{
		{{Lat: 43, Lon: -71}, {Lat: 43.1, Lon: -71.1}},
		{{Lat: 44, Lon: -72}, {Lat: 44.1, Lon: -72.1}},
	}})
	require.NoError(t, err)
	mls, ok := g.(*geom.MultiLineString)
	require.True(t, ok)
	assert.Equal(t, 2, mls.NumLineStrings())
}

func TestToGeom_PolygonClosesRing(t *testing.T) {
	g, err := ToGeom(Geometry{Kind: KindPolygon, Rings: [][]Coordinate{
		{{Lat: -1, Lon: -1}, {Lat: 1, Lon: -1}, {Lat: 1, Lon: 1}, {Lat: -1, Lon: 1}},
	}})
	require.NoError(t, err)
	poly, ok := g.(*geom.Polygon)
	require.True(t, ok)
	ring := poly.LinearRing(0)
	// 4 input coordinates plus the closing repeat.
	assert.Equal(t, 5, ring.NumCoords())
	assert.Equal(t, ring.Coord(0), ring.Coord(4))
}

func TestToGeom_UnknownKind(t *testing.T) {
	_, err := ToGeom(Geometry{})
	require.Error(t, err)
}
