package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/geoenrich/internal/geometry"
)

// squareRing is the unit test ring from [[-1,-1],[-1,1],[1,1],[1,-1]],
// expressed as lat/lon coordinates.
var squareRing = []geometry.Coordinate{
	{Lat: -1, Lon: -1},
	{Lat: -1, Lon: 1},
	{Lat: 1, Lon: 1},
	{Lat: 1, Lon: -1},
}

func TestHaversine_Identity(t *testing.T) {
	coords := []geometry.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 43.0, Lon: -71.5},
		{Lat: -89.9, Lon: 179.9},
	}
	for _, c := range coords {
		assert.Zero(t, Haversine(c, c))
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := geometry.Coordinate{Lat: 43.0, Lon: -71.5}
	b := geometry.Coordinate{Lat: 42.36, Lon: -71.06}
	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-12)
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Concord NH to Boston MA is roughly 58 miles great-circle.
	concord := geometry.Coordinate{Lat: 43.2081, Lon: -71.5376}
	boston := geometry.Coordinate{Lat: 42.3601, Lon: -71.0589}
	d := Haversine(concord, boston)
	assert.InDelta(t, 63.0, d, 5.0)
}

func TestPointToSegment_Projection(t *testing.T) {
	p := geometry.Coordinate{Lat: 1, Lon: 0}
	s1 := geometry.Coordinate{Lat: 0, Lon: -1}
	s2 := geometry.Coordinate{Lat: 0, Lon: 1}
	// Nearest point is (0,0); one degree of latitude is ~69.1 miles.
	d := PointToSegment(p, s1, s2)
	assert.InDelta(t, 69.1, d, 0.5)
}

func TestPointToSegment_ClampsToEndpoint(t *testing.T) {
	p := geometry.Coordinate{Lat: 0, Lon: 5}
	s1 := geometry.Coordinate{Lat: 0, Lon: -1}
	s2 := geometry.Coordinate{Lat: 0, Lon: 1}
	d := PointToSegment(p, s1, s2)
	assert.InDelta(t, Haversine(p, s2), d, 1e-9)
}

func TestPointToSegment_Degenerate(t *testing.T) {
	p := geometry.Coordinate{Lat: 1, Lon: 1}
	s := geometry.Coordinate{Lat: 0, Lon: 0}
	d := PointToSegment(p, s, s)
	assert.InDelta(t, Haversine(p, s), d, 1e-9)
}

func TestPointToPolyline(t *testing.T) {
	paths := [][]geometry.Coordinate{
		{{Lat: 0, Lon: -1}, {Lat: 0, Lon: 1}},
		{{Lat: 10, Lon: -1}, {Lat: 10, Lon: 1}},
	}
	p := geometry.Coordinate{Lat: 1, Lon: 0}
	d := PointToPolyline(p, paths)
	assert.InDelta(t, 69.1, d, 0.5)
}

func TestPointToPolyline_Empty(t *testing.T) {
	assert.True(t, math.IsInf(PointToPolyline(geometry.Coordinate{}, nil), 1))
}

func TestPointInPolygon_Square(t *testing.T) {
	rings := [][]geometry.Coordinate{squareRing}
	assert.True(t, PointInPolygon(geometry.Coordinate{Lat: 0, Lon: 0}, rings))
	assert.False(t, PointInPolygon(geometry.Coordinate{Lat: 5, Lon: 5}, rings))
}

func TestPointInPolygon_Hole(t *testing.T) {
	hole := []geometry.Coordinate{
		{Lat: -0.5, Lon: -0.5},
		{Lat: -0.5, Lon: 0.5},
		{Lat: 0.5, Lon: 0.5},
		{Lat: 0.5, Lon: -0.5},
	}
	rings := [][]geometry.Coordinate{squareRing, hole}
	assert.False(t, PointInPolygon(geometry.Coordinate{Lat: 0, Lon: 0}, rings), "inside hole is outside polygon")
	assert.True(t, PointInPolygon(geometry.Coordinate{Lat: 0.75, Lon: 0.75}, rings), "between hole and boundary is inside")
}

func TestPointInPolygon_Empty(t *testing.T) {
	assert.False(t, PointInPolygon(geometry.Coordinate{}, nil))
}

func TestDistanceToPolygonBoundary_InsideIsZero(t *testing.T) {
	rings := [][]geometry.Coordinate{squareRing}
	inside := []geometry.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0.9, Lon: -0.9},
		{Lat: -0.5, Lon: 0.25},
	}
	for _, p := range inside {
		require.True(t, PointInPolygon(p, rings))
		assert.Zero(t, DistanceToPolygonBoundary(p, rings))
	}
}

func TestDistanceToPolygonBoundary_Outside(t *testing.T) {
	rings := [][]geometry.Coordinate{squareRing}
	p := geometry.Coordinate{Lat: 2, Lon: 0}
	d := DistanceToPolygonBoundary(p, rings)
	// One degree of latitude from the top edge.
	assert.InDelta(t, 69.1, d, 0.5)
}

func TestDistanceToPolygonBoundary_HoleEdgesCount(t *testing.T) {
	hole := []geometry.Coordinate{
		{Lat: -0.5, Lon: -0.5},
		{Lat: -0.5, Lon: 0.5},
		{Lat: 0.5, Lon: 0.5},
		{Lat: 0.5, Lon: -0.5},
	}
	rings := [][]geometry.Coordinate{squareRing, hole}
	// Center of the hole: nearest boundary is the hole edge, half a degree away.
	d := DistanceToPolygonBoundary(geometry.Coordinate{Lat: 0, Lon: 0}, rings)
	assert.InDelta(t, 34.5, d, 0.5)
}
