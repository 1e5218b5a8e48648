package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Point(t *testing.T) {
	g, err := Parse(json.RawMessage(`{"x": -71.5, "y": 43.0}`))
	require.NoError(t, err)
	assert.Equal(t, KindPoint, g.Kind)
	assert.Equal(t, Coordinate{Lat: 43.0, Lon: -71.5}, g.Point)
}

func TestParse_Polyline(t *testing.T) {
	g, err := Parse(json.RawMessage(`{"paths": [[[-71.5, 43.0], [-71.4, 43.1]]]}`))
	require.NoError(t, err)
	assert.Equal(t, KindPolyline, g.Kind)
	require.Len(t, g.Paths, 1)
	assert.Equal(t, Coordinate{Lat: 43.1, Lon: -71.4}, g.Paths[0][1])
}

func TestParse_PolygonWithHole(t *testing.T) {
	g, err := Parse(json.RawMessage(`{"rings": [
		[[-1,-1],[-1,1],[1,1],[1,-1]],
		[[-0.5,-0.5],[-0.5,0.5],[0.5,0.5]]
	]}`))
	require.NoError(t, err)
	assert.Equal(t, KindPolygon, g.Kind)
	assert.Len(t, g.Rings, 2)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"null", "null"},
		{"not json", "{"},
		{"empty object", "{}"},
		{"short pair", `{"rings": [[[1],[2,2],[3,3]]]}`},
		{"short ring", `{"rings": [[[1,1],[2,2]]]}`},
		{"short path", `{"paths": [[[1,1]]]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(json.RawMessage(tc.in))
			require.Error(t, err)
			var ge *GeometryError
			assert.ErrorAs(t, err, &ge)
		})
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	err := Geometry{}.Validate()
	require.Error(t, err)
}
