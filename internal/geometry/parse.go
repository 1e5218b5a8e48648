package geometry

import "encoding/json"

// rawGeometry mirrors the geometry object returned by ArcGIS-style feature
// services: a point carries x/y, a polyline paths, a polygon rings.
// Coordinates arrive as [x, y] pairs regardless of CRS.
type rawGeometry struct {
	X     *float64      `json:"x"`
	Y     *float64      `json:"y"`
	Paths [][][]float64 `json:"paths"`
	Rings [][][]float64 `json:"rings"`
}

// Parse decodes a feature service geometry payload into a Geometry. The
// result is NOT yet CRS-normalized; call Normalize on it before any distance
// computation. Returns a GeometryError for missing or malformed shapes.
func Parse(data json.RawMessage) (Geometry, error) {
	if len(data) == 0 || string(data) == "null" {
		return Geometry{}, NewGeometryError("missing geometry")
	}

	var raw rawGeometry
	if err := json.Unmarshal(data, &raw); err != nil {
		return Geometry{}, &GeometryError{Reason: "decode geometry", Err: err}
	}

	switch {
	case raw.X != nil && raw.Y != nil:
		return Geometry{Kind: KindPoint, Point: Coordinate{Lat: *raw.Y, Lon: *raw.X}}, nil
	case len(raw.Paths) > 0:
		paths, err := convertPairs(raw.Paths, "path")
		if err != nil {
			return Geometry{}, err
		}
		g := Geometry{Kind: KindPolyline, Paths: paths}
		return g, g.Validate()
	case len(raw.Rings) > 0:
		rings, err := convertPairs(raw.Rings, "ring")
		if err != nil {
			return Geometry{}, err
		}
		g := Geometry{Kind: KindPolygon, Rings: rings}
		return g, g.Validate()
	default:
		return Geometry{}, NewGeometryError("geometry has no x/y, paths, or rings")
	}
}

// convertPairs turns [[x,y],...] sequences into coordinate sequences, with
// the raw x in the Lon slot and y in Lat (fixed up later by Normalize).
func convertPairs(seqs [][][]float64, what string) ([][]Coordinate, error) {
	out := make([][]Coordinate, len(seqs))
	for i, seq := range seqs {
		out[i] = make([]Coordinate, len(seq))
		for j, pair := range seq {
			if len(pair) < 2 {
				return nil, NewGeometryError("malformed coordinate pair in " + what)
			}
			out[i][j] = Coordinate{Lon: pair[0], Lat: pair[1]}
		}
	}
	return out, nil
}
