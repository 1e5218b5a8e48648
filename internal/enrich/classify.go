package enrich

import (
	"github.com/sitewise/geoenrich/internal/distance"
	"github.com/sitewise/geoenrich/internal/geometry"
	"github.com/sitewise/geoenrich/internal/source"
)

// Annotate normalizes a raw feature's geometry and scores it against the
// query point. Containment only applies to polygons; points and polylines get
// a distance and IsContaining false.
func Annotate(f source.RawFeature, origin geometry.Coordinate, identityFields []string) (AnnotatedFeature, error) {
	g := geometry.Normalize(f.Geometry)
	if err := g.Validate(); err != nil {
		return AnnotatedFeature{}, err
	}

	out := AnnotatedFeature{
		Identity:   source.Identity(f.Attributes, identityFields),
		SourceID:   f.SourceID,
		Attributes: f.Attributes,
		Geometry:   g,
	}

	switch g.Kind {
	case geometry.KindPoint:
		out.DistanceMiles = distance.Haversine(origin, g.Point)
	case geometry.KindPolyline:
		out.DistanceMiles = distance.PointToPolyline(origin, g.Paths)
	case geometry.KindPolygon:
		if distance.PointInPolygon(origin, g.Rings) {
			out.IsContaining = true
			out.DistanceMiles = 0
		} else {
			out.DistanceMiles = distance.DistanceToPolygonBoundary(origin, g.Rings)
		}
	}
	return out, nil
}

// withinRadius reports whether an annotated feature belongs in a proximity
// result: containing polygons always do, everything else by distance.
func withinRadius(f AnnotatedFeature, radiusMiles float64) bool {
	return f.IsContaining || f.DistanceMiles <= radiusMiles
}
