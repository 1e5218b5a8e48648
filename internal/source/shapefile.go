package source

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sitewise/geoenrich/internal/geometry"
)

// Shapefile is a SpatialSource over a local shapefile. It returns every
// record paged; spatial filtering happens downstream where distances are
// computed, so a shapefile layer behaves like a service that ignores the
// query geometry.
type Shapefile struct {
	id       string
	path     string
	pageSize int
}

// NewShapefile creates a shapefile source. A non-positive pageSize falls back
// to 1000.
func NewShapefile(id, path string, pageSize int) *Shapefile {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Shapefile{id: id, path: path, pageSize: pageSize}
}

// ID implements SpatialSource.
func (s *Shapefile) ID() string { return s.id }

// PageSize implements SpatialSource.
func (s *Shapefile) PageSize() int { return s.pageSize }

// Query implements SpatialSource. The file is opened per call so long-lived
// engines hold no descriptors between queries.
func (s *Shapefile) Query(ctx context.Context, _ Request, offset int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := shp.Open(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "source %s: open shapefile %s", s.id, s.path)
	}
	defer reader.Close()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.Trim(f.String(), "\x00")
	}

	page := &Page{}
	row := 0
	for reader.Next() {
		if row < offset {
			row++
			continue
		}
		if len(page.Features) == s.pageSize {
			page.HasMore = true
			break
		}

		_, shape := reader.Shape()
		g, err := shapeGeometry(shape)
		if err != nil {
			row++
			continue
		}

		attrs := make(map[string]any, len(names))
		for i, name := range names {
			attrs[name] = strings.Trim(reader.Attribute(i), "\x00")
		}

		page.Features = append(page.Features, RawFeature{
			Attributes: attrs,
			Geometry:   g,
			SourceID:   s.id,
		})
		row++
	}
	return page, nil
}

// shapeGeometry converts a shapefile record into engine geometry. Raw X/Y go
// into the Lon/Lat slots; projected files are detected and reprojected
// downstream like any other source.
func shapeGeometry(shape shp.Shape) (geometry.Geometry, error) {
	switch t := shape.(type) {
	case *shp.Point:
		return geometry.Geometry{
			Kind:  geometry.KindPoint,
			Point: geometry.Coordinate{Lat: t.Y, Lon: t.X},
		}, nil
	case *shp.PolyLine:
		return geometry.Geometry{
			Kind:  geometry.KindPolyline,
			Paths: splitParts(t.Parts, t.Points),
		}, nil
	case *shp.Polygon:
		return geometry.Geometry{
			Kind:  geometry.KindPolygon,
			Rings: splitParts(t.Parts, t.Points),
		}, nil
	default:
		return geometry.Geometry{}, eris.Errorf("source: unsupported shape type %T", shape)
	}
}

// splitParts slices a flat point list into per-part coordinate paths using the
// shapefile part index array.
func splitParts(parts []int32, points []shp.Point) [][]geometry.Coordinate {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]geometry.Coordinate, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		path := make([]geometry.Coordinate, 0, end-int(start))
		for _, p := range points[start:end] {
			path = append(path, geometry.Coordinate{Lat: p.Y, Lon: p.X})
		}
		out = append(out, path)
	}
	return out
}
