package main

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sitewise/geoenrich/internal/enrich"
	"github.com/sitewise/geoenrich/internal/geometry"
)

// writeJSON pretty-prints any value to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeGeoJSON flattens per-dataset results into one FeatureCollection.
// Error entries carry no geometry and are skipped.
func writeGeoJSON(w io.Writer, results map[string]any) error {
	fc, err := toFeatureCollection(results)
	if err != nil {
		return err
	}
	return writeJSON(w, fc)
}

func toFeatureCollection(results map[string]any) (*geojson.FeatureCollection, error) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	fc := &geojson.FeatureCollection{}
	for _, name := range names {
		rs, ok := results[name].(enrich.ResultSet)
		if !ok {
			continue
		}
		for _, f := range rs.Containing {
			feat, err := toFeature(f)
			if err != nil {
				return nil, err
			}
			fc.Features = append(fc.Features, feat)
		}
		for _, f := range rs.Nearby {
			feat, err := toFeature(f)
			if err != nil {
				return nil, err
			}
			fc.Features = append(fc.Features, feat)
		}
	}
	return fc, nil
}

func toFeature(f enrich.AnnotatedFeature) (*geojson.Feature, error) {
	g, err := geometry.ToGeom(f.Geometry)
	if err != nil {
		return nil, eris.Wrapf(err, "convert feature %s/%s", f.SourceID, f.Identity)
	}
	props := make(map[string]any, len(f.Attributes)+3)
	for k, v := range f.Attributes {
		props[k] = v
	}
	props["source"] = f.SourceID
	props["distance_miles"] = f.DistanceMiles
	props["is_containing"] = f.IsContaining

	return &geojson.Feature{
		ID:         f.Identity,
		Geometry:   g,
		Properties: props,
	}, nil
}
