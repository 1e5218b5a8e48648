// Package enrich turns raw spatial features into annotated proximity results
// and orchestrates concurrent enrichment across many datasets.
package enrich

import (
	"github.com/sitewise/geoenrich/internal/geometry"
)

// AnnotatedFeature is one feature scored against a query point. Geometry is
// always normalized to WGS84 by the time it lands here.
type AnnotatedFeature struct {
	// Identity is the deduplication key, empty when the feature carries no
	// recognized identifier.
	Identity string `json:"identity,omitempty"`

	// SourceID names the dataset the feature came from.
	SourceID string `json:"source"`

	// Attributes are the feature's raw attributes, untouched.
	Attributes map[string]any `json:"attributes"`

	// Geometry is the normalized feature geometry.
	Geometry geometry.Geometry `json:"geometry"`

	// DistanceMiles is the great-circle distance from the query point to the
	// feature. Zero for any polygon containing the point.
	DistanceMiles float64 `json:"distance_miles"`

	// IsContaining is true for polygons that contain the query point.
	IsContaining bool `json:"is_containing"`
}

// ResultSet partitions one dataset's results for a query point. A feature
// appears in exactly one of the two lists.
type ResultSet struct {
	// Containing holds polygons the query point falls inside.
	Containing []AnnotatedFeature `json:"containing"`

	// Nearby holds everything else within the radius, ascending by distance.
	Nearby []AnnotatedFeature `json:"nearby"`
}

// Count returns the total number of features across both partitions.
func (r ResultSet) Count() int {
	return len(r.Containing) + len(r.Nearby)
}
