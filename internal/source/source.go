// Package source defines the abstract spatial feature source consumed by the
// enrichment engine, the paged query protocol against it, and the concrete
// ArcGIS-style REST and local shapefile implementations. Per-dataset
// differences (service URLs, page sizes, radius caps, field names) are
// declarative configuration, not logic.
package source

import (
	"context"

	"github.com/sitewise/geoenrich/internal/geometry"
)

// MetersPerMile converts the engine's miles to the meters feature services
// expect for buffer distances.
const MetersPerMile = 1609.34

// Mode selects the spatial relationship of a query.
type Mode int

const (
	// ModeProximity buffers the query point by the request radius.
	ModeProximity Mode = iota + 1
	// ModeContainment intersects the bare query point (no buffer).
	ModeContainment
)

// Request is one spatial query against a source. The origin is always the
// query point; RadiusMiles is ignored in containment mode.
type Request struct {
	Origin      geometry.Coordinate
	Mode        Mode
	RadiusMiles float64
}

// RawFeature is an ephemeral feature from one fetched page. Geometry is as
// parsed from the wire and may still be projected; callers normalize before
// computing distances.
type RawFeature struct {
	Attributes map[string]any
	Geometry   geometry.Geometry
	SourceID   string
}

// Page is one page of query results plus the upstream "more data" signal.
type Page struct {
	Features []RawFeature
	HasMore  bool
}

// SpatialSource is a paged spatial feature service. Pagination is driven by
// an explicit integer offset so a failed run can restart anywhere without
// server-side session state.
type SpatialSource interface {
	// ID returns the dataset identifier (e.g., "flood_zones").
	ID() string

	// PageSize returns the fixed page size the service documents.
	PageSize() int

	// Query fetches one page of features at the given offset.
	Query(ctx context.Context, req Request, offset int) (*Page, error)
}
