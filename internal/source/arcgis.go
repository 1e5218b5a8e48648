package source

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sitewise/geoenrich/internal/fetcher"
	"github.com/sitewise/geoenrich/internal/geometry"
)

// ArcGIS is a SpatialSource over an ArcGIS-style REST feature layer.
type ArcGIS struct {
	cfg DatasetConfig
	f   fetcher.JSONFetcher
}

// NewArcGIS creates an ArcGIS source from a dataset config and a fetcher.
func NewArcGIS(cfg DatasetConfig, f fetcher.JSONFetcher) *ArcGIS {
	return &ArcGIS{cfg: cfg.WithDefaults(), f: f}
}

// ID implements SpatialSource.
func (s *ArcGIS) ID() string { return s.cfg.Name }

// PageSize implements SpatialSource.
func (s *ArcGIS) PageSize() int { return s.cfg.PageSize }

// Config returns the dataset configuration backing this source.
func (s *ArcGIS) Config() DatasetConfig { return s.cfg }

// arcgisFeature mirrors one feature in a layer query response.
type arcgisFeature struct {
	Attributes map[string]any  `json:"attributes"`
	Geometry   json.RawMessage `json:"geometry"`
}

// arcgisResponse mirrors the layer query envelope.
type arcgisResponse struct {
	Features              []arcgisFeature `json:"features"`
	ExceededTransferLimit bool            `json:"exceededTransferLimit"`
	Error                 *arcgisError    `json:"error"`
}

// arcgisError is the in-band error some services return with a 200 status.
type arcgisError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Query implements SpatialSource. Features whose geometry fails to parse are
// dropped and logged; a malformed feature never fails the page.
func (s *ArcGIS) Query(ctx context.Context, req Request, offset int) (*Page, error) {
	var resp arcgisResponse
	if err := s.f.FetchJSON(ctx, s.queryURL(req, offset), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, eris.Errorf("source %s: service error %d: %s", s.cfg.Name, resp.Error.Code, resp.Error.Message)
	}

	page := &Page{
		Features: make([]RawFeature, 0, len(resp.Features)),
		HasMore:  resp.ExceededTransferLimit,
	}
	dropped := 0
	for _, rf := range resp.Features {
		g, err := geometry.Parse(rf.Geometry)
		if err != nil {
			dropped++
			continue
		}
		page.Features = append(page.Features, RawFeature{
			Attributes: rf.Attributes,
			Geometry:   g,
			SourceID:   s.cfg.Name,
		})
	}
	if dropped > 0 {
		zap.L().Debug("dropped features with malformed geometry",
			zap.String("component", "source.arcgis"),
			zap.String("source", s.cfg.Name),
			zap.Int("dropped", dropped),
		)
	}
	return page, nil
}

// queryURL builds the layer query URL for one page. The buffer distance is
// sent in meters; containment mode intersects the bare point instead.
func (s *ArcGIS) queryURL(req Request, offset int) string {
	params := url.Values{
		"where":             {"1=1"},
		"outFields":         {"*"},
		"f":                 {"json"},
		"geometryType":      {"esriGeometryPoint"},
		"geometry":          {formatCoord(req.Origin.Lon) + "," + formatCoord(req.Origin.Lat)},
		"inSR":              {"4326"},
		"outSR":             {"4326"},
		"spatialRel":        {"esriSpatialRelIntersects"},
		"resultOffset":      {strconv.Itoa(offset)},
		"resultRecordCount": {strconv.Itoa(s.cfg.PageSize)},
	}
	if req.Mode == ModeProximity {
		params.Set("distance", strconv.FormatFloat(req.RadiusMiles*MetersPerMile, 'f', 2, 64))
		params.Set("units", "esriSRUnit_Meter")
	}
	return s.cfg.ServiceURL + "/query?" + params.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
