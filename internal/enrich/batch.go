package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sitewise/geoenrich/internal/geometry"
	"github.com/sitewise/geoenrich/internal/source"
)

// BatchItem is the outcome of enriching one point against one dataset. Err is
// the failure message when the point could not be enriched.
type BatchItem struct {
	Origin  geometry.Coordinate `json:"origin"`
	Results ResultSet           `json:"results"`
	Err     string              `json:"error,omitempty"`
}

// Batch enriches many points against a single dataset sequentially, pacing
// requests by delay so a long point list does not hammer the service. A
// failed point is recorded and skipped, never retried.
func (e *Engine) Batch(ctx context.Context, src source.SpatialSource, cfg source.DatasetConfig, points []geometry.Coordinate, radiusMiles float64, delay time.Duration) ([]BatchItem, error) {
	log := zap.L().With(
		zap.String("component", "enrich.batch"),
		zap.String("source", src.ID()),
	)
	log.Info("batch started",
		zap.Int("points", len(points)),
		zap.Float64("radius_miles", radiusMiles),
	)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	out := make([]BatchItem, 0, len(points))
	failed := 0
	for _, pt := range points {
		if err := limiter.Wait(ctx); err != nil {
			return out, err
		}

		rs, err := e.QueryProximity(ctx, src, cfg, pt, radiusMiles)
		item := BatchItem{Origin: pt, Results: rs}
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			failed++
			item.Err = err.Error()
			log.Warn("point failed",
				zap.Float64("lat", pt.Lat),
				zap.Float64("lon", pt.Lon),
				zap.Error(err),
			)
		}
		out = append(out, item)
	}

	log.Info("batch complete",
		zap.Int("points", len(points)),
		zap.Int("failed", failed),
	)
	return out, nil
}
