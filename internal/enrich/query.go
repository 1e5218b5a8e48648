package enrich

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sitewise/geoenrich/internal/geometry"
	"github.com/sitewise/geoenrich/internal/source"
)

// Engine runs enrichment queries against individual datasets.
type Engine struct {
	metrics *Metrics
}

// NewEngine creates an engine. A nil metrics disables counting.
func NewEngine(metrics *Metrics) *Engine {
	return &Engine{metrics: metrics}
}

// Metrics returns the engine's counters.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// QueryProximity answers "what is near this point" for one dataset: a
// containment pass for polygons holding the point plus a buffered pass for
// everything within the radius, merged and deduplicated. The radius is
// clamped to the dataset's cap.
func (e *Engine) QueryProximity(ctx context.Context, src source.SpatialSource, cfg source.DatasetConfig, origin geometry.Coordinate, radiusMiles float64) (ResultSet, error) {
	log := zap.L().With(
		zap.String("component", "enrich.engine"),
		zap.String("source", src.ID()),
	)

	if cfg.MaxRadiusMiles > 0 && radiusMiles > cfg.MaxRadiusMiles {
		log.Warn("radius clamped to dataset cap",
			zap.Float64("requested", radiusMiles),
			zap.Float64("cap", cfg.MaxRadiusMiles),
		)
		radiusMiles = cfg.MaxRadiusMiles
	}

	start := time.Now()

	contained, err := e.collect(ctx, src, cfg, source.Request{
		Origin: origin,
		Mode:   source.ModeContainment,
	})
	if err != nil {
		e.metrics.RecordFailure()
		return ResultSet{}, err
	}

	near, err := e.collect(ctx, src, cfg, source.Request{
		Origin:      origin,
		Mode:        source.ModeProximity,
		RadiusMiles: radiusMiles,
	})
	if err != nil {
		e.metrics.RecordFailure()
		return ResultSet{}, err
	}

	var kept []AnnotatedFeature
	for _, f := range contained {
		if f.IsContaining {
			kept = append(kept, f)
		}
	}
	for _, f := range near {
		if withinRadius(f, radiusMiles) {
			kept = append(kept, f)
		}
	}

	rs := Merge(kept)
	e.metrics.RecordQuery(time.Since(start), rs.Count())
	log.Debug("proximity query complete",
		zap.Int("containing", len(rs.Containing)),
		zap.Int("nearby", len(rs.Nearby)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rs, nil
}

// QueryContaining answers "which polygons hold this point" for one dataset.
func (e *Engine) QueryContaining(ctx context.Context, src source.SpatialSource, cfg source.DatasetConfig, origin geometry.Coordinate) ([]AnnotatedFeature, error) {
	start := time.Now()

	features, err := e.collect(ctx, src, cfg, source.Request{
		Origin: origin,
		Mode:   source.ModeContainment,
	})
	if err != nil {
		e.metrics.RecordFailure()
		return nil, err
	}

	var kept []AnnotatedFeature
	for _, f := range features {
		if f.IsContaining {
			kept = append(kept, f)
		}
	}
	rs := Merge(kept)
	e.metrics.RecordQuery(time.Since(start), len(rs.Containing))
	return rs.Containing, nil
}

// collect paginates one query and annotates every feature. Tripping the
// pagination safety bound degrades to the accumulated partial set; any other
// failure propagates. Features whose geometry cannot be normalized are
// dropped.
func (e *Engine) collect(ctx context.Context, src source.SpatialSource, cfg source.DatasetConfig, req source.Request) ([]AnnotatedFeature, error) {
	raw, err := source.Paginator{MaxOffset: cfg.MaxOffset}.Collect(ctx, src, req)
	if err != nil {
		var safety *source.PaginationSafetyError
		if !errors.As(err, &safety) {
			return nil, err
		}
		zap.L().Warn("using partial results after pagination safety stop",
			zap.String("component", "enrich.engine"),
			zap.String("source", src.ID()),
			zap.Int("features", len(raw)),
		)
	}

	out := make([]AnnotatedFeature, 0, len(raw))
	dropped := 0
	for _, f := range raw {
		af, err := Annotate(f, req.Origin, cfg.IdentityFields)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, af)
	}
	if dropped > 0 {
		zap.L().Debug("dropped unannotatable features",
			zap.String("component", "enrich.engine"),
			zap.String("source", src.ID()),
			zap.Int("dropped", dropped),
		)
	}
	return out, nil
}
