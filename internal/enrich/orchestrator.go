package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sitewise/geoenrich/internal/fetcher"
	"github.com/sitewise/geoenrich/internal/geometry"
	"github.com/sitewise/geoenrich/internal/source"
)

// defaultConcurrency bounds simultaneous dataset queries. Public feature
// services throttle aggressively past a handful of parallel clients.
const defaultConcurrency = 5

// Orchestrator fans an enrichment request out across datasets: the always-on
// set plus whatever the caller selected.
type Orchestrator struct {
	registry    *source.Registry
	fetcher     fetcher.JSONFetcher
	engine      *Engine
	concurrency int
}

// NewOrchestrator creates an orchestrator over a dataset registry.
func NewOrchestrator(reg *source.Registry, f fetcher.JSONFetcher, engine *Engine, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Orchestrator{
		registry:    reg,
		fetcher:     f,
		engine:      engine,
		concurrency: concurrency,
	}
}

// EnrichRequest is one point to enrich.
type EnrichRequest struct {
	Origin      geometry.Coordinate `json:"origin"`
	RadiusMiles float64             `json:"radius_miles"`

	// Types selects extra datasets beyond the always-on set.
	Types []string `json:"types,omitempty"`
}

// Enrich queries every selected dataset concurrently and merges the per-type
// results into one map. A failed dataset contributes a "<type>_error" string
// entry instead of aborting the rest; a failed dataset is never retried
// within a run.
func (o *Orchestrator) Enrich(ctx context.Context, req EnrichRequest) (map[string]any, error) {
	log := zap.L().With(zap.String("component", "enrich.orchestrator"))

	if !req.Origin.Valid() {
		return nil, eris.Errorf("enrich: invalid origin %f,%f", req.Origin.Lat, req.Origin.Lon)
	}
	if req.RadiusMiles <= 0 {
		return nil, eris.Errorf("enrich: radius must be positive, got %f", req.RadiusMiles)
	}

	configs, err := o.selectDatasets(req.Types)
	if err != nil {
		return nil, err
	}
	log.Info("enriching point",
		zap.Float64("lat", req.Origin.Lat),
		zap.Float64("lon", req.Origin.Lon),
		zap.Float64("radius_miles", req.RadiusMiles),
		zap.Int("datasets", len(configs)),
	)

	results := make(map[string]any, len(configs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, cfg := range configs {
		cfg := cfg
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			start := time.Now()
			src := source.NewArcGIS(cfg, o.fetcher)
			rs, err := o.engine.QueryProximity(gctx, src, cfg, req.Origin, req.RadiusMiles)
			if err != nil {
				log.Error("dataset query failed",
					zap.String("dataset", cfg.Name),
					zap.Error(err),
					zap.Duration("elapsed", time.Since(start)),
				)
				mu.Lock()
				results[cfg.Name+"_error"] = err.Error()
				mu.Unlock()
				return nil // don't abort other datasets on individual failure
			}

			mu.Lock()
			results[cfg.Name] = rs
			mu.Unlock()

			log.Debug("dataset query complete",
				zap.String("dataset", cfg.Name),
				zap.Int("features", rs.Count()),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, eris.Wrap(err, "enrich: orchestrator aborted")
	}
	return results, nil
}

// selectDatasets resolves the always-on set plus the requested types, deduped
// and in registry order for always-on, request order for the rest.
func (o *Orchestrator) selectDatasets(types []string) ([]source.DatasetConfig, error) {
	selected := o.registry.AlwaysOn()
	seen := make(map[string]bool, len(selected))
	for _, cfg := range selected {
		seen[cfg.Name] = true
	}
	for _, name := range types {
		if seen[name] {
			continue
		}
		cfg, err := o.registry.Get(name)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		selected = append(selected, cfg)
	}
	return selected, nil
}
