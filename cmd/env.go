package main

import (
	"os"

	"github.com/rotisserie/eris"

	"github.com/sitewise/geoenrich/internal/enrich"
	"github.com/sitewise/geoenrich/internal/fetcher"
	"github.com/sitewise/geoenrich/internal/source"
)

// env bundles the wired-up components every command needs.
type env struct {
	registry *source.Registry
	fetcher  fetcher.JSONFetcher
	engine   *enrich.Engine
	orch     *enrich.Orchestrator
}

// initEnv builds the dataset registry, fetcher and orchestrator from config.
func initEnv() (*env, error) {
	reg := source.Defaults()
	if cfg.Datasets.File != "" {
		f, err := os.Open(cfg.Datasets.File)
		if err != nil {
			return nil, eris.Wrapf(err, "open datasets file %s", cfg.Datasets.File)
		}
		defer f.Close()
		if err := reg.LoadDatasets(f); err != nil {
			return nil, err
		}
	}

	f := fetcher.New(cfg.Fetch.FetcherOptions())
	engine := enrich.NewEngine(&enrich.Metrics{})

	return &env{
		registry: reg,
		fetcher:  f,
		engine:   engine,
		orch:     enrich.NewOrchestrator(reg, f, engine, cfg.Engine.Concurrency),
	}, nil
}
