package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/geoenrich/internal/geometry"
	"github.com/sitewise/geoenrich/internal/source"
)

func TestBatchEnrichesEveryPoint(t *testing.T) {
	near := geometry.Coordinate{Lat: 43.0, Lon: -71.5}
	src := &scriptedSource{
		id:       "schools",
		pageSize: 100,
		byMode: map[source.Mode][]source.RawFeature{
			source.ModeProximity: {
				rawPointAt(43.0, -71.51, "schools", 1),
			},
		},
	}

	engine := NewEngine(nil)
	points := []geometry.Coordinate{
		near,
		{Lat: 35.0, Lon: -100.0}, // nowhere near the canned feature
	}
	items, err := engine.Batch(context.Background(), src, source.DatasetConfig{Name: "schools"}.WithDefaults(), points, 5, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Len(t, items[0].Results.Nearby, 1)
	assert.Empty(t, items[0].Err)
	assert.Empty(t, items[1].Results.Nearby)
}

func TestBatchRecordsFailuresAndContinues(t *testing.T) {
	src := &flakySource{failFirst: true}

	engine := NewEngine(nil)
	points := []geometry.Coordinate{
		{Lat: 43.0, Lon: -71.5},
		{Lat: 43.1, Lon: -71.4},
	}
	items, err := engine.Batch(context.Background(), src, source.DatasetConfig{Name: "flaky"}.WithDefaults(), points, 5, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.NotEmpty(t, items[0].Err)
	assert.Empty(t, items[1].Err)
}

func TestBatchStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(nil)
	items, err := engine.Batch(ctx, &scriptedSource{id: "x", pageSize: 10}, source.DatasetConfig{Name: "x"}.WithDefaults(), []geometry.Coordinate{{Lat: 43, Lon: -71}}, 5, time.Second)
	require.Error(t, err)
	assert.Empty(t, items)
}

// flakySource fails its first query, then recovers.
type flakySource struct {
	calls     int
	failFirst bool
}

func (s *flakySource) ID() string    { return "flaky" }
func (s *flakySource) PageSize() int { return 100 }

func (s *flakySource) Query(_ context.Context, _ source.Request, _ int) (*source.Page, error) {
	s.calls++
	// The first point's first pass fails, aborting that point.
	if s.failFirst && s.calls == 1 {
		return nil, assert.AnError
	}
	return &source.Page{}, nil
}
