package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sitewise/geoenrich/internal/geometry"
	"github.com/sitewise/geoenrich/internal/source"
)

var (
	batchSource    string
	batchShapefile string
	batchPoints    string
	batchRadius    float64
	batchDelayMS   int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich many points against one dataset, sequentially",
	Long:  "Reads lat,lon pairs from a CSV file and queries a single dataset for each, pacing requests so public services are not hammered. A failed point is recorded and skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}

		points, err := readPoints(batchPoints)
		if err != nil {
			return err
		}

		var (
			src source.SpatialSource
			dc  source.DatasetConfig
		)
		switch {
		case batchShapefile != "":
			dc = source.DatasetConfig{Name: "shapefile"}.WithDefaults()
			src = source.NewShapefile("shapefile", batchShapefile, dc.PageSize)
		case batchSource != "":
			dc, err = e.registry.Get(batchSource)
			if err != nil {
				return err
			}
			src = source.NewArcGIS(dc, e.fetcher)
		default:
			return eris.New("one of --source or --shapefile is required")
		}

		radius := batchRadius
		if radius <= 0 {
			radius = cfg.Engine.DefaultRadiusMiles
		}
		delay := time.Duration(batchDelayMS) * time.Millisecond
		if batchDelayMS < 0 {
			delay = 0
		} else if batchDelayMS == 0 {
			delay = time.Duration(cfg.Batch.DelayMS) * time.Millisecond
		}

		items, err := e.engine.Batch(cmd.Context(), src, dc, points, radius, delay)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), items)
	},
}

// readPoints parses a CSV of lat,lon rows. A header row is tolerated.
func readPoints(path string) ([]geometry.Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open points file %s", path)
	}
	defer f.Close()
	return parsePoints(f)
}

func parsePoints(r io.Reader) ([]geometry.Coordinate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var points []geometry.Coordinate
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read points csv")
		}
		line++

		lat, latErr := strconv.ParseFloat(rec[0], 64)
		lon, lonErr := strconv.ParseFloat(rec[1], 64)
		if latErr != nil || lonErr != nil {
			if line == 1 {
				continue // header row
			}
			return nil, eris.Errorf("points csv line %d: not a lat,lon pair", line)
		}

		c := geometry.Coordinate{Lat: lat, Lon: lon}
		if !c.Valid() {
			return nil, eris.Errorf("points csv line %d: coordinate out of range", line)
		}
		points = append(points, c)
	}
	if len(points) == 0 {
		return nil, eris.New("points csv contains no coordinates")
	}
	return points, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchSource, "source", "", "dataset to query")
	batchCmd.Flags().StringVar(&batchShapefile, "shapefile", "", "query a local shapefile instead of a dataset")
	batchCmd.Flags().StringVar(&batchPoints, "points", "", "CSV file of lat,lon pairs")
	batchCmd.Flags().Float64Var(&batchRadius, "radius", 0, "search radius in miles (default from config)")
	batchCmd.Flags().IntVar(&batchDelayMS, "delay-ms", 0, "delay between points in milliseconds (default from config)")
	batchCmd.MarkFlagRequired("points")
	rootCmd.AddCommand(batchCmd)
}
