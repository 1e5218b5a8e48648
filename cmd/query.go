package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sitewise/geoenrich/internal/enrich"
	"github.com/sitewise/geoenrich/internal/geometry"
)

var (
	queryLat    float64
	queryLon    float64
	queryRadius float64
	queryTypes  []string
	queryFormat string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Enrich a single point against the selected datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}

		radius := queryRadius
		if radius <= 0 {
			radius = cfg.Engine.DefaultRadiusMiles
		}

		results, err := e.orch.Enrich(cmd.Context(), enrich.EnrichRequest{
			Origin:      geometry.Coordinate{Lat: queryLat, Lon: queryLon},
			RadiusMiles: radius,
			Types:       queryTypes,
		})
		if err != nil {
			return err
		}

		switch queryFormat {
		case "json":
			return writeJSON(cmd.OutOrStdout(), results)
		case "geojson":
			return writeGeoJSON(cmd.OutOrStdout(), results)
		default:
			return eris.Errorf("unknown format %q (want json or geojson)", queryFormat)
		}
	},
}

func init() {
	queryCmd.Flags().Float64Var(&queryLat, "lat", 0, "latitude of the query point")
	queryCmd.Flags().Float64Var(&queryLon, "lon", 0, "longitude of the query point")
	queryCmd.Flags().Float64Var(&queryRadius, "radius", 0, "search radius in miles (default from config)")
	queryCmd.Flags().StringSliceVar(&queryTypes, "types", nil, "extra datasets beyond the always-on set")
	queryCmd.Flags().StringVar(&queryFormat, "format", "json", "output format: json or geojson")
	queryCmd.MarkFlagRequired("lat")
	queryCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(queryCmd)
}
