package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var sourcesFormat string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}

		configs := e.registry.All()
		switch sourcesFormat {
		case "table":
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tALWAYS-ON\tMAX RADIUS\tPAGE SIZE")
			for _, c := range configs {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%.0f mi\t%d\n",
					c.Name, c.Label, c.AlwaysOn, c.MaxRadiusMiles, c.PageSize)
			}
			return tw.Flush()
		case "yaml":
			out, err := yaml.Marshal(configs)
			if err != nil {
				return eris.Wrap(err, "marshal datasets")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		default:
			return eris.Errorf("unknown format %q (want table or yaml)", sourcesFormat)
		}
	},
}

func init() {
	sourcesCmd.Flags().StringVar(&sourcesFormat, "format", "table", "output format: table or yaml")
	rootCmd.AddCommand(sourcesCmd)
}
