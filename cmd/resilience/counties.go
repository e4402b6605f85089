package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

func newCountiesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "counties",
		Short: "List the county registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return json.NewEncoder(out).Encode(domain.Counties())
			case "table":
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "FIPS\tCOUNTY")
				for _, c := range domain.Counties() {
					fmt.Fprintf(tw, "%s\t%s\n", c.FIPS, c.Name)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}
