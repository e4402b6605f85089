package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/county-resilience-service/internal/adapter/placeholder"
	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

func newPlaceholdersCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "placeholders",
		Short: "Write a placeholder file with synthetic values for every county",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := placeholder.WriteFile(out, placeholder.SyntheticFile()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d counties to %s\n", len(domain.Counties()), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "placeholders.yaml", "Output file path")
	return cmd
}
