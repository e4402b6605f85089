// Command resilience scores North Carolina counties offline and manages
// placeholder data files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resilience",
		Short: "County financial resilience scoring",
		Long: `Scores the 100 North Carolina counties on median income, unemployment,
and cost of living, and manages the placeholder files the service reads.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newPlaceholdersCmd(),
		newValidateCmd(),
		newCountiesCmd(),
	)
	return rootCmd
}
