package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/county-resilience-service/internal/adapter/census"
	"github.com/couchcryptid/county-resilience-service/internal/adapter/placeholder"
	"github.com/couchcryptid/county-resilience-service/internal/config"
	"github.com/couchcryptid/county-resilience-service/internal/dashboard"
	"github.com/couchcryptid/county-resilience-service/internal/domain"
	"github.com/couchcryptid/county-resilience-service/internal/export"
	"github.com/couchcryptid/county-resilience-service/internal/observability"
)

type scoreOpts struct {
	input        string
	live         bool
	weights      domain.WeightSet
	normalize    bool
	allowPartial bool
	format       string
	top          int
}

func newScoreCmd() *cobra.Command {
	opts := scoreOpts{weights: domain.DefaultWeights()}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score and rank every county",
		Long: `Reads factor values from a placeholder file (with median_income set) or,
with --live, fetches income from the Census API using the service's environment
configuration, then prints the ranked scores.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.input == "" && !opts.live {
				return errors.New("one of --input or --live is required")
			}
			return runScore(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Placeholder YAML file with factor values")
	cmd.Flags().BoolVar(&opts.live, "live", false, "Fetch median income from the Census API")
	cmd.Flags().Float64Var(&opts.weights.Income, "income", opts.weights.Income, "Income weight")
	cmd.Flags().Float64Var(&opts.weights.Unemployment, "unemployment", opts.weights.Unemployment, "Unemployment weight")
	cmd.Flags().Float64Var(&opts.weights.Cost, "cost", opts.weights.Cost, "Cost-of-living weight")
	cmd.Flags().BoolVar(&opts.normalize, "normalize", true, "Rescale weights to sum to 1")
	cmd.Flags().BoolVar(&opts.allowPartial, "allow-partial", false, "Skip counties with missing factors")
	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format: table, csv, or json")
	cmd.Flags().IntVar(&opts.top, "top", 0, "Only print the top N counties (0 = all)")

	return cmd
}

func runScore(ctx context.Context, out io.Writer, opts scoreOpts) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	var (
		income       domain.IncomeProvider
		placeholders domain.PlaceholderProvider = placeholder.Synthetic{}
	)
	if opts.input != "" {
		fp, err := placeholder.NewFileProvider(opts.input, logger)
		if err != nil {
			return err
		}
		income, placeholders = fp, fp
	}
	if opts.live {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		income = census.NewClient(census.Options{
			BaseURL:   cfg.CensusBaseURL,
			Year:      cfg.CensusYear,
			Dataset:   cfg.CensusDataset,
			StateFIPS: cfg.CensusStateFIPS,
			APIKey:    cfg.CensusAPIKey,
			Timeout:   cfg.CensusTimeout,
		}, metrics, logger)
	}

	svc := dashboard.New(income, placeholders, dashboard.Options{
		DefaultWeights: opts.weights,
		AllowPartial:   opts.allowPartial,
	}, clockwork.NewRealClock(), logger, metrics)

	if _, err := svc.Refresh(ctx); err != nil {
		return err
	}
	eval, err := svc.Evaluate(opts.weights, opts.normalize)
	if err != nil {
		return err
	}
	return render(out, eval, opts.format, opts.top)
}

func render(out io.Writer, eval dashboard.Evaluation, format string, top int) error {
	total := len(eval.Counties)
	if top > 0 {
		eval.Counties = eval.Top(top)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(eval)
	case "csv":
		return export.WriteCSV(out, eval.Result)
	case "table":
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "RANK\tFIPS\tCOUNTY\tSCORE\tINCOME\tUNEMP %%\tCOST IDX\n")
		for _, c := range eval.Counties {
			fmt.Fprintf(tw, "%d/%d\t%s\t%s\t%.3f\t%.0f\t%.1f\t%.1f\n",
				c.Rank, total, c.FIPS, c.Name, c.Score,
				c.Raw.Income, c.Raw.Unemployment, c.Raw.CostOfLiving)
		}
		fmt.Fprintf(tw, "\nweights: income=%.3f unemployment=%.3f cost=%.3f\n",
			eval.Weights.Income, eval.Weights.Unemployment, eval.Weights.Cost)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
