package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/county-resilience-service/internal/adapter/placeholder"
	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	var (
		input         string
		requireIncome bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a placeholder file covers every county with usable values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.OutOrStdout(), input, requireIncome)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Placeholder YAML file (required)")
	cmd.Flags().BoolVar(&requireIncome, "require-income", false, "Also require median_income for every county")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runValidate(out io.Writer, path string, requireIncome bool) error {
	parse := &phase{name: "parse"}
	coverage := &phase{name: "coverage"}
	ranges := &phase{name: "ranges"}
	phases := []*phase{parse, coverage, ranges}

	f, err := placeholder.LoadFile(path)
	if err != nil {
		parse.errorf("%v", err)
	} else {
		for _, c := range domain.Counties() {
			e, ok := f.Counties[c.FIPS]
			switch {
			case !ok:
				coverage.errorf("%s (%s): no entry, synthetic values will be used", c.Name, c.FIPS)
				continue
			case e.Unemployment == nil:
				coverage.errorf("%s (%s): unemployment not set", c.Name, c.FIPS)
			case e.CostOfLiving == nil:
				coverage.errorf("%s (%s): cost_of_living not set", c.Name, c.FIPS)
			case requireIncome && e.MedianIncome == nil:
				coverage.errorf("%s (%s): median_income not set", c.Name, c.FIPS)
			}
			if e.Unemployment != nil && *e.Unemployment > 100 {
				ranges.errorf("%s (%s): unemployment %.1f%% exceeds 100", c.Name, c.FIPS, *e.Unemployment)
			}
		}
		// Negative values are rejected by LoadFile, so ranges only needs the upper bound.
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Fprintf(out, "PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL  %s (%d issues)\n", p.name, len(p.errors))
		for _, e := range p.errors {
			fmt.Fprintf(out, "      - %s\n", e)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d validation phases failed", failed, len(phases))
	}
	return nil
}
