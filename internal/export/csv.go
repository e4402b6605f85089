// Package export renders scored results as CSV and uploads them to blob storage.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

// FileName is the name of the downloadable export.
const FileName = "resilience_scores_export.csv"

// Header lists the CSV columns in order.
var Header = []string{
	"fips",
	"county",
	"median_income",
	"unemployment_rate",
	"cost_of_living_index",
	"income_norm",
	"unemployment_norm",
	"cost_norm",
	"income_weight",
	"unemployment_weight",
	"cost_weight",
	"resilience_score",
	"rank",
}

// WriteCSV writes one row per county, in rank order, after a header row.
func WriteCSV(w io.Writer, result domain.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	wt := result.Weights
	for _, c := range result.Counties {
		row := []string{
			c.FIPS,
			c.Name,
			raw(c.Raw.Income),
			raw(c.Raw.Unemployment),
			raw(c.Raw.CostOfLiving),
			fixed3(c.Normalized.Income),
			fixed3(c.Normalized.Unemployment),
			fixed3(c.Normalized.CostOfLiving),
			fixed3(wt.Income),
			fixed3(wt.Unemployment),
			fixed3(wt.Cost),
			fixed3(c.Score),
			strconv.Itoa(c.Rank),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", c.FIPS, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode renders result as CSV, gzip-compressed when compress is set.
func Encode(result domain.Result, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	if !compress {
		if err := WriteCSV(&buf, result); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	zw := gzip.NewWriter(&buf)
	zw.Name = FileName
	if err := WriteCSV(zw, result); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func raw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fixed3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
