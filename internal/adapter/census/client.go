package census

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
	"github.com/couchcryptid/county-resilience-service/internal/observability"
)

// MedianIncomeVariable is the ACS variable for median household income.
const MedianIncomeVariable = "B19013_001E"

// ErrMalformedResponse is returned when the API body is not a header row
// followed by data rows.
var ErrMalformedResponse = errors.New("malformed census response")

// Options configure a Client.
type Options struct {
	BaseURL   string
	Year      int
	Dataset   string
	StateFIPS string
	APIKey    string
	Timeout   time.Duration
}

// Client implements domain.IncomeProvider using the Census ACS API.
type Client struct {
	baseURL    string
	year       int
	dataset    string
	stateFIPS  string
	apiKey     string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Census ACS client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   opts.BaseURL,
		year:      opts.Year,
		dataset:   opts.Dataset,
		stateFIPS: opts.StateFIPS,
		apiKey:    opts.APIKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Query names the dataset, year, state and variable this client requests.
func (c *Client) Query() string {
	return fmt.Sprintf("%d/%s/%s/%s", c.year, c.dataset, c.stateFIPS, MedianIncomeVariable)
}

// MedianIncome fetches median household income for every county in the state.
// Rows with suppressed or unparsable estimates are skipped.
func (c *Client) MedianIncome(ctx context.Context) (domain.FactorValues, error) {
	params := url.Values{
		"get": {"NAME," + MedianIncomeVariable},
		"for": {"county:*"},
		"in":  {"state:" + c.stateFIPS},
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u := fmt.Sprintf("%s/%d/%s?%s", c.baseURL, c.year, c.dataset, params.Encode())

	start := time.Now()
	rows, err := c.doRequest(ctx, u)
	c.metrics.CensusAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.CensusRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.CensusRequests.WithLabelValues("success").Inc()

	values, skipped, err := parseRows(rows, MedianIncomeVariable)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		c.logger.Warn("census rows without a usable estimate",
			"variable", MedianIncomeVariable,
			"count", len(skipped),
			"counties", skipped,
		)
	}
	c.logger.Debug("census income fetched", "year", c.year, "counties", len(values))
	return values, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("census request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("census API error: status %d: %s", resp.StatusCode, body)
	}

	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}

// parseRows converts a Census table into FIPS → value. The first row is the
// header; the state and county columns are joined into a five-digit FIPS.
func parseRows(rows [][]string, variable string) (domain.FactorValues, []string, error) {
	if len(rows) < 1 {
		return nil, nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	vi, ok1 := col[variable]
	si, ok2 := col["state"]
	ci, ok3 := col["county"]
	if !ok1 || !ok2 || !ok3 {
		return nil, nil, fmt.Errorf("%w: header %v lacks %s, state or county", ErrMalformedResponse, rows[0], variable)
	}

	values := make(domain.FactorValues, len(rows)-1)
	var skipped []string
	for _, row := range rows[1:] {
		if len(row) != len(rows[0]) {
			return nil, nil, fmt.Errorf("%w: row has %d columns, header has %d", ErrMalformedResponse, len(row), len(rows[0]))
		}
		fips := row[si] + row[ci]
		v, err := strconv.ParseFloat(row[vi], 64)
		// ACS encodes suppressed estimates as large negative sentinels.
		if err != nil || v < 0 {
			skipped = append(skipped, fips)
			continue
		}
		values[fips] = v
	}
	return values, skipped, nil
}
