package http_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/county-resilience-service/internal/adapter/http"
	"github.com/couchcryptid/county-resilience-service/internal/adapter/placeholder"
	"github.com/couchcryptid/county-resilience-service/internal/dashboard"
	"github.com/couchcryptid/county-resilience-service/internal/domain"
	"github.com/couchcryptid/county-resilience-service/internal/export"
	"github.com/couchcryptid/county-resilience-service/internal/observability"
)

type stubIncome struct {
	values domain.FactorValues
	err    error
}

func (s *stubIncome) MedianIncome(_ context.Context) (domain.FactorValues, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.values.Clone(), nil
}

func fullIncome() domain.FactorValues {
	v := domain.FactorValues{}
	for i, id := range domain.CountyIDs() {
		v[id] = 40000 + float64(i)*500
	}
	return v
}

func newService(income domain.IncomeProvider) *dashboard.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return dashboard.New(income, placeholder.Synthetic{}, dashboard.Options{
		DefaultWeights:  domain.DefaultWeights(),
		RefreshInterval: 0,
	}, clockwork.NewFakeClock(), logger, observability.NewMetricsForTesting())
}

// newTestServer returns a server over a service that has loaded one snapshot.
func newTestServer(t *testing.T) *httpadapter.Server {
	t.Helper()
	svc := newService(&stubIncome{values: fullIncome()})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	return httpadapter.NewServer(":0", svc, []string{"*"}, slog.Default())
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type scoreRow struct {
	FIPS     string   `json:"fips"`
	Name     string   `json:"name"`
	Rank     int      `json:"rank"`
	Of       int      `json:"of"`
	Position string   `json:"position"`
	Score    float64  `json:"score"`
	Tags     []string `json:"tags"`
	Insight  string   `json:"insight"`
}

func TestHealthzReturns200(t *testing.T) {
	srv := httpadapter.NewServer(":0", newService(&stubIncome{}), []string{"*"}, slog.Default())
	rec := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(t), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := httpadapter.NewServer(":0", newService(&stubIncome{}), []string{"*"}, slog.Default())
	rec := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCounties(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/counties")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count    int             `json:"count"`
		Counties []domain.County `json:"counties"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 100, body.Count)
	assert.Equal(t, domain.County{FIPS: "37001", Name: "Alamance"}, body.Counties[0])
}

func TestWeights(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/weights")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]domain.WeightSet
	decode(t, rec, &body)
	assert.Equal(t, domain.DefaultWeights(), body["default"])
	assert.InDelta(t, 1.0, body["normalized"].Sum(), 1e-12)
}

func TestScores_Defaults(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/scores")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SnapshotID string           `json:"snapshot_id"`
		Weights    domain.WeightSet `json:"weights"`
		Count      int              `json:"count"`
		Counties   []scoreRow       `json:"counties"`
	}
	decode(t, rec, &body)
	assert.NotEmpty(t, body.SnapshotID)
	assert.Equal(t, 100, body.Count)
	require.Len(t, body.Counties, 100)
	assert.Equal(t, 1, body.Counties[0].Rank)
	assert.Equal(t, "#1 out of 100", body.Counties[0].Position)
	for i := 1; i < len(body.Counties); i++ {
		assert.GreaterOrEqual(t, body.Counties[i-1].Score, body.Counties[i].Score)
	}
}

func TestScores_CustomWeights(t *testing.T) {
	srv := newTestServer(t)

	t.Run("normalized by default", func(t *testing.T) {
		rec := get(t, srv, "/api/v1/scores?income=2&unemployment=1&cost=1")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Weights domain.WeightSet `json:"weights"`
		}
		decode(t, rec, &body)
		assert.InDelta(t, 0.5, body.Weights.Income, 1e-12)
	})

	t.Run("raw weights", func(t *testing.T) {
		rec := get(t, srv, "/api/v1/scores?income=2&unemployment=0&cost=0&normalize=false")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Counties []scoreRow `json:"counties"`
		}
		decode(t, rec, &body)
		assert.InDelta(t, 2.0, body.Counties[0].Score, 1e-12)
	})

	t.Run("bad requests", func(t *testing.T) {
		for _, q := range []string{"income=abc", "cost=-1", "normalize=maybe", "income=0&unemployment=0&cost=0"} {
			rec := get(t, srv, "/api/v1/scores?"+q)
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})
}

func TestScores_NotReady(t *testing.T) {
	srv := httpadapter.NewServer(":0", newService(&stubIncome{}), []string{"*"}, slog.Default())
	rec := get(t, srv, "/api/v1/scores")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCountyScore(t *testing.T) {
	srv := newTestServer(t)

	for _, id := range []string{"37183", "183", "Wake", "wake%20county"} {
		rec := get(t, srv, "/api/v1/scores/"+id)
		require.Equal(t, http.StatusOK, rec.Code, id)

		var body struct {
			County scoreRow `json:"county"`
		}
		decode(t, rec, &body)
		assert.Equal(t, "37183", body.County.FIPS)
		assert.Equal(t, "Wake", body.County.Name)
		assert.Equal(t, 100, body.County.Of)
		assert.NotEmpty(t, body.County.Insight)
		assert.NotNil(t, body.County.Tags)
	}

	rec := get(t, srv, "/api/v1/scores/Atlantis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRankings(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/v1/rankings")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Top    []scoreRow `json:"top"`
		Bottom []scoreRow `json:"bottom"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Top, 5)
	require.Len(t, body.Bottom, 5)
	assert.Equal(t, 1, body.Top[0].Rank)
	assert.Equal(t, 100, body.Bottom[0].Rank, "bottom list starts with the least resilient")

	rec = get(t, srv, "/api/v1/rankings?n=3")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.Len(t, body.Top, 3)

	for _, n := range []string{"0", "-1", "x", "51"} {
		assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/rankings?n="+n).Code, n)
	}
}

func TestExportCSV(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/export.csv?income=1&unemployment=1&cost=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), export.FileName)

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 101)
	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, "0.333", rows[1][8], "weights reflect the request")
}

func TestExportCSV_Published(t *testing.T) {
	svc := newService(&stubIncome{values: fullIncome()})
	srv := httpadapter.NewServer(":0", svc, []string{"*"}, slog.Default())

	rec := get(t, srv, "/api/v1/export.csv?source=published")
	assert.Equal(t, http.StatusNotFound, rec.Code, "upload not enabled")

	uploader := export.NewUploader(export.NewLocalStore(t.TempDir()), "exports", true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv.ServePublished(uploader)

	rec = get(t, srv, "/api/v1/export.csv?source=published")
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing uploaded yet")

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	eval, err := svc.Evaluate(domain.DefaultWeights(), true)
	require.NoError(t, err)
	require.NoError(t, uploader.Publish(context.Background(), eval))

	rec = get(t, srv, "/api/v1/export.csv?source=published&income=1&unemployment=0&cost=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 101)
	assert.Equal(t, "0.400", rows[1][8], "published export ignores request weights")

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/export.csv?source=cache").Code)
}

func TestRefresh(t *testing.T) {
	income := &stubIncome{values: fullIncome()}
	srv := httpadapter.NewServer(":0", newService(income), []string{"*"}, slog.Default())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SnapshotID string `json:"snapshot_id"`
		Counties   int    `json:"counties"`
	}
	decode(t, rec, &body)
	assert.NotEmpty(t, body.SnapshotID)
	assert.Equal(t, 100, body.Counties)

	income.err = errors.New("census down")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/v1/scores").Code, "previous snapshot still served")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/scores", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
