package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/county-resilience-service/internal/dashboard"
	"github.com/couchcryptid/county-resilience-service/internal/domain"
	"github.com/couchcryptid/county-resilience-service/internal/export"
)

const (
	defaultRankingSize = 5
	maxRankingSize     = 50
)

var errBadRequest = errors.New("bad request")

type countyScore struct {
	domain.County
	Rank       int                    `json:"rank"`
	Of         int                    `json:"of"`
	Position   string                 `json:"position"`
	Score      float64                `json:"score"`
	Raw        domain.FactorBreakdown `json:"raw"`
	Normalized domain.FactorBreakdown `json:"normalized"`
	Tags       []domain.AdvisoryTag   `json:"tags"`
	Insight    string                 `json:"insight"`
}

func newCountyScore(c domain.ScoredCounty, of int) countyScore {
	return countyScore{
		County:     c.County,
		Rank:       c.Rank,
		Of:         of,
		Position:   fmt.Sprintf("#%d out of %d", c.Rank, of),
		Score:      c.Score,
		Raw:        c.Raw,
		Normalized: c.Normalized,
		Tags:       c.Tags,
		Insight:    c.Insight(),
	}
}

func (s *Server) handleCounties(w http.ResponseWriter, _ *http.Request) {
	counties := domain.Counties()
	resp := map[string]any{"count": len(counties), "counties": counties}
	if snap := s.svc.Current(); snap != nil && len(snap.Omitted) > 0 {
		resp["omitted"] = snap.Omitted
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeights(w http.ResponseWriter, _ *http.Request) {
	def := s.svc.DefaultWeights()
	norm, err := def.Normalized()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]domain.WeightSet{"default": def, "normalized": norm})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	eval, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	rows := make([]countyScore, len(eval.Counties))
	for i, c := range eval.Counties {
		rows[i] = newCountyScore(c, len(eval.Counties))
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"snapshot_id": eval.SnapshotID,
		"fetched_at":  eval.FetchedAt,
		"weights":     eval.Weights,
		"count":       len(rows),
		"counties":    rows,
	})
}

func (s *Server) handleCountyScore(w http.ResponseWriter, r *http.Request) {
	county, err := domain.LookupCounty(chi.URLParam(r, "county"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	eval, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	row, found := eval.Find(county.FIPS)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("county %s (%s) has no score in the current data", county.Name, county.FIPS))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"snapshot_id": eval.SnapshotID,
		"weights":     eval.Weights,
		"county":      newCountyScore(row, len(eval.Counties)),
	})
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	n := defaultRankingSize
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxRankingSize {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: n must be between 1 and %d", errBadRequest, maxRankingSize))
			return
		}
		n = parsed
	}
	eval, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	of := len(eval.Counties)
	top := make([]countyScore, 0, n)
	for _, c := range eval.Top(n) {
		top = append(top, newCountyScore(c, of))
	}
	bottom := make([]countyScore, 0, n)
	for _, c := range eval.Bottom(n) {
		bottom = append(bottom, newCountyScore(c, of))
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"snapshot_id": eval.SnapshotID,
		"weights":     eval.Weights,
		"top":         top,
		"bottom":      bottom,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	switch src := r.URL.Query().Get("source"); src {
	case "", "live":
	case "published":
		s.handlePublishedExport(w, r)
		return
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: unknown source %q", errBadRequest, src))
		return
	}

	eval, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	setCSVHeaders(w)
	if err := export.WriteCSV(w, eval.Result); err != nil {
		s.logger.Error("write csv export", "error", err)
	}
}

func (s *Server) handlePublishedExport(w http.ResponseWriter, r *http.Request) {
	if s.published == nil {
		writeError(w, http.StatusNotFound, errors.New("export upload is not enabled"))
		return
	}
	data, err := s.published.Latest(r.Context())
	switch {
	case errors.Is(err, export.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		s.logger.Error("read published export", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	setCSVHeaders(w)
	w.Write(data) //nolint:errcheck // client may have gone away
}

func setCSVHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("manual refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"snapshot_id": snap.ID,
		"fetched_at":  snap.FetchedAt.Format(time.RFC3339),
		"counties":    len(snap.Counties),
		"omitted":     snap.Omitted,
	})
}

// evaluate scores the current snapshot under the request's weights. It writes
// the error response itself and reports whether the caller should continue.
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) (dashboard.Evaluation, bool) {
	weights, normalize, err := parseWeights(r, s.svc.DefaultWeights())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return dashboard.Evaluation{}, false
	}
	eval, err := s.svc.Evaluate(weights, normalize)
	switch {
	case err == nil:
		return eval, true
	case errors.Is(err, dashboard.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, domain.ErrInvalidWeights):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.logger.Error("evaluate failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
	return dashboard.Evaluation{}, false
}

// parseWeights reads the income, unemployment, and cost query parameters,
// falling back to defaults for any that are absent. normalize defaults to true.
func parseWeights(r *http.Request, defaults domain.WeightSet) (domain.WeightSet, bool, error) {
	q := r.URL.Query()
	w := defaults
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"income", &w.Income},
		{"unemployment", &w.Unemployment},
		{"cost", &w.Cost},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.WeightSet{}, false, fmt.Errorf("%w: %s weight %q is not a number", errBadRequest, p.name, v)
		}
		*p.dst = f
	}

	normalize := true
	if v := q.Get("normalize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.WeightSet{}, false, fmt.Errorf("%w: normalize %q is not a boolean", errBadRequest, v)
		}
		normalize = b
	}
	return w, normalize, nil
}
