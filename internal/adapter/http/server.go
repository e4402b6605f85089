package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/county-resilience-service/internal/dashboard"
	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

// Dashboard is the scoring service the API serves.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Current() *dashboard.Snapshot
	DefaultWeights() domain.WeightSet
	Evaluate(w domain.WeightSet, normalize bool) (dashboard.Evaluation, error)
	Refresh(ctx context.Context) (*dashboard.Snapshot, error)
}

// PublishedExport reads back the last export uploaded by the refresh loop.
type PublishedExport interface {
	Latest(ctx context.Context) ([]byte, error)
}

// Server exposes the score API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        Dashboard
	published  PublishedExport
	logger     *slog.Logger
}

// NewServer creates an HTTP server. origins lists the CORS origins allowed to
// call the API; "*" allows any.
func NewServer(addr string, svc Dashboard, origins []string, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	r.Use(middleware.RequestID, middleware.RealIP, s.logRequests, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(svc))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/counties", s.handleCounties)
		r.Get("/weights", s.handleWeights)
		r.Get("/scores", s.handleScores)
		r.Get("/scores/{county}", s.handleCountyScore)
		r.Get("/rankings", s.handleRankings)
		r.Get("/export.csv", s.handleExport)
		r.Post("/refresh", s.handleRefresh)
	})

	return s
}

// ServePublished lets /api/v1/export.csv?source=published return the last
// uploaded export.
func (s *Server) ServePublished(src PublishedExport) {
	s.published = src
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
