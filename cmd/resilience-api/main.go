package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/county-resilience-service/internal/adapter/census"
	httpadapter "github.com/couchcryptid/county-resilience-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/county-resilience-service/internal/adapter/kafka"
	"github.com/couchcryptid/county-resilience-service/internal/adapter/placeholder"
	"github.com/couchcryptid/county-resilience-service/internal/config"
	"github.com/couchcryptid/county-resilience-service/internal/dashboard"
	"github.com/couchcryptid/county-resilience-service/internal/domain"
	"github.com/couchcryptid/county-resilience-service/internal/export"
	"github.com/couchcryptid/county-resilience-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := census.NewClient(census.Options{
		BaseURL:   cfg.CensusBaseURL,
		Year:      cfg.CensusYear,
		Dataset:   cfg.CensusDataset,
		StateFIPS: cfg.CensusStateFIPS,
		APIKey:    cfg.CensusAPIKey,
		Timeout:   cfg.CensusTimeout,
	}, metrics, logger)
	income := census.NewCachedProvider(client, cfg.CensusCacheTTL, clock, metrics)
	logger.Info("census income source configured",
		"query", client.Query(),
		"cache_ttl", cfg.CensusCacheTTL,
		"api_key", cfg.CensusAPIKey != "",
	)

	// Placeholder unemployment and cost values: synthetic unless a file is configured.
	var placeholders domain.PlaceholderProvider = placeholder.Synthetic{}
	var fileProvider *placeholder.FileProvider
	if cfg.PlaceholderFile != "" {
		fileProvider, err = placeholder.NewFileProvider(cfg.PlaceholderFile, logger)
		if err != nil {
			logger.Error("failed to load placeholder file", "error", err)
			os.Exit(1)
		}
		placeholders = fileProvider
	} else {
		logger.Info("using synthetic placeholder values")
	}

	var publishers []dashboard.Publisher
	var closers []io.Closer
	var uploader *export.Uploader
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		publishers = append(publishers, writer)
		closers = append(closers, writer)
		logger.Info("kafka score sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}
	if cfg.ExportBackend != config.ExportNone {
		store, closer, err := newExportStore(ctx, cfg)
		if err != nil {
			logger.Error("failed to create export store", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		uploader = export.NewUploader(store, cfg.ExportPrefix, cfg.ExportGzip, logger)
		publishers = append(publishers, uploader)
		logger.Info("export upload enabled", "backend", cfg.ExportBackend, "key", uploader.Key())
	}

	svc := dashboard.New(income, placeholders, dashboard.Options{
		DefaultWeights:  cfg.DefaultWeights,
		RefreshInterval: cfg.RefreshInterval,
		AllowPartial:    cfg.AllowPartial,
		Invalidate:      income.Invalidate,
	}, clock, logger, metrics, publishers...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cfg.CORSOrigins, logger)
	if uploader != nil {
		srv.ServePublished(uploader)
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := svc.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	if fileProvider != nil && cfg.PlaceholderWatch {
		go func() {
			if err := fileProvider.Watch(ctx, svc.Trigger); err != nil {
				logger.Error("placeholder watcher error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Publishers must be idle before their sinks close.
	select {
	case <-runDone:
	case <-shutdownCtx.Done():
		logger.Warn("refresher did not stop before shutdown timeout")
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func newExportStore(ctx context.Context, cfg *config.Config) (export.Store, io.Closer, error) {
	switch cfg.ExportBackend {
	case config.ExportLocal:
		return export.NewLocalStore(cfg.ExportLocalDir), nil, nil
	case config.ExportS3:
		s, err := export.NewS3Store(ctx, export.S3Config{
			Bucket:    cfg.ExportBucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		return s, nil, err
	case config.ExportGCS:
		s, err := export.NewGCSStore(ctx, cfg.ExportBucket)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unsupported export backend %q", cfg.ExportBackend)
	}
}
