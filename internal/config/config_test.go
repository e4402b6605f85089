package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)

	assert.Equal(t, "https://api.census.gov/data", cfg.CensusBaseURL)
	assert.Equal(t, 2022, cfg.CensusYear)
	assert.Equal(t, "acs/acs5", cfg.CensusDataset)
	assert.Equal(t, "37", cfg.CensusStateFIPS)
	assert.Empty(t, cfg.CensusAPIKey)
	assert.Equal(t, 10*time.Second, cfg.CensusTimeout)
	assert.Equal(t, time.Hour, cfg.CensusCacheTTL)

	assert.Equal(t, 6*time.Hour, cfg.RefreshInterval)
	assert.Empty(t, cfg.PlaceholderFile)
	assert.True(t, cfg.PlaceholderWatch)
	assert.False(t, cfg.AllowPartial)
	assert.Equal(t, domain.DefaultWeights(), cfg.DefaultWeights)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "county-resilience-scores", cfg.KafkaTopic)

	assert.Equal(t, ExportNone, cfg.ExportBackend)
	assert.Equal(t, "exports", cfg.ExportPrefix)
	assert.Equal(t, "./data/exports", cfg.ExportLocalDir)
	assert.True(t, cfg.ExportGzip)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://dash.example.org")
	t.Setenv("CENSUS_BASE_URL", "http://census.local/data/")
	t.Setenv("CENSUS_YEAR", "2021")
	t.Setenv("CENSUS_API_KEY", "k-123")
	t.Setenv("CENSUS_TIMEOUT", "3s")
	t.Setenv("CENSUS_CACHE_TTL", "10m")
	t.Setenv("REFRESH_INTERVAL", "15m")
	t.Setenv("PLACEHOLDER_FILE", "/etc/resilience/placeholders.yaml")
	t.Setenv("PLACEHOLDER_WATCH", "false")
	t.Setenv("ALLOW_PARTIAL", "true")
	t.Setenv("DEFAULT_WEIGHTS", "0.5,0.3,0.2")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "scores")
	t.Setenv("EXPORT_BACKEND", "S3")
	t.Setenv("EXPORT_BUCKET", "dash-exports")
	t.Setenv("EXPORT_GZIP", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "https://dash.example.org"}, cfg.CORSOrigins)
	assert.Equal(t, "http://census.local/data", cfg.CensusBaseURL)
	assert.Equal(t, 2021, cfg.CensusYear)
	assert.Equal(t, "k-123", cfg.CensusAPIKey)
	assert.Equal(t, 3*time.Second, cfg.CensusTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CensusCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "/etc/resilience/placeholders.yaml", cfg.PlaceholderFile)
	assert.False(t, cfg.PlaceholderWatch)
	assert.True(t, cfg.AllowPartial)
	assert.Equal(t, domain.WeightSet{Income: 0.5, Unemployment: 0.3, Cost: 0.2}, cfg.DefaultWeights)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "scores", cfg.KafkaTopic)
	assert.Equal(t, ExportS3, cfg.ExportBackend)
	assert.Equal(t, "dash-exports", cfg.ExportBucket)
	assert.False(t, cfg.ExportGzip)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"CENSUS_TIMEOUT", "CENSUS_CACHE_TTL", "REFRESH_INTERVAL"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-5s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidWeights(t *testing.T) {
	for _, v := range []string{"0.4,0.3", "0.4,-1,0.3", "0,0,0"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("DEFAULT_WEIGHTS", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "DEFAULT_WEIGHTS")
		})
	}
}

func TestLoad_UnsupportedState(t *testing.T) {
	t.Setenv("CENSUS_STATE_FIPS", "48")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CENSUS_STATE_FIPS")
}

func TestLoad_InvalidCensusYear(t *testing.T) {
	t.Setenv("CENSUS_YEAR", "abc")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CENSUS_YEAR")
}

func TestLoad_ExportBucketRequired(t *testing.T) {
	t.Setenv("EXPORT_BACKEND", "gcs")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPORT_BUCKET")
}

func TestLoad_InvalidExportBackend(t *testing.T) {
	t.Setenv("EXPORT_BACKEND", "ftp")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPORT_BACKEND")
}

func TestLoad_CacheTTLLongerThanRefreshInterval(t *testing.T) {
	t.Setenv("CENSUS_CACHE_TTL", "24h")
	t.Setenv("REFRESH_INTERVAL", "6h")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CENSUS_CACHE_TTL")
}
