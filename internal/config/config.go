package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

// Export backends.
const (
	ExportNone  = ""
	ExportLocal = "local"
	ExportS3    = "s3"
	ExportGCS   = "gcs"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Census ACS configuration.
	CensusBaseURL   string
	CensusYear      int
	CensusDataset   string
	CensusStateFIPS string
	CensusAPIKey    string
	CensusTimeout   time.Duration
	CensusCacheTTL  time.Duration

	// Refresh and scoring.
	RefreshInterval  time.Duration
	PlaceholderFile  string
	PlaceholderWatch bool
	AllowPartial     bool
	DefaultWeights   domain.WeightSet

	// Kafka score sink.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Export upload.
	ExportBackend  string
	ExportBucket   string
	ExportPrefix   string
	ExportLocalDir string
	ExportGzip     bool
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	censusTimeout, err := parsePositiveDuration("CENSUS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CENSUS_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "6h")
	if err != nil {
		return nil, err
	}

	if cacheTTL > refreshInterval {
		return nil, fmt.Errorf("CENSUS_CACHE_TTL (%s) must not exceed REFRESH_INTERVAL (%s)", cacheTTL, refreshInterval)
	}

	year, err := strconv.Atoi(sharedcfg.EnvOrDefault("CENSUS_YEAR", "2022"))
	if err != nil || year < 2009 {
		return nil, errors.New("invalid CENSUS_YEAR")
	}

	weights, err := domain.ParseWeightSet(sharedcfg.EnvOrDefault("DEFAULT_WEIGHTS", "0.4,0.3,0.3"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_WEIGHTS: %w", err)
	}
	if weights.Sum() == 0 {
		return nil, errors.New("invalid DEFAULT_WEIGHTS: weights sum to zero")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ORIGINS", "*")),

		CensusBaseURL:   strings.TrimSuffix(sharedcfg.EnvOrDefault("CENSUS_BASE_URL", "https://api.census.gov/data"), "/"),
		CensusYear:      year,
		CensusDataset:   sharedcfg.EnvOrDefault("CENSUS_DATASET", "acs/acs5"),
		CensusStateFIPS: sharedcfg.EnvOrDefault("CENSUS_STATE_FIPS", domain.StateFIPS),
		CensusAPIKey:    os.Getenv("CENSUS_API_KEY"),
		CensusTimeout:   censusTimeout,
		CensusCacheTTL:  cacheTTL,

		RefreshInterval:  refreshInterval,
		PlaceholderFile:  os.Getenv("PLACEHOLDER_FILE"),
		PlaceholderWatch: parseBool("PLACEHOLDER_WATCH", true),
		AllowPartial:     parseBool("ALLOW_PARTIAL", false),
		DefaultWeights:   weights,

		KafkaEnabled: parseBool("KAFKA_ENABLED", false),
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "county-resilience-scores"),

		ExportBackend:  strings.ToLower(os.Getenv("EXPORT_BACKEND")),
		ExportBucket:   os.Getenv("EXPORT_BUCKET"),
		ExportPrefix:   sharedcfg.EnvOrDefault("EXPORT_PREFIX", "exports"),
		ExportLocalDir: sharedcfg.EnvOrDefault("EXPORT_LOCAL_DIR", "./data/exports"),
		ExportGzip:     parseBool("EXPORT_GZIP", true),
		S3Region:       os.Getenv("S3_REGION"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
	}

	if cfg.CensusStateFIPS != domain.StateFIPS {
		return nil, fmt.Errorf("CENSUS_STATE_FIPS %q is not supported: the county registry covers state %s only", cfg.CensusStateFIPS, domain.StateFIPS)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}
	switch cfg.ExportBackend {
	case ExportNone, ExportLocal:
	case ExportS3, ExportGCS:
		if cfg.ExportBucket == "" {
			return nil, fmt.Errorf("EXPORT_BUCKET is required for EXPORT_BACKEND=%s", cfg.ExportBackend)
		}
	default:
		return nil, fmt.Errorf("invalid EXPORT_BACKEND %q", cfg.ExportBackend)
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, def bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
