package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	// Input/output paths.
	DetectionDir string // directory of raw FIRMS CSV files
	OutputCSV    string // final dataset artifact

	// Study domain.
	LatMin, LatMax float64
	LonMin, LonMax float64
	StartDate      time.Time
	EndDate        time.Time
	CellSize       float64
	NegativeRatio  int
	Seed           int64

	// Weather archive service.
	WeatherBaseURL      string
	WeatherTimezone     string
	WeatherTimeout      time.Duration
	WeatherRequestDelay time.Duration

	// Trained model service (inference path).
	ModelServiceURL   string
	ModelMetadataPath string

	// Optional Kafka sink for enriched events.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Sidecar HTTP server and logging.
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, applying the Cali
// study defaults where unset. A .env file in the working directory is
// honored but optional.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DetectionDir:      envOrDefault("DETECTION_DIR", "data/firms"),
		OutputCSV:         envOrDefault("OUTPUT_CSV", "data/wildfire_dataset.csv"),
		WeatherBaseURL:    envOrDefault("WEATHER_BASE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		WeatherTimezone:   envOrDefault("WEATHER_TIMEZONE", "America/Bogota"),
		ModelServiceURL:   envOrDefault("MODEL_SERVICE_URL", "http://localhost:8500"),
		ModelMetadataPath: envOrDefault("MODEL_METADATA_PATH", "data/model_metadata.json"),
		KafkaTopic:        envOrDefault("KAFKA_TOPIC", "wildfire-enriched-events"),
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.LatMin, err = parseFloat("BBOX_LAT_MIN", "3.30"); err != nil {
		return nil, err
	}
	if cfg.LatMax, err = parseFloat("BBOX_LAT_MAX", "3.55"); err != nil {
		return nil, err
	}
	if cfg.LonMin, err = parseFloat("BBOX_LON_MIN", "-76.65"); err != nil {
		return nil, err
	}
	if cfg.LonMax, err = parseFloat("BBOX_LON_MAX", "-76.45"); err != nil {
		return nil, err
	}
	if cfg.CellSize, err = parseFloat("GRID_CELL_SIZE", "0.005"); err != nil {
		return nil, err
	}
	if cfg.StartDate, err = parseDate("START_DATE", "2012-01-01"); err != nil {
		return nil, err
	}
	if cfg.EndDate, err = parseDate("END_DATE", "2025-12-31"); err != nil {
		return nil, err
	}
	if cfg.NegativeRatio, err = parseInt("NEGATIVE_RATIO", "5"); err != nil {
		return nil, err
	}
	if cfg.Seed, err = parseInt64("SAMPLE_SEED", "42"); err != nil {
		return nil, err
	}
	if cfg.WeatherTimeout, err = parseDuration("WEATHER_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.WeatherRequestDelay, err = parseDuration("WEATHER_REQUEST_DELAY", "500ms"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.KafkaBrokers = parseBrokers(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.KafkaEnabled = v == "true"
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.LatMin >= c.LatMax {
		return errors.New("BBOX_LAT_MIN must be less than BBOX_LAT_MAX")
	}
	if c.LonMin >= c.LonMax {
		return errors.New("BBOX_LON_MIN must be less than BBOX_LON_MAX")
	}
	if c.EndDate.Before(c.StartDate) {
		return errors.New("END_DATE must not precede START_DATE")
	}
	if c.CellSize <= 0 {
		return errors.New("GRID_CELL_SIZE must be positive")
	}
	if c.NegativeRatio <= 0 {
		return errors.New("NEGATIVE_RATIO must be positive")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if c.KafkaEnabled && c.KafkaTopic == "" {
		return errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}
	if _, err := time.LoadLocation(c.WeatherTimezone); err != nil {
		return fmt.Errorf("invalid WEATHER_TIMEZONE: %w", err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(envOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt(key, fallback string) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt64(key, fallback string) (int64, error) {
	v, err := strconv.ParseInt(envOrDefault(key, fallback), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDate(key, fallback string) (time.Time, error) {
	v, err := time.Parse(time.DateOnly, envOrDefault(key, fallback))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	v, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return v, nil
}
