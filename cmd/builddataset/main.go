// Command builddataset runs one full dataset build: it loads raw FIRMS
// detections, aggregates fire events, samples negatives, joins weather
// from the Open-Meteo archive, and writes the training CSV. While the
// build runs, health, readiness, progress, and metrics are served over
// HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	firmsadapter "github.com/valenlzmj2001/wildfire-risk-pipeline/internal/adapter/firms"
	httpadapter "github.com/valenlzmj2001/wildfire-risk-pipeline/internal/adapter/http"
	kafkaadapter "github.com/valenlzmj2001/wildfire-risk-pipeline/internal/adapter/kafka"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/adapter/openmeteo"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/config"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/dataset"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/observability"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	weather, err := openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimezone, cfg.WeatherTimeout, metrics, logger)
	if err != nil {
		logger.Error("failed to create weather client", "error", err)
		os.Exit(1)
	}

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher pipeline.EventPublisher
	var closer *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		closer = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publisher = closer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	b := pipeline.New(pipeline.Params{
		Source:    firmsadapter.NewReader(logger),
		Writer:    dataset.NewWriter(cfg.OutputCSV),
		Publisher: publisher,

		DetectionDir: cfg.DetectionDir,
		Box: domain.BoundingBox{
			LatMin: cfg.LatMin, LatMax: cfg.LatMax,
			LonMin: cfg.LonMin, LonMax: cfg.LonMax,
		},
		StartDate:     cfg.StartDate,
		EndDate:       cfg.EndDate,
		CellSize:      cfg.CellSize,
		NegativeRatio: cfg.NegativeRatio,
		Seed:          cfg.Seed,

		Logger:  logger,
		Metrics: metrics,
	})
	b.SetJoiner(pipeline.NewWeatherJoiner(weather, cfg.WeatherRequestDelay, logger, metrics, b.CellProgress))

	srv := httpadapter.NewServer(cfg.HTTPAddr, b, b, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	buildErr := b.Run(ctx)
	if buildErr != nil {
		logger.Error("dataset build failed", "error", buildErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	if buildErr != nil {
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
