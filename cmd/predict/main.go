// Command predict scores one set of live sensor readings against the
// trained classifier. Temporal features (month, day of year, dry
// season) are derived from the current date; the feature vector order
// comes from the model metadata.
//
// Usage:
//
//	go run ./cmd/predict \
//	  -metadata data/model_metadata.json \
//	  -temp 32.5 -humidity 35 -wind 18 \
//	  -precip7d 0 -precip14d 2.5 -precip30d 8
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/adapter/model"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	metadataPath := flag.String("metadata", "data/model_metadata.json", "path to the model metadata JSON")
	serviceURL := flag.String("service", "http://localhost:8500", "scoring service base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "scoring request timeout")
	temp := flag.Float64("temp", 0, "mean temperature, degrees C")
	humidity := flag.Float64("humidity", 0, "mean relative humidity, percent")
	wind := flag.Float64("wind", 0, "max wind speed, km/h")
	precip7d := flag.Float64("precip7d", 0, "accumulated precipitation over the last 7 days, mm")
	precip14d := flag.Float64("precip14d", 0, "accumulated precipitation over the last 14 days, mm")
	precip30d := flag.Float64("precip30d", 0, "accumulated precipitation over the last 30 days, mm")
	flag.Parse()

	metadata, err := model.LoadMetadata(*metadataPath)
	if err != nil {
		return err
	}
	log.Printf("model trained %s, %d features", metadata.TrainedAt, len(metadata.Features))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := model.NewClient(*serviceURL, metadata, *timeout)
	prediction, err := client.Predict(ctx, domain.SensorReading{
		TempMean:     *temp,
		HumidityMean: *humidity,
		WindMax:      *wind,
		Precip7d:     *precip7d,
		Precip14d:    *precip14d,
		Precip30d:    *precip30d,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(prediction, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	fmt.Printf("risk: %s (p=%.3f)\n", prediction.Level, prediction.Probability)
	return nil
}
