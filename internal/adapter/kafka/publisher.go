// Package kafka publishes enriched events to a topic so downstream
// consumers (alerting, dashboards) can follow dataset builds without
// reading the output file. Publishing is optional and never fails the
// build.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
)

// Publisher produces enriched events to a Kafka topic.
// It implements pipeline.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the enriched-events topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBatch serializes and publishes the final dataset rows in a
// single WriteMessages call.
func (p *Publisher) PublishBatch(ctx context.Context, runID string, events []domain.EnrichedEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(runID, events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// eventPayload is the wire form of an enriched event. Weather fields
// use pointers so that unresolved values serialize as null; json.Marshal
// refuses NaN outright.
type eventPayload struct {
	Date         string          `json:"date"`
	Cell         domain.GridCell `json:"cell"`
	Fire         int             `json:"fire"`
	Brightness   float64         `json:"brightness,omitempty"`
	FRP          float64         `json:"frp,omitempty"`
	Confidence   string          `json:"confidence,omitempty"`
	Detections   int             `json:"detections,omitempty"`
	TempMax      *float64        `json:"temp_max"`
	TempMin      *float64        `json:"temp_min"`
	TempMean     *float64        `json:"temp_mean"`
	HumidityMean *float64        `json:"humidity_mean"`
	WindMax      *float64        `json:"wind_max"`
	PrecipDay    *float64        `json:"precip_day"`
	Precip7d     *float64        `json:"precip_7d"`
	Precip14d    *float64        `json:"precip_14d"`
	Precip30d    *float64        `json:"precip_30d"`
}

// serializeToMessage marshals an enriched event into a Kafka message
// keyed by its (day, cell) identity.
func serializeToMessage(runID string, e domain.EnrichedEvent) (kafkago.Message, error) {
	payload := eventPayload{
		Date:         e.Date.Format(time.DateOnly),
		Cell:         e.Cell,
		Fire:         e.Fire,
		Brightness:   e.Brightness,
		FRP:          e.FRP,
		Confidence:   e.Confidence,
		Detections:   e.Detections,
		TempMax:      finitePtr(e.TempMax),
		TempMin:      finitePtr(e.TempMin),
		TempMean:     finitePtr(e.TempMean),
		HumidityMean: finitePtr(e.HumidityMean),
		WindMax:      finitePtr(e.WindMax),
		PrecipDay:    finitePtr(e.PrecipDay),
		Precip7d:     finitePtr(e.Precip7d),
		Precip14d:    finitePtr(e.Precip14d),
		Precip30d:    finitePtr(e.Precip30d),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize enriched event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(e.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "label", Value: []byte(strconv.Itoa(e.Fire))},
		},
	}, nil
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
