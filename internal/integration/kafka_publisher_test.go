//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/adapter/kafka"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
)

const testTopic = "test-enriched-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublisherRoundTrip publishes enriched events to real Kafka and
// verifies keys, headers, and payload shape on the consumer side.
func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	positive := domain.EnrichedEvent{
		Event: domain.Event{
			Date:       time.Date(2024, 8, 7, 0, 0, 0, 0, time.UTC),
			Cell:       domain.GridCell{Lat: 3.415, Lon: -76.52},
			Fire:       1,
			Brightness: 335.5,
			FRP:        11.2,
			Confidence: "h",
			Detections: 2,
		},
		TempMax: 31.2, TempMin: 18.4, TempMean: 24.8,
		HumidityMean: 61, WindMax: 12.5,
		PrecipDay: 0, Precip7d: 3.4, Precip14d: 9.1, Precip30d: 22.7,
	}
	negative := domain.EnrichedEvent{
		Event:   domain.Event{Date: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), Cell: domain.GridCell{Lat: 3.42, Lon: -76.5}},
		TempMax: math.NaN(), TempMin: 20, TempMean: 23.1,
		HumidityMean: 70, WindMax: 9.8,
		PrecipDay: 1.2, Precip7d: 8.9, Precip14d: 15.3, Precip30d: 40.1,
	}

	publisher := kafka.NewPublisher([]string{broker}, testTopic, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.PublishBatch(ctx, "run-integration", []domain.EnrichedEvent{positive, negative}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	read := func() (kafkago.Message, map[string]any) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		defer readCancel()
		msg, err := consumer.ReadMessage(readCtx)
		require.NoError(t, err, "read published message")

		var payload map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &payload))
		return msg, payload
	}

	msg, payload := read()
	assert.Equal(t, "2024-08-07|3.4150,-76.5200", string(msg.Key))
	assert.Equal(t, float64(1), payload["fire"])
	assert.Equal(t, 24.8, payload["temp_mean"])
	assert.Equal(t, "2024-08-07", payload["date"])

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "run-integration", headers["run_id"])
	assert.Equal(t, "1", headers["label"])

	msg2, payload2 := read()
	assert.Equal(t, "2024-12-25|3.4200,-76.5000", string(msg2.Key))
	assert.Equal(t, float64(0), payload2["fire"])
	assert.Nil(t, payload2["temp_max"], "unresolved field serializes as null")
}
