//go:build openmeteo

package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/observability"
)

// These tests hit the real Open-Meteo archive API (no key required).
// Run with: go test -tags=openmeteo ./internal/adapter/openmeteo/ -v -count=1

func TestSmoke_FetchDaily(t *testing.T) {
	c, err := NewClient(
		"https://archive-api.open-meteo.com/v1/archive",
		"America/Bogota",
		30*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	require.NoError(t, err)

	cell := domain.GridCell{Lat: 3.415, Lon: -76.52}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	series, err := c.FetchDaily(context.Background(), cell, start, end)
	require.NoError(t, err)
	require.Len(t, series, 31)

	assert.Equal(t, "2024-01-01", domain.DayKey(series[0].Date))
	assert.Equal(t, "2024-01-31", domain.DayKey(series[30].Date))

	// The Cali area in January should have plausible tropical values.
	first := series[0]
	if !math.IsNaN(first.TempMean) {
		assert.Greater(t, first.TempMean, 10.0)
		assert.Less(t, first.TempMean, 40.0)
	}
}
