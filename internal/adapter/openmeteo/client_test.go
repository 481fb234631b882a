package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/observability"
)

const validPayload = `{
	"daily": {
		"time": ["2024-01-14", "2024-01-15", "2024-01-16"],
		"temperature_2m_max": [29.1, 30.2, 28.7],
		"temperature_2m_min": [18.0, 18.4, 17.9],
		"temperature_2m_mean": [23.5, 24.1, 23.0],
		"relative_humidity_2m_mean": [62.0, 58.5, 65.2],
		"precipitation_sum": [0.0, 1.2, 5.4],
		"wind_speed_10m_max": [12.3, 14.0, 9.8]
	}
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(baseURL, "America/Bogota", 5*time.Second, observability.NewMetricsForTesting(), testLogger())
	require.NoError(t, err)
	return c
}

func testSpan() (domain.GridCell, time.Time, time.Time) {
	cell := domain.GridCell{Lat: 3.415, Lon: -76.52}
	start := time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC)
	return cell, start, end
}

func TestClient_FetchDaily_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "3.4150", q.Get("latitude"))
		assert.Equal(t, "-76.5200", q.Get("longitude"))
		assert.Equal(t, "2024-01-14", q.Get("start_date"))
		assert.Equal(t, "2024-01-16", q.Get("end_date"))
		assert.Equal(t, "America/Bogota", q.Get("timezone"))
		assert.Contains(t, q.Get("daily"), "temperature_2m_mean")
		assert.Contains(t, q.Get("daily"), "precipitation_sum")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validPayload))
	}))
	defer srv.Close()

	cell, start, end := testSpan()
	series, err := newTestClient(t, srv.URL).FetchDaily(context.Background(), cell, start, end)
	require.NoError(t, err)

	require.Len(t, series, 3)
	assert.Equal(t, "2024-01-14", domain.DayKey(series[0].Date))
	assert.Equal(t, 23.5, series[0].TempMean)
	assert.Equal(t, 62.0, series[0].HumidityMean)
	assert.Equal(t, 1.2, series[1].Precipitation)
	assert.Equal(t, 9.8, series[2].WindMax)
}

func TestClient_FetchDaily_NullValuesBecomeNaN(t *testing.T) {
	payload := `{
		"daily": {
			"time": ["2024-01-14"],
			"temperature_2m_max": [null],
			"temperature_2m_min": [18.0],
			"temperature_2m_mean": [null],
			"relative_humidity_2m_mean": [62.0],
			"precipitation_sum": [0.0],
			"wind_speed_10m_max": [12.3]
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	cell, start, end := testSpan()
	series, err := newTestClient(t, srv.URL).FetchDaily(context.Background(), cell, start, end)
	require.NoError(t, err)

	require.Len(t, series, 1)
	assert.True(t, math.IsNaN(series[0].TempMax))
	assert.True(t, math.IsNaN(series[0].TempMean))
	assert.Equal(t, 18.0, series[0].TempMin)
}

func TestClient_FetchDaily_MissingDailySection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": false}`))
	}))
	defer srv.Close()

	cell, start, end := testSpan()
	_, err := newTestClient(t, srv.URL).FetchDaily(context.Background(), cell, start, end)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no daily section")
}

func TestClient_FetchDaily_RowCountMismatch(t *testing.T) {
	payload := `{
		"daily": {
			"time": ["2024-01-14", "2024-01-15"],
			"temperature_2m_max": [29.1],
			"temperature_2m_min": [18.0, 18.4],
			"temperature_2m_mean": [23.5, 24.1],
			"relative_humidity_2m_mean": [62.0, 58.5],
			"precipitation_sum": [0.0, 1.2],
			"wind_speed_10m_max": [12.3, 14.0]
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	cell, start, end := testSpan()
	_, err := newTestClient(t, srv.URL).FetchDaily(context.Background(), cell, start, end)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature_2m_max")
}

func TestClient_FetchDaily_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"reason":"Minutely API request limit exceeded"}`))
	}))
	defer srv.Close()

	cell, start, end := testSpan()
	_, err := newTestClient(t, srv.URL).FetchDaily(context.Background(), cell, start, end)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_FetchDaily_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "America/Bogota", 50*time.Millisecond, observability.NewMetricsForTesting(), testLogger())
	require.NoError(t, err)

	cell, start, end := testSpan()
	_, err = c.FetchDaily(context.Background(), cell, start, end)
	require.Error(t, err)
}

func TestClient_FetchDaily_CircuitOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	cell, start, end := testSpan()

	// Consecutive failures eventually trip the breaker; after that the
	// client fails fast without reaching the server.
	for i := 0; i < 10; i++ {
		_, err := c.FetchDaily(context.Background(), cell, start, end)
		require.Error(t, err)
	}
}

func TestNewClient_InvalidTimezone(t *testing.T) {
	_, err := NewClient("http://localhost", "Not/AZone", time.Second, observability.NewMetricsForTesting(), testLogger())
	require.Error(t, err)
}
