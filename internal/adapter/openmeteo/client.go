package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/observability"
)

// dailyVariables is the fixed set of archive variables the dataset
// needs, in the order the response arrays are mapped.
const dailyVariables = "temperature_2m_max,temperature_2m_min,temperature_2m_mean," +
	"relative_humidity_2m_mean,precipitation_sum,wind_speed_10m_max"

// Client implements domain.WeatherProvider against the Open-Meteo
// archive API. One request covers one grid cell's full date span; a
// circuit breaker keeps a flapping archive from being hammered for
// every remaining cell.
type Client struct {
	baseURL    string
	timezone   string
	location   *time.Location
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an archive client. The timezone must be a valid
// IANA name; it scopes the calendar days of the returned series.
func NewClient(baseURL, timezone string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load weather timezone: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "open-meteo-archive",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL:    baseURL,
		timezone:   timezone,
		location:   loc,
		httpClient: &http.Client{Timeout: timeout},
		circuit:    cb,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// FetchDaily requests the daily series for one cell over an inclusive
// date span. Any non-success status, timeout, or malformed payload is
// an error; the caller decides how a missing series degrades.
func (c *Client) FetchDaily(ctx context.Context, cell domain.GridCell, start, end time.Time) ([]domain.DailyWeather, error) {
	params := url.Values{
		"latitude":   {fmt.Sprintf("%.4f", cell.Lat)},
		"longitude":  {fmt.Sprintf("%.4f", cell.Lon)},
		"start_date": {start.Format(time.DateOnly)},
		"end_date":   {end.Format(time.DateOnly)},
		"daily":      {dailyVariables},
		"timezone":   {c.timezone},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create archive request: %w", err)
	}

	began := time.Now()
	result, err := c.circuit.Execute(func() (any, error) {
		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, fmt.Errorf("archive request: %w", doErr)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("archive API error: status %d: %s", resp.StatusCode, body)
		}

		var payload archiveResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
			return nil, fmt.Errorf("decode archive response: %w", decodeErr)
		}
		return &payload, nil
	})
	c.metrics.WeatherAPIDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		return nil, err
	}

	payload := result.(*archiveResponse)
	return c.mapSeries(payload)
}

// mapSeries validates the daily section and converts it into domain
// records. A missing daily block or any column whose length disagrees
// with the time axis makes the whole series unusable.
func (c *Client) mapSeries(payload *archiveResponse) ([]domain.DailyWeather, error) {
	d := payload.Daily
	if len(d.Time) == 0 {
		return nil, fmt.Errorf("archive response has no daily section")
	}
	n := len(d.Time)
	for name, col := range map[string][]*float64{
		"temperature_2m_max":        d.TempMax,
		"temperature_2m_min":        d.TempMin,
		"temperature_2m_mean":       d.TempMean,
		"relative_humidity_2m_mean": d.HumidityMean,
		"precipitation_sum":         d.Precipitation,
		"wind_speed_10m_max":        d.WindMax,
	} {
		if len(col) != n {
			return nil, fmt.Errorf("archive response column %s has %d rows, want %d", name, len(col), n)
		}
	}

	series := make([]domain.DailyWeather, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.ParseInLocation(time.DateOnly, d.Time[i], c.location)
		if err != nil {
			return nil, fmt.Errorf("parse archive date %q: %w", d.Time[i], err)
		}
		series = append(series, domain.DailyWeather{
			Date:          date,
			TempMax:       deref(d.TempMax[i]),
			TempMin:       deref(d.TempMin[i]),
			TempMean:      deref(d.TempMean[i]),
			HumidityMean:  deref(d.HumidityMean[i]),
			WindMax:       deref(d.WindMax[i]),
			Precipitation: deref(d.Precipitation[i]),
		})
	}
	return series, nil
}

// deref converts an optional archive value, mapping JSON null to NaN.
func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Archive API response types.

type archiveResponse struct {
	Daily struct {
		Time          []string   `json:"time"`
		TempMax       []*float64 `json:"temperature_2m_max"`
		TempMin       []*float64 `json:"temperature_2m_min"`
		TempMean      []*float64 `json:"temperature_2m_mean"`
		HumidityMean  []*float64 `json:"relative_humidity_2m_mean"`
		Precipitation []*float64 `json:"precipitation_sum"`
		WindMax       []*float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}
