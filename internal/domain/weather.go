package domain

import (
	"context"
	"math"
	"time"
)

// WeatherProvider fetches the daily weather series for one grid cell
// over an inclusive date span. Implementations report any non-success
// status, timeout, or malformed payload as an error; callers treat an
// error as "no series for this cell" and carry on.
type WeatherProvider interface {
	FetchDaily(ctx context.Context, cell GridCell, start, end time.Time) ([]DailyWeather, error)
}

// WeatherSeries is a fetched daily series with a by-day index for exact
// date lookups.
type WeatherSeries struct {
	Days  []DailyWeather
	byDay map[string]DailyWeather
}

// NewWeatherSeries indexes a slice of daily observations. A later entry
// for the same calendar day overwrites an earlier one.
func NewWeatherSeries(days []DailyWeather) *WeatherSeries {
	s := &WeatherSeries{Days: days, byDay: make(map[string]DailyWeather, len(days))}
	for _, d := range days {
		s.byDay[DayKey(d.Date)] = d
	}
	return s
}

// OnDay returns the observation for the given calendar day, matched by
// exact date.
func (s *WeatherSeries) OnDay(date time.Time) (DailyWeather, bool) {
	d, ok := s.byDay[DayKey(date)]
	return d, ok
}

// PrecipAccum sums daily precipitation over the window [date-days,
// date-1]: left-closed, right-open at the event day, so same-day
// rainfall never leaks into the accumulator. NaN entries inside the
// window are skipped.
func (s *WeatherSeries) PrecipAccum(date time.Time, days int) float64 {
	target := dayUTC(date)
	start := target.AddDate(0, 0, -days)

	var sum float64
	for _, d := range s.Days {
		day := dayUTC(d.Date)
		if day.Before(start) || !day.Before(target) {
			continue
		}
		if !math.IsNaN(d.Precipitation) {
			sum += d.Precipitation
		}
	}
	return sum
}
