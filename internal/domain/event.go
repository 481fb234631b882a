package domain

import (
	"fmt"
	"time"
)

// Detection is one raw satellite fire-detection observation as parsed
// from a FIRMS CSV row.
type Detection struct {
	Timestamp  time.Time
	Latitude   float64
	Longitude  float64
	Brightness float64
	FRP        float64
	Confidence string // instrument-specific encoding, retained verbatim
	SourceFile string
}

// GridCell is a discretized location: the center of a fixed-size grid
// cell, rounded to four decimal places. Cells are value types and are
// compared through Key.
type GridCell struct {
	Lat float64 `json:"grid_lat"`
	Lon float64 `json:"grid_lon"`
}

// Key returns the canonical string form of the cell, used as a map and
// join key. Formatting to four decimals avoids key fragmentation from
// binary floating-point error.
func (c GridCell) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Event is one labeled row of the dataset before weather enrichment.
type Event struct {
	Date time.Time `json:"date"` // calendar day, midnight in the source timezone
	Cell GridCell  `json:"cell"`
	Fire int       `json:"fire"` // 1 = fire observed, 0 = no fire assumed

	// Aggregated detection fields, only meaningful for positive events.
	Brightness float64 `json:"brightness,omitempty"`
	FRP        float64 `json:"frp,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
	Detections int     `json:"detections,omitempty"`
}

// Key returns the (day, cell) identity of the event. Exactly one label
// may exist per key in a well-formed dataset.
func (e Event) Key() string {
	return DayKey(e.Date) + "|" + e.Cell.Key()
}

// DailyWeather is one calendar-day observation for one grid cell.
// Fields the archive could not provide are NaN.
type DailyWeather struct {
	Date          time.Time
	TempMax       float64
	TempMin       float64
	TempMean      float64
	HumidityMean  float64
	WindMax       float64
	Precipitation float64
}

// EnrichedEvent is an Event augmented with same-day weather fields and
// trailing precipitation accumulators. Unresolvable fields are NaN
// until the completeness filter removes the row.
type EnrichedEvent struct {
	Event

	TempMax      float64
	TempMin      float64
	TempMean     float64
	HumidityMean float64
	WindMax      float64
	PrecipDay    float64
	Precip7d     float64
	Precip14d    float64
	Precip30d    float64
}

// DayKey formats a time as its calendar date, in the time's own
// location. Day granularity is the join resolution everywhere.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Day truncates a time to midnight of its calendar date, preserving the
// original location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayUTC maps a time onto UTC midnight of its calendar date. Used for
// day arithmetic so that series fetched in the archive's timezone and
// events keyed in the source timezone land on the same axis.
func dayUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
