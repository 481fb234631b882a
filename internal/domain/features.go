package domain

import (
	"math"
	"time"
)

// TemporalFeatures are the pure calendar-derived columns of a row.
type TemporalFeatures struct {
	Year      int
	Month     int // 1-12
	DayOfYear int // 1-366
	DrySeason int // 1 during a dry window, else 0
}

// DeriveTemporal computes the calendar features for a date.
func DeriveTemporal(date time.Time) TemporalFeatures {
	f := TemporalFeatures{
		Year:      date.Year(),
		Month:     int(date.Month()),
		DayOfYear: date.YearDay(),
	}
	if IsDrySeason(date.Month()) {
		f.DrySeason = 1
	}
	return f
}

// IsDrySeason reports whether the month falls in one of the two annual
// dry windows (Dec-Feb and Jun-Aug) of the study region's bimodal
// climate.
func IsDrySeason(m time.Month) bool {
	switch m {
	case time.December, time.January, time.February,
		time.June, time.July, time.August:
		return true
	default:
		return false
	}
}

// Complete reports whether the row passes the completeness filter:
// mean temperature, mean humidity, and the 7-day accumulator must all
// be resolved. The longer accumulators are derived sums and may be
// legitimately zero, so they do not gate the row.
func (e EnrichedEvent) Complete() bool {
	return !math.IsNaN(e.TempMean) && !math.IsNaN(e.HumidityMean) && !math.IsNaN(e.Precip7d)
}

// Undefined marks every weather field of the row as unresolved. Used
// when the cell has no series or the event day is outside the fetched
// range.
func (e *EnrichedEvent) Undefined() {
	nan := math.NaN()
	e.TempMax = nan
	e.TempMin = nan
	e.TempMean = nan
	e.HumidityMean = nan
	e.WindMax = nan
	e.PrecipDay = nan
	e.Precip7d = nan
	e.Precip14d = nan
	e.Precip30d = nan
}
