package domain

import (
	"math"
	"time"
)

// RiskLevel is the ordinal category a fire probability maps to.
type RiskLevel string

const (
	RiskHigh     RiskLevel = "HIGH"
	RiskModerate RiskLevel = "MODERATE"
	RiskLow      RiskLevel = "LOW"
	RiskVeryLow  RiskLevel = "VERY LOW"
)

// ClassifyRisk maps a probability to its risk level. Boundaries are
// exclusive on the upper side: p=0.7 is MODERATE, not HIGH.
func ClassifyRisk(p float64) RiskLevel {
	switch {
	case p > 0.7:
		return RiskHigh
	case p > 0.5:
		return RiskModerate
	case p > 0.3:
		return RiskLow
	default:
		return RiskVeryLow
	}
}

// SensorReading holds the six live measurements the inference path
// accepts; the three temporal features are derived from the clock.
type SensorReading struct {
	TempMean     float64
	HumidityMean float64
	WindMax      float64
	Precip7d     float64
	Precip14d    float64
	Precip30d    float64
}

// Canonical feature names shared by the dataset columns, the trained
// model's metadata, and the inference vector.
const (
	FeatureTempMean     = "temp_mean"
	FeatureHumidityMean = "humidity_mean"
	FeatureWindMax      = "wind_max"
	FeaturePrecip7d     = "precip_7d"
	FeaturePrecip14d    = "precip_14d"
	FeaturePrecip30d    = "precip_30d"
	FeatureMonth        = "month"
	FeatureDayOfYear    = "day_of_year"
	FeatureDrySeason    = "dry_season"
)

// FeatureValues expands a reading into the full named feature set used
// at training time, deriving the temporal features from the package
// clock. Vector ordering is the model metadata's concern, not ours.
func (r SensorReading) FeatureValues() map[string]float64 {
	t := DeriveTemporal(clock.Now())
	return map[string]float64{
		FeatureTempMean:     r.TempMean,
		FeatureHumidityMean: r.HumidityMean,
		FeatureWindMax:      r.WindMax,
		FeaturePrecip7d:     r.Precip7d,
		FeaturePrecip14d:    r.Precip14d,
		FeaturePrecip30d:    r.Precip30d,
		FeatureMonth:        float64(t.Month),
		FeatureDayOfYear:    float64(t.DayOfYear),
		FeatureDrySeason:    float64(t.DrySeason),
	}
}

// Prediction is the inference result handed back to callers.
type Prediction struct {
	Fire        bool      `json:"fire"`
	Probability float64   `json:"probability"` // rounded to 3 decimals
	Level       RiskLevel `json:"level"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewPrediction builds a Prediction from a raw classifier probability.
func NewPrediction(probability float64) Prediction {
	return Prediction{
		Fire:        probability > 0.5,
		Probability: math.Round(probability*1000) / 1000,
		Level:       ClassifyRisk(probability),
		Timestamp:   clock.Now(),
	}
}
