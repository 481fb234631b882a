package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		p    float64
		want RiskLevel
	}{
		{0.71, RiskHigh},
		{0.95, RiskHigh},
		{0.7, RiskModerate}, // boundary: p=0.7 is not HIGH
		{0.55, RiskModerate},
		{0.5, RiskLow}, // boundary: p=0.5 is not MODERATE
		{0.35, RiskLow},
		{0.3, RiskVeryLow}, // boundary: p=0.3 is not LOW
		{0.10, RiskVeryLow},
		{0, RiskVeryLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyRisk(tt.p), "p=%v", tt.p)
	}
}

func TestNewPrediction(t *testing.T) {
	now := time.Date(2024, time.August, 7, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	t.Run("high probability", func(t *testing.T) {
		p := NewPrediction(0.87654)
		assert.True(t, p.Fire)
		assert.Equal(t, 0.877, p.Probability, "rounded to 3 decimals")
		assert.Equal(t, RiskHigh, p.Level)
		assert.Equal(t, now, p.Timestamp)
	})

	t.Run("low probability", func(t *testing.T) {
		p := NewPrediction(0.1234)
		assert.False(t, p.Fire)
		assert.Equal(t, 0.123, p.Probability)
		assert.Equal(t, RiskVeryLow, p.Level)
	})
}
