// Package dataset persists the final training table. The column order
// and naming here are a contract: the training driver and the trained
// model's metadata both refer to these names.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
)

// Columns is the fixed output header.
var Columns = []string{
	"date", "year", "month", "day_of_year", "dry_season",
	"grid_lat", "grid_lon",
	"temp_max", "temp_min", "temp_mean",
	"humidity_mean", "wind_max",
	"precip_day", "precip_7d", "precip_14d", "precip_30d",
	"fire",
}

// Writer serializes enriched events to a CSV file. Any I/O failure is
// fatal to the run; no partial-output recovery is attempted.
type Writer struct {
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write creates the output file (and its parent directory) and writes
// the header plus one row per event.
func (w *Writer) Write(rows []domain.EnrichedEvent) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write dataset header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(Record(rows[i])); err != nil {
			return fmt.Errorf("write dataset row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush dataset: %w", err)
	}
	return f.Close()
}

// Record maps one enriched event onto the fixed column order.
func Record(e domain.EnrichedEvent) []string {
	t := domain.DeriveTemporal(e.Date)
	return []string{
		e.Date.Format(time.DateOnly),
		strconv.Itoa(t.Year),
		strconv.Itoa(t.Month),
		strconv.Itoa(t.DayOfYear),
		strconv.Itoa(t.DrySeason),
		formatCoord(e.Cell.Lat),
		formatCoord(e.Cell.Lon),
		formatValue(e.TempMax),
		formatValue(e.TempMin),
		formatValue(e.TempMean),
		formatValue(e.HumidityMean),
		formatValue(e.WindMax),
		formatValue(e.PrecipDay),
		formatValue(e.Precip7d),
		formatValue(e.Precip14d),
		formatValue(e.Precip30d),
		strconv.Itoa(e.Fire),
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// formatValue renders a weather field, writing unresolved values as an
// empty cell rather than the literal "NaN".
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
