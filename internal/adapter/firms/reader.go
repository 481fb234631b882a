// Package firms reads NASA FIRMS fire-detection CSV exports.
//
// Export column naming drifts across FIRMS download tools and archive
// vintages, so headers are matched case-insensitively and through a
// small synonym table (lat/latitud/latitude, lon/longitud/longitude,
// date/acq_date). A file that still lacks one of the three required
// columns after mapping is skipped entirely, with a diagnostic naming
// the missing columns.
package firms

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
)

// Canonical column names after normalization.
const (
	colLatitude   = "latitude"
	colLongitude  = "longitude"
	colDate       = "acq_date"
	colBrightness = "brightness"
	colFRP        = "frp"
	colConfidence = "confidence"
)

// synonyms maps alternate header spellings onto canonical names.
var synonyms = map[string]string{
	"lat":      colLatitude,
	"latitud":  colLatitude,
	"lon":      colLongitude,
	"longitud": colLongitude,
	"date":     colDate,
}

// Reader loads detection records from FIRMS CSV files.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// LoadDir reads every .csv file in dir (sorted by name for
// reproducibility) and concatenates their detections. Files that
// cannot be read or lack required columns are skipped with a
// diagnostic; an empty directory is an error because the pipeline
// cannot build a dataset from nothing.
func (r *Reader) LoadDir(dir string) ([]domain.Detection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read detection dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files in %s", dir)
	}

	var all []domain.Detection
	for _, path := range paths {
		detections, err := r.LoadFile(path)
		if err != nil {
			r.logger.Warn("skipping detection file", "file", filepath.Base(path), "error", err)
			continue
		}
		all = append(all, detections...)
	}
	return all, nil
}

// LoadFile parses one FIRMS CSV. Rows whose date or coordinates do not
// parse are returned with zero/NaN fields and left to the aggregator's
// validity filter, so the drop is counted in one place.
func (r *Reader) LoadFile(path string) ([]domain.Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, missing := mapColumns(header)
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %v", missing)
	}

	source := filepath.Base(path)
	var detections []domain.Detection
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		detections = append(detections, mapRow(row, cols, source))
	}
	return detections, nil
}

// mapColumns normalizes header names and resolves synonyms, returning
// the canonical-name → index mapping and any required columns that are
// still absent.
func mapColumns(header []string) (map[string]int, []string) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := synonyms[name]; ok {
			name = canonical
		}
		if _, taken := cols[name]; !taken {
			cols[name] = i
		}
	}

	var missing []string
	for _, required := range []string{colLatitude, colLongitude, colDate} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	return cols, missing
}

func mapRow(row []string, cols map[string]int, source string) domain.Detection {
	return domain.Detection{
		Timestamp:  parseDate(field(row, cols, colDate)),
		Latitude:   parseFloatOrNaN(field(row, cols, colLatitude)),
		Longitude:  parseFloatOrNaN(field(row, cols, colLongitude)),
		Brightness: parseFloatOrZero(field(row, cols, colBrightness)),
		FRP:        parseFloatOrZero(field(row, cols, colFRP)),
		Confidence: strings.TrimSpace(field(row, cols, colConfidence)),
		SourceFile: source,
	}
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseDate coerces a detection date, returning the zero time when the
// value does not parse so the row is dropped downstream.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, "2006/01/02", time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseFloatOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
