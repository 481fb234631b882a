package domain

import (
	"math"
	"time"
)

// DefaultCellSize is the grid resolution in degrees, roughly 500 m.
const DefaultCellSize = 0.005

// BoundingBox delimits the study area. Min bounds are inclusive, max
// bounds are exclusive for grid generation, matching the half-open
// tiling of the reference datasets.
type BoundingBox struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Contains reports whether a point falls inside the box (all bounds
// inclusive, as used when filtering raw detections).
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// Discretize snaps a coordinate pair onto the grid: each axis is
// rounded to the nearest multiple of cellSize, then to four decimal
// places. Two raw coordinates within half a cell of the same center
// always produce an identical GridCell.
func Discretize(lat, lon, cellSize float64) GridCell {
	return GridCell{
		Lat: snap(lat, cellSize),
		Lon: snap(lon, cellSize),
	}
}

func snap(v, cellSize float64) float64 {
	return roundPlaces(math.Round(v/cellSize)*cellSize, 4)
}

func roundPlaces(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// GridCells tiles the bounding box at cellSize resolution, latitude
// varying slowest. Min bounds are included, max bounds excluded. Cell
// coordinates are computed by index so a long axis does not accumulate
// floating-point drift.
func GridCells(box BoundingBox, cellSize float64) []GridCell {
	nLat := axisSteps(box.LatMin, box.LatMax, cellSize)
	nLon := axisSteps(box.LonMin, box.LonMax, cellSize)

	cells := make([]GridCell, 0, nLat*nLon)
	for i := 0; i < nLat; i++ {
		lat := roundPlaces(box.LatMin+float64(i)*cellSize, 4)
		for j := 0; j < nLon; j++ {
			lon := roundPlaces(box.LonMin+float64(j)*cellSize, 4)
			cells = append(cells, GridCell{Lat: lat, Lon: lon})
		}
	}
	return cells
}

func axisSteps(min, max, step float64) int {
	if max <= min || step <= 0 {
		return 0
	}
	return int(math.Ceil((max - min - 1e-9) / step))
}

// DateRange expands an inclusive date range into one entry per day, at
// midnight in start's location.
func DateRange(start, end time.Time) []time.Time {
	first := Day(start)
	last := Day(end)
	if last.Before(first) {
		return nil
	}

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
