// Command ingest merges raw FIRMS detection CSV exports into a single
// normalized file, keeping only detections inside the study bounding
// box. The output feeds builddataset, and the printed stats help keep
// test fixtures honest.
//
// Usage:
//
//	go run ./cmd/ingest \
//	  -in data/firms_raw \
//	  -out data/firms/detections_combined.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/adapter/firms"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "directory containing raw FIRMS CSV files")
	out := flag.String("out", "", "output path for the combined CSV")
	latMin := flag.Float64("lat-min", 3.30, "study area minimum latitude")
	latMax := flag.Float64("lat-max", 3.55, "study area maximum latitude")
	lonMin := flag.Float64("lon-min", -76.65, "study area minimum longitude")
	lonMax := flag.Float64("lon-max", -76.45, "study area maximum longitude")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}

	box := domain.BoundingBox{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax}

	reader := firms.NewReader(slog.Default())
	detections, err := reader.LoadDir(*in)
	if err != nil {
		return fmt.Errorf("loading %s: %w", *in, err)
	}
	log.Printf("loaded: %d detections", len(detections))

	kept := make([]domain.Detection, 0, len(detections))
	for _, d := range detections {
		if !d.Valid() || !box.Contains(d.Latitude, d.Longitude) {
			continue
		}
		kept = append(kept, d)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Timestamp.Before(kept[j].Timestamp) })
	log.Printf("inside study area: %d detections", len(kept))

	if err := writeCombined(*out, kept); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote combined file: %s", *out)

	printStats(kept)
	return nil
}

func writeCombined(path string, detections []domain.Detection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"latitude", "longitude", "acq_date", "brightness", "frp", "confidence"}); err != nil {
		return err
	}
	for _, d := range detections {
		row := []string{
			strconv.FormatFloat(d.Latitude, 'f', -1, 64),
			strconv.FormatFloat(d.Longitude, 'f', -1, 64),
			d.Timestamp.Format(time.DateOnly),
			strconv.FormatFloat(d.Brightness, 'f', -1, 64),
			strconv.FormatFloat(d.FRP, 'f', -1, 64),
			d.Confidence,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func printStats(detections []domain.Detection) {
	if len(detections) == 0 {
		fmt.Println("\nno detections inside the study area")
		return
	}

	byYear := map[int]int{}
	uniqueDays := map[string]struct{}{}
	var maxBrightness, maxFRP float64
	for _, d := range detections {
		byYear[d.Timestamp.Year()]++
		uniqueDays[domain.DayKey(d.Timestamp)] = struct{}{}
		maxBrightness = math.Max(maxBrightness, d.Brightness)
		maxFRP = math.Max(maxFRP, d.FRP)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(detections))
	fmt.Printf("Range: %s -> %s\n",
		detections[0].Timestamp.Format(time.DateOnly),
		detections[len(detections)-1].Timestamp.Format(time.DateOnly))
	fmt.Printf("Unique days: %d\n", len(uniqueDays))
	fmt.Printf("Max brightness: %g, max FRP: %g\n", maxBrightness, maxFRP)
	fmt.Print("By year: ")
	for _, y := range years {
		fmt.Printf("%d=%d ", y, byYear[y])
	}
	fmt.Println()
}
