// Package pipeline orchestrates a dataset build: load raw detections,
// aggregate positives, sample negatives, join weather, filter, and
// persist the final training table.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	httpadapter "github.com/valenlzmj2001/wildfire-risk-pipeline/internal/adapter/http"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/observability"
)

// DetectionSource loads raw detections from a directory of source files.
type DetectionSource interface {
	LoadDir(dir string) ([]domain.Detection, error)
}

// DatasetWriter persists the final table.
type DatasetWriter interface {
	Write(rows []domain.EnrichedEvent) error
}

// EventPublisher pushes the final rows to a downstream sink.
type EventPublisher interface {
	PublishBatch(ctx context.Context, runID string, events []domain.EnrichedEvent) error
}

// Params collects the builder's collaborators and study settings.
type Params struct {
	Source    DetectionSource
	Joiner    *WeatherJoiner
	Writer    DatasetWriter
	Publisher EventPublisher // optional

	DetectionDir  string
	Box           domain.BoundingBox
	StartDate     time.Time
	EndDate       time.Time
	CellSize      float64
	NegativeRatio int
	Seed          int64

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Builder runs one dataset build end to end.
type Builder struct {
	p     Params
	runID string

	ready atomic.Bool

	mu     sync.Mutex
	status httpadapter.BuildStatus
}

// New creates a Builder with a fresh run ID. The joiner's progress
// callback should be wired to (*Builder).CellProgress.
func New(p Params) *Builder {
	b := &Builder{p: p, runID: uuid.NewString()}
	b.status = httpadapter.BuildStatus{RunID: b.runID, Stage: "pending"}
	return b
}

// SetJoiner attaches the weather joiner. The joiner takes the builder's
// CellProgress callback, so it is wired after construction.
func (b *Builder) SetJoiner(j *WeatherJoiner) { b.p.Joiner = j }

// RunID identifies this build in logs, status, and published messages.
func (b *Builder) RunID() string { return b.runID }

// CheckReadiness returns nil once the raw detections have been loaded.
func (b *Builder) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("detections not loaded yet")
	}
	return nil
}

// Status returns a snapshot of the build's progress.
func (b *Builder) Status() httpadapter.BuildStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// CellProgress records weather-join progress; wired into the joiner.
func (b *Builder) CellProgress(fetched, failed, total int) {
	b.update(func(s *httpadapter.BuildStatus) {
		s.CellsFetched = fetched
		s.CellsFailed = failed
		s.CellsTotal = total
	})
}

func (b *Builder) update(fn func(*httpadapter.BuildStatus)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.status)
}

// Run executes the build. Source and output I/O failures are fatal;
// weather and publish failures are not.
func (b *Builder) Run(ctx context.Context) error {
	start := time.Now()
	b.p.Metrics.BuildRunning.Set(1)
	defer b.p.Metrics.BuildRunning.Set(0)

	b.update(func(s *httpadapter.BuildStatus) {
		s.Stage = "loading"
		s.StartedAt = start
	})
	b.p.Logger.Info("dataset build starting",
		"run_id", b.runID,
		"detection_dir", b.p.DetectionDir,
		"negative_ratio", b.p.NegativeRatio,
		"seed", b.p.Seed,
	)

	positives, err := b.loadPositives()
	if err != nil {
		return err
	}

	b.update(func(s *httpadapter.BuildStatus) { s.Stage = "sampling" })
	negatives := b.sampleNegatives(positives)

	events := make([]domain.Event, 0, len(positives)+len(negatives))
	events = append(events, positives...)
	events = append(events, negatives...)

	b.update(func(s *httpadapter.BuildStatus) { s.Stage = "enriching" })
	enriched, err := b.p.Joiner.Enrich(ctx, events)
	if err != nil {
		return err
	}

	b.update(func(s *httpadapter.BuildStatus) { s.Stage = "writing" })
	rows := b.filterComplete(enriched)
	if err := b.p.Writer.Write(rows); err != nil {
		return err
	}
	b.p.Metrics.RowsWritten.Add(float64(len(rows)))

	b.publish(ctx, rows)

	b.update(func(s *httpadapter.BuildStatus) { s.Stage = "done" })
	b.p.Logger.Info("dataset build finished",
		"run_id", b.runID,
		"positives", len(positives),
		"negatives", len(negatives),
		"rows_written", len(rows),
		"rows_dropped", len(enriched)-len(rows),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// loadPositives reads the detection files, filters to the study box,
// and aggregates to labeled-positive events.
func (b *Builder) loadPositives() ([]domain.Event, error) {
	detections, err := b.p.Source.LoadDir(b.p.DetectionDir)
	if err != nil {
		return nil, err
	}
	b.p.Metrics.DetectionsLoaded.Add(float64(len(detections)))
	b.ready.Store(true)

	inBox := detections[:0]
	for _, d := range detections {
		if b.p.Box.Contains(d.Latitude, d.Longitude) {
			inBox = append(inBox, d)
		}
	}

	positives, dropped := domain.AggregatePositives(inBox, b.p.CellSize)
	b.p.Metrics.DetectionsDropped.Add(float64(dropped))
	b.p.Metrics.PositiveEvents.Add(float64(len(positives)))
	b.update(func(s *httpadapter.BuildStatus) { s.Positives = len(positives) })

	if len(positives) == 0 {
		b.p.Logger.Warn("no positive events in study area, dataset will be empty")
	}
	b.p.Logger.Info("positives aggregated",
		"detections", len(detections),
		"in_box", len(inBox),
		"dropped", dropped,
		"positives", len(positives),
	)
	return positives, nil
}

// sampleNegatives draws the labeled-negative events. The realized count
// may fall short of the nominal target when draws collide with
// positives; the shortfall is logged, never topped up.
func (b *Builder) sampleNegatives(positives []domain.Event) []domain.Event {
	dates := domain.DateRange(b.p.StartDate, b.p.EndDate)
	cells := domain.GridCells(b.p.Box, b.p.CellSize)
	target := len(positives) * b.p.NegativeRatio

	sampler := domain.NewSeededSampler(b.p.Seed)
	negatives, rejected := sampler.Sample(dates, cells, domain.PositiveKeys(positives), target)

	b.p.Metrics.NegativeDraws.WithLabelValues("accepted").Add(float64(len(negatives)))
	b.p.Metrics.NegativeDraws.WithLabelValues("rejected").Add(float64(rejected))
	b.update(func(s *httpadapter.BuildStatus) { s.Negatives = len(negatives) })

	b.p.Logger.Info("negatives sampled",
		"target", target,
		"accepted", len(negatives),
		"rejected", rejected,
		"candidate_dates", len(dates),
		"candidate_cells", len(cells),
	)
	return negatives
}

// filterComplete applies the completeness filter to the enriched rows.
func (b *Builder) filterComplete(enriched []domain.EnrichedEvent) []domain.EnrichedEvent {
	rows := make([]domain.EnrichedEvent, 0, len(enriched))
	for _, e := range enriched {
		if !e.Complete() {
			b.p.Metrics.RowsDropped.Inc()
			continue
		}
		rows = append(rows, e)
	}
	b.update(func(s *httpadapter.BuildStatus) {
		s.RowsWritten = len(rows)
		s.RowsIncomplete = len(enriched) - len(rows)
	})
	return rows
}

// publish pushes the final rows to the optional sink. Failures are
// logged and swallowed; the dataset on disk is already complete.
func (b *Builder) publish(ctx context.Context, rows []domain.EnrichedEvent) {
	if b.p.Publisher == nil {
		return
	}
	if err := b.p.Publisher.PublishBatch(ctx, b.runID, rows); err != nil {
		b.p.Logger.Warn("publish failed", "error", err, "rows", len(rows))
		return
	}
	b.p.Logger.Info("rows published", "rows", len(rows))
}
