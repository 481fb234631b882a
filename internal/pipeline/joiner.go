package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/observability"
)

// WeatherJoiner attaches daily weather features to labeled events. Each
// unique grid cell is fetched from the archive exactly once, covering
// the span of that cell's event dates, and the series is cached for the
// rest of the run. The cache is owned by the joiner, so independent
// runs and tests never share state.
type WeatherJoiner struct {
	provider domain.WeatherProvider
	delay    time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics

	// cache maps cell key to its fetched series. A nil value records a
	// failed fetch so the cell is not retried within the run.
	cache map[string]*domain.WeatherSeries

	// progress, when set, is called after each cell fetch completes.
	progress func(fetched, failed, total int)
}

// NewWeatherJoiner creates a joiner with an empty cache. delay is the
// mandatory pause between consecutive archive requests; progress may be
// nil.
func NewWeatherJoiner(provider domain.WeatherProvider, delay time.Duration, logger *slog.Logger, metrics *observability.Metrics, progress func(fetched, failed, total int)) *WeatherJoiner {
	return &WeatherJoiner{
		provider: provider,
		delay:    delay,
		logger:   logger,
		metrics:  metrics,
		cache:    make(map[string]*domain.WeatherSeries),
		progress: progress,
	}
}

// cellSpan is the inclusive date range a cell's events cover.
type cellSpan struct {
	cell  domain.GridCell
	first time.Time
	last  time.Time
}

// Enrich fetches weather for every unique cell in events and returns
// one enriched row per event. A failed fetch marks all of that cell's
// rows undefined; only context cancellation aborts the whole join.
func (j *WeatherJoiner) Enrich(ctx context.Context, events []domain.Event) ([]domain.EnrichedEvent, error) {
	spans := collectSpans(events)

	j.logger.Info("weather join starting",
		"events", len(events),
		"unique_cells", len(spans),
		"request_delay", j.delay,
	)

	fetched, failed := 0, 0
	for i, span := range spans {
		if err := j.fetchSeries(ctx, span); err != nil {
			return nil, err
		}
		if j.cache[span.cell.Key()] != nil {
			fetched++
		} else {
			failed++
		}
		if j.progress != nil {
			j.progress(fetched, failed, len(spans))
		}

		if i < len(spans)-1 {
			if !sleepWithContext(ctx, j.delay) {
				return nil, ctx.Err()
			}
		}
	}

	enriched := make([]domain.EnrichedEvent, len(events))
	for i, ev := range events {
		enriched[i] = j.enrichOne(ev)
	}
	return enriched, nil
}

// collectSpans computes each unique cell's inclusive event-date range,
// in order of first appearance.
func collectSpans(events []domain.Event) []cellSpan {
	byCell := make(map[string]*cellSpan)
	order := make([]string, 0)

	for _, ev := range events {
		key := ev.Cell.Key()
		span, ok := byCell[key]
		if !ok {
			byCell[key] = &cellSpan{cell: ev.Cell, first: ev.Date, last: ev.Date}
			order = append(order, key)
			continue
		}
		if ev.Date.Before(span.first) {
			span.first = ev.Date
		}
		if ev.Date.After(span.last) {
			span.last = ev.Date
		}
	}

	spans := make([]cellSpan, 0, len(byCell))
	for _, key := range order {
		spans = append(spans, *byCell[key])
	}
	return spans
}

// fetchSeries populates the cache entry for one cell. Fetch failures
// are recorded and logged, never returned; only a cancelled context
// produces an error.
func (j *WeatherJoiner) fetchSeries(ctx context.Context, span cellSpan) error {
	key := span.cell.Key()
	if _, ok := j.cache[key]; ok {
		j.metrics.WeatherCacheLookups.WithLabelValues("hit").Inc()
		return nil
	}
	j.metrics.WeatherCacheLookups.WithLabelValues("miss").Inc()

	days, err := j.provider.FetchDaily(ctx, span.cell, span.first, span.last)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		j.logger.Warn("weather fetch failed, cell rows will be dropped",
			"cell", key,
			"from", span.first.Format(time.DateOnly),
			"to", span.last.Format(time.DateOnly),
			"error", err,
		)
		j.metrics.WeatherFetches.WithLabelValues("error").Inc()
		j.cache[key] = nil
		return nil
	}

	j.metrics.WeatherFetches.WithLabelValues("success").Inc()
	j.cache[key] = domain.NewWeatherSeries(days)
	return nil
}

// enrichOne builds the enriched row for a single event from the cached
// series. A missing series or a day absent from the fetched range
// leaves every weather field undefined.
func (j *WeatherJoiner) enrichOne(ev domain.Event) domain.EnrichedEvent {
	row := domain.EnrichedEvent{Event: ev}

	series := j.cache[ev.Cell.Key()]
	if series == nil {
		row.Undefined()
		return row
	}

	day, ok := series.OnDay(ev.Date)
	if !ok {
		row.Undefined()
		return row
	}

	row.TempMax = day.TempMax
	row.TempMin = day.TempMin
	row.TempMean = day.TempMean
	row.HumidityMean = day.HumidityMean
	row.WindMax = day.WindMax
	row.PrecipDay = day.Precipitation
	row.Precip7d = series.PrecipAccum(ev.Date, 7)
	row.Precip14d = series.PrecipAccum(ev.Date, 14)
	row.Precip30d = series.PrecipAccum(ev.Date, 30)
	return row
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
