package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one
// dataset build. They are exposed by the sidecar HTTP server while the
// batch run is active.
type Metrics struct {
	DetectionsLoaded  prometheus.Counter
	DetectionsDropped prometheus.Counter
	PositiveEvents    prometheus.Counter
	NegativeDraws     *prometheus.CounterVec // labels: outcome={accepted,rejected}
	RowsDropped       prometheus.Counter     // completeness filter
	RowsWritten       prometheus.Counter
	BuildRunning      prometheus.Gauge

	// Weather join metrics.
	WeatherFetches      *prometheus.CounterVec // labels: outcome={success,error}
	WeatherCacheLookups *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration  prometheus.Histogram
}

// NewMetrics creates and registers all build metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DetectionsLoaded,
		m.DetectionsDropped,
		m.PositiveEvents,
		m.NegativeDraws,
		m.RowsDropped,
		m.RowsWritten,
		m.BuildRunning,
		m.WeatherFetches,
		m.WeatherCacheLookups,
		m.WeatherAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// parallel tests do not trip "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DetectionsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dataset",
			Name:      "detections_loaded_total",
			Help:      "Raw detections parsed from the FIRMS source files.",
		}),
		DetectionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dataset",
			Name:      "detections_dropped_total",
			Help:      "Detections discarded for a missing date or invalid coordinates.",
		}),
		PositiveEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dataset",
			Name:      "positive_events_total",
			Help:      "Unique (day, cell) fire events after aggregation.",
		}),
		NegativeDraws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_dataset",
			Name:      "negative_draws_total",
			Help:      "Negative sampling draws by outcome.",
		}, []string{"outcome"}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dataset",
			Name:      "rows_dropped_total",
			Help:      "Rows removed by the feature completeness filter.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_dataset",
			Name:      "rows_written_total",
			Help:      "Rows written to the output dataset.",
		}),
		BuildRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_dataset",
			Name:      "build_running",
			Help:      "1 while a dataset build is in progress.",
		}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_dataset",
			Name:      "weather_fetches_total",
			Help:      "Archive API fetches by outcome, one per unique grid cell.",
		}, []string{"outcome"}),
		WeatherCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_dataset",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_dataset",
			Name:      "weather_api_duration_seconds",
			Help:      "Archive API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}
