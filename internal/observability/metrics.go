package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the feed pipeline.
type Metrics struct {
	// Feed client metrics.
	FeedRequests        *prometheus.CounterVec // labels: outcome={success,transport_error,parse_error}
	FeedRequestDuration prometheus.Histogram

	// Mapper metrics.
	FeaturesMapped  prometheus.Counter
	FeaturesSkipped prometheus.Counter
	MappingErrors   prometheus.Counter

	// Store metrics.
	Refreshes       *prometheus.CounterVec // labels: outcome={success,stale,error,superseded}
	RefreshDuration prometheus.Histogram
	RefreshInFlight prometheus.Gauge
	QuakesHeld      prometheus.Gauge

	// Snapshot publishing metrics.
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter

	PollerRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FeedRequests,
		m.FeedRequestDuration,
		m.FeaturesMapped,
		m.FeaturesSkipped,
		m.MappingErrors,
		m.Refreshes,
		m.RefreshDuration,
		m.RefreshInFlight,
		m.QuakesHeld,
		m.SnapshotsPublished,
		m.PublishErrors,
		m.PollerRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "feed_requests_total",
			Help:      "Feed requests by outcome.",
		}, []string{"outcome"}),
		FeedRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakewatch",
			Name:      "feed_request_duration_seconds",
			Help:      "Duration of a feed request including body decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FeaturesMapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "features_mapped_total",
			Help:      "Total feed features mapped into earthquake records.",
		}),
		FeaturesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "features_skipped_total",
			Help:      "Total feed features dropped by the mapper.",
		}),
		MappingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "mapping_errors_total",
			Help:      "Total feed payloads rejected by the mapper.",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "refreshes_total",
			Help:      "Completed refreshes by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakewatch",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a refresh from request to applied state.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RefreshInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakewatch",
			Name:      "refresh_in_flight",
			Help:      "1 while a refresh is outstanding, 0 otherwise.",
		}),
		QuakesHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakewatch",
			Name:      "quakes_held",
			Help:      "Number of earthquakes in the current list.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "snapshots_published_total",
			Help:      "Total refreshed lists published to the snapshot topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "publish_errors_total",
			Help:      "Total snapshot publish failures.",
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakewatch",
			Name:      "poller_running",
			Help:      "1 when the poller is active, 0 when shut down.",
		}),
	}
}
