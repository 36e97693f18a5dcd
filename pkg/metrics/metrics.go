// Package metrics provides Prometheus metrics for the feature pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for a pipeline process.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Run-level metrics.
	runsTotal     prometheus.Counter
	runsDegraded  prometheus.Counter
	runsFailed    prometheus.Counter
	rowsProcessed prometheus.Counter
	runDuration   prometheus.Histogram

	// Extractor metrics.
	extractorDuration  *prometheus.HistogramVec
	extractorFeatures  *prometheus.GaugeVec
	extractorFailures  *prometheus.CounterVec
	leakageViolations  prometheus.Counter
	mergeDuration      prometheus.Histogram
	featureVocabulary  prometheus.Gauge

	// History accessor metrics.
	historyFetchLatency prometheus.Histogram
	historyRowsFetched  prometheus.Counter
}

// Global manager on a private registry so the default Go collectors stay out.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "keiba",
		subsystem: "features",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.runsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "runs_total", Help: "Pipeline runs started.",
	})
	m.runsDegraded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "runs_degraded_total", Help: "Runs that completed with at least one degraded Phase-2 extractor.",
	})
	m.runsFailed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "runs_failed_total", Help: "Runs aborted by a fatal error.",
	})
	m.rowsProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rows_processed_total", Help: "Feature rows (race, horse) produced.",
	})
	m.runDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "run_duration_seconds", Help: "End-to-end pipeline run duration.",
		Buckets: prometheus.DefBuckets,
	})
	m.extractorDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "extractor_duration_seconds", Help: "Per-extractor wall time.",
		Buckets: prometheus.DefBuckets,
	}, []string{"extractor"})
	m.extractorFeatures = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "extractor_feature_count", Help: "Columns contributed per extractor in the last run.",
	}, []string{"extractor"})
	m.extractorFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "extractor_failures_total", Help: "Extractor errors, fatal or degraded.",
	}, []string{"extractor"})
	m.leakageViolations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "leakage_violations_total", Help: "History rows observed at or after the as-of date.",
	})
	m.mergeDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "merge_duration_seconds", Help: "Time spent merging extractor blocks.",
		Buckets: prometheus.DefBuckets,
	})
	m.featureVocabulary = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "feature_vocabulary_size", Help: "Total feature names in the last run.",
	})
	m.historyFetchLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "history_fetch_seconds", Help: "History accessor fetch latency.",
		Buckets: prometheus.DefBuckets,
	})
	m.historyRowsFetched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "history_rows_fetched_total", Help: "Participation records served by the history accessor.",
	})

	return m
}

// Registry returns the private registry for exposition via promhttp.
func Registry() *prometheus.Registry { return customRegistry }

// Package-level recording helpers delegating to the global manager.

func RecordRunStart()                 { globalManager.runsTotal.Inc() }
func RecordRunDegraded()              { globalManager.runsDegraded.Inc() }
func RecordRunFailed()                { globalManager.runsFailed.Inc() }
func RecordRows(n int)                { globalManager.rowsProcessed.Add(float64(n)) }
func RecordRunDuration(sec float64)   { globalManager.runDuration.Observe(sec) }
func RecordMergeDuration(sec float64) { globalManager.mergeDuration.Observe(sec) }
func RecordVocabularySize(n int)      { globalManager.featureVocabulary.Set(float64(n)) }
func RecordLeakageViolation()         { globalManager.leakageViolations.Inc() }

func RecordExtractorDuration(name string, sec float64) {
	globalManager.extractorDuration.WithLabelValues(name).Observe(sec)
}

func RecordExtractorFeatures(name string, n int) {
	globalManager.extractorFeatures.WithLabelValues(name).Set(float64(n))
}

func RecordExtractorFailure(name string) {
	globalManager.extractorFailures.WithLabelValues(name).Inc()
}

func RecordHistoryFetch(sec float64, rows int) {
	globalManager.historyFetchLatency.Observe(sec)
	globalManager.historyRowsFetched.Add(float64(rows))
}
