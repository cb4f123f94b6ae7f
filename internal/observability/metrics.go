package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climatology"

// Metrics holds the Prometheus counters, histograms, and gauges for the climatology pipeline.
type Metrics struct {
	ObservationsConsumed prometheus.Counter
	ParseErrors          prometheus.Counter
	RecordsSkipped       prometheus.Counter
	SummariesProduced    prometheus.Counter
	AggregationErrors    prometheus.Counter
	PipelineRunning      prometheus.Gauge
	StationsTracked      prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Aggregation metrics.
	AggregationDuration prometheus.Histogram
	SummaryCache        *prometheus.CounterVec // labels: result={hit,miss}
	SinkBreakerOpen     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ObservationsConsumed,
		m.ParseErrors,
		m.RecordsSkipped,
		m.SummariesProduced,
		m.AggregationErrors,
		m.PipelineRunning,
		m.StationsTracked,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.AggregationDuration,
		m.SummaryCache,
		m.SinkBreakerOpen,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObservationsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_consumed_total",
			Help:      "Total observation messages read from the source topic.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Total observation messages that could not be decoded.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Total observations without a year and valid month, excluded from every statistic.",
		}),
		SummariesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_produced_total",
			Help:      "Total station climatologies written to the sink topic.",
		}),
		AggregationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_errors_total",
			Help:      "Total station climatology computations that failed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		StationsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations_tracked",
			Help:      "Number of stations with observation history in memory.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-aggregate-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of one station climatology computation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		SummaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_total",
			Help:      "Climatology cache lookups by result.",
		}, []string{"result"}),
		SinkBreakerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sink_breaker_open",
			Help:      "1 while the sink circuit breaker is open, 0 otherwise.",
		}),
	}
}
