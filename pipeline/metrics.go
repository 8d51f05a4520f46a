package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the pipeline counters exposed on /metrics in watch mode.
type Metrics struct {
	FilesProcessed prometheus.Counter
	FileFailures   prometheus.Counter
	FileDuration   prometheus.Histogram
}

// NewMetrics registers the pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FilesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "apispec_files_processed_total",
			Help: "Number of specification files enriched.",
		}),
		FileFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "apispec_file_failures_total",
			Help: "Number of specification files that failed enrichment.",
		}),
		FileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "apispec_file_duration_seconds",
			Help:    "Time spent enriching one specification file.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveFile records the outcome of one file.
func (m *Metrics) ObserveFile(result FileResult) {
	m.FilesProcessed.Inc()
	if result.Error != "" {
		m.FileFailures.Inc()
	}
	m.FileDuration.Observe(result.Duration.Seconds())
}
