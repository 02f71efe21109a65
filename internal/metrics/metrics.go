package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Batch results used as the result label of silver_batches_total.
const (
	ResultSuccess    = "success"
	ResultEmpty      = "empty"
	ResultSchemaErr  = "schema_error"
	ResultIOErr      = "io_error"
	ResultTypeErr    = "type_error"
	ResultOtherError = "error"
)

// Metrics collects transform metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	batches     *prometheus.CounterVec
	rowsRead    prometheus.Counter
	rowsWritten prometheus.Counter
	rowsDropped *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silver_batches_total",
			Help: "Bronze snapshots transformed, by result.",
		}, []string{"result"}),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "silver_rows_read_total",
			Help: "Bronze rows read.",
		}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "silver_rows_written_total",
			Help: "Silver rows written.",
		}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silver_rows_dropped_total",
			Help: "Rows removed by each transform stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "silver_transform_duration_seconds",
			Help:    "Wall time of one bronze to silver transform.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}

	m.registry.MustRegister(m.batches, m.rowsRead, m.rowsWritten, m.rowsDropped, m.duration)
	return m
}

func (m *Metrics) RecordBatch(result string, elapsed time.Duration) {
	m.batches.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) AddRowsRead(n int) {
	m.rowsRead.Add(float64(n))
}

func (m *Metrics) AddRowsWritten(n int) {
	m.rowsWritten.Add(float64(n))
}

func (m *Metrics) AddRowsDropped(stage string, n int) {
	m.rowsDropped.WithLabelValues(stage).Add(float64(n))
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
