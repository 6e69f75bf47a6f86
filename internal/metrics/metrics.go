// Package metrics exposes conversion counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	files     *prometheus.CounterVec
	records   *prometheus.CounterVec
	documents prometheus.Counter
	chunks    prometheus.Counter
	errors    *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ctidoc_files_total",
			Help: "Input files processed, by final job status.",
		}, []string{"status"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ctidoc_records_total",
			Help: "Records converted, by schema tag.",
		}, []string{"tag"}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ctidoc_documents_written_total",
			Help: "Markdown files delivered to sinks.",
		}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ctidoc_chunks_total",
			Help: "Chunk files produced from oversized documents.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ctidoc_errors_total",
			Help: "Failures, by stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ctidoc_conversion_seconds",
			Help:    "Time to parse and render one input file.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	m.registry.MustRegister(m.files, m.records, m.documents, m.chunks, m.errors, m.duration)
	return m
}

// FileDone counts a finished file under its job status.
func (m *Metrics) FileDone(status string) { m.files.WithLabelValues(status).Inc() }

// Record counts one converted record.
func (m *Metrics) Record(tag string) { m.records.WithLabelValues(tag).Inc() }

// Written counts delivered outputs and how many of them were chunks.
func (m *Metrics) Written(documents, chunks int) {
	m.documents.Add(float64(documents))
	m.chunks.Add(float64(chunks))
}

// Error counts a failure at stage (parse, write, cache).
func (m *Metrics) Error(stage string) { m.errors.WithLabelValues(stage).Inc() }

// Observe records a conversion duration.
func (m *Metrics) Observe(d time.Duration) { m.duration.Observe(d.Seconds()) }

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
