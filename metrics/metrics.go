// Package metrics exports Prometheus instrumentation for crawl tasks.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docscrape"

// Task outcomes used as the "status" label.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Metrics holds every collector of the service.
type Metrics struct {
	registry *prometheus.Registry

	TasksStarted  prometheus.Counter
	TasksFinished *prometheus.CounterVec
	TasksRunning  prometheus.Gauge
	TaskDuration  prometheus.Histogram

	PagesFetched *prometheus.CounterVec
	PageDuration prometheus.Histogram

	ExportBytes *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry. Separate instances never
// share state, so tests can create as many as they need.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TasksStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_started_total",
			Help:      "Crawl tasks accepted.",
		}),
		TasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_finished_total",
			Help:      "Crawl tasks that reached a terminal state.",
		}, []string{"status"}),
		TasksRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_running",
			Help:      "Crawl tasks currently running.",
		}),
		TaskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time of a crawl task from start to terminal state.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Pages processed, labelled by outcome category.",
		}, []string{"outcome"}),
		PageDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Time to fetch and extract one page.",
			Buckets:   prometheus.DefBuckets,
		}),
		ExportBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_bytes",
			Help:      "Size of assembled export artifacts.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}, []string{"format"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TaskStarted records a newly running task.
func (m *Metrics) TaskStarted() {
	m.TasksStarted.Inc()
	m.TasksRunning.Inc()
}

// TaskFinished records a task reaching status after d.
func (m *Metrics) TaskFinished(status string, d time.Duration) {
	m.TasksRunning.Dec()
	m.TasksFinished.WithLabelValues(status).Inc()
	m.TaskDuration.Observe(d.Seconds())
}

// PageProcessed records one page outcome. An empty category means success.
func (m *Metrics) PageProcessed(category string, d time.Duration) {
	outcome := category
	if outcome == "" {
		outcome = "success"
	}
	m.PagesFetched.WithLabelValues(outcome).Inc()
	m.PageDuration.Observe(d.Seconds())
}

// ExportAssembled records the size of an artifact in format.
func (m *Metrics) ExportAssembled(format string, size int) {
	m.ExportBytes.WithLabelValues(format).Observe(float64(size))
}
