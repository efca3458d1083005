package web

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the API server
type Metrics struct {
	registry *prometheus.Registry

	// Counters
	requestsTotal  *prometheus.CounterVec
	tasksPromoted  prometheus.Counter
	requestsFailed *prometheus.CounterVec

	// Gauges
	tasksByStatus *prometheus.GaugeVec

	// Histograms
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics on a fresh
// registry so multiple servers can coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiki_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"route", "code"},
		),
		tasksPromoted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shiki_tasks_promoted_total",
				Help: "Total number of tasks promoted to ready via the API",
			},
		),
		requestsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiki_requests_failed_total",
				Help: "Total number of API requests that returned an error",
			},
			[]string{"route"},
		),
		tasksByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shiki_tasks_by_status",
				Help: "Current number of live tasks per status",
			},
			[]string{"status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shiki_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.tasksPromoted,
		m.requestsFailed,
		m.tasksByStatus,
		m.requestDuration,
	)

	return m
}
