// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for an export run. All methods are
// safe on a nil receiver so callers need not check whether metrics are on.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PagesTotal      *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	LastRunSuccess  prometheus.Gauge
	LastRunTime     prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canvas_export_requests_total",
			Help: "Canvas API requests by endpoint and HTTP status (0 = no response).",
		},
		[]string{"endpoint", "code"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "canvas_export_request_duration_seconds",
			Help:    "Canvas API request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canvas_export_pages_total",
			Help: "Pages seen by the exporter by outcome (written, skipped, failed, filtered).",
		},
		[]string{"result"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canvas_export_errors_total",
			Help: "Errors by kind.",
		},
		[]string{"kind"},
	)
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "canvas_export_last_run_success",
		Help: "1 if the last run finished without failures, 0 otherwise.",
	})
	lastTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "canvas_export_last_run_timestamp_seconds",
		Help: "Unix time the last run finished.",
	})

	registry.MustRegister(requests, requestDuration, pages, errorsTotal, lastSuccess, lastTime)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		PagesTotal:      pages,
		ErrorsTotal:     errorsTotal,
		LastRunSuccess:  lastSuccess,
		LastRunTime:     lastTime,
	}
}

// ObserveRequest records one Canvas API exchange.
func (m *Metrics) ObserveRequest(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// AddPages adds n to the pages counter for result.
func (m *Metrics) AddPages(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PagesTotal.WithLabelValues(result).Add(float64(n))
}

// IncError increments the errors counter for kind.
func (m *Metrics) IncError(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// Finish records the run outcome.
func (m *Metrics) Finish(success bool, at time.Time) {
	if m == nil {
		return
	}
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
	m.LastRunTime.Set(float64(at.Unix()))
}

// WriteFile writes the registry in Prometheus text format to path, in the
// form node_exporter's textfile collector reads.
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
