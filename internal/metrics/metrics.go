// Package metrics holds the Prometheus counters docdex maintains while
// loading documents and running queries.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcomes recorded under the "outcome" label.
const (
	OutcomeOK           = "ok"
	OutcomeCompileError = "compile_error"
	OutcomeRuntimeError = "runtime_error"
)

// Metrics is a private registry with the docdex counters. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	documentsLoaded    *prometheus.CounterVec
	detectionFallbacks prometheus.Counter
	queries            *prometheus.CounterVec
	queryRows          prometheus.Counter
}

// New creates and registers the docdex counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documentsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "documents_loaded_total",
			Help:      "Documents parsed into storage, by format revision.",
		}, []string{"revision"}),
		detectionFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "detection_fallbacks_total",
			Help:      "Revision detections that needed a full document parse.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "queries_total",
			Help:      "Queries submitted to adapters, by revision and outcome.",
		}, []string{"revision", "outcome"}),
		queryRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "query_rows_total",
			Help:      "Result rows produced by queries.",
		}),
	}
	m.registry.MustRegister(m.documentsLoaded, m.detectionFallbacks, m.queries, m.queryRows)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// DocumentLoaded counts one document parsed at the given revision.
func (m *Metrics) DocumentLoaded(revision uint32) {
	if m == nil {
		return
	}
	m.documentsLoaded.WithLabelValues(strconv.FormatUint(uint64(revision), 10)).Inc()
}

// DetectionFallback counts one slow-path revision detection.
func (m *Metrics) DetectionFallback() {
	if m == nil {
		return
	}
	m.detectionFallbacks.Inc()
}

// Query counts one query with its outcome.
func (m *Metrics) Query(revision uint32, outcome string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(strconv.FormatUint(uint64(revision), 10), outcome).Inc()
}

// Row counts one produced result row.
func (m *Metrics) Row() {
	if m == nil {
		return
	}
	m.queryRows.Inc()
}

// WriteTextfile writes the current values in the Prometheus text format,
// atomically replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
