package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records spreadsheet import outcomes.
type ImportMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	rows     *prometheus.CounterVec
	warnings *prometheus.CounterVec
	matched  *prometheus.CounterVec
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_duration_seconds",
		Help:    "Duration of spreadsheet imports in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_runs_total",
		Help: "Spreadsheet imports by kind and final status.",
	}, []string{"kind", "status"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Imported spreadsheet rows by outcome.",
	}, []string{"kind", "outcome"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_coercion_warnings_total",
		Help: "Cells treated as missing because they were not numeric.",
	}, []string{"kind"})
	matched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_interpreters_matched_total",
		Help: "Roster entries whose totals were overwritten by reconciliation.",
	}, []string{"kind"})
	reg.MustRegister(duration, runs, rows, warnings, matched)
	return &ImportMetrics{
		duration: duration,
		runs:     runs,
		rows:     rows,
		warnings: warnings,
		matched:  matched,
	}
}

// ObserveDuration records how long an import took.
func (m *ImportMetrics) ObserveDuration(kind string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncRun counts one finished import.
func (m *ImportMetrics) IncRun(kind, status string) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(kind), normalizeLabel(status)).Inc()
}

// AddRows counts rows with the given outcome (upserted, skipped).
func (m *ImportMetrics) AddRows(kind, outcome string, n int) {
	if m == nil || m.rows == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Add(float64(n))
}

// AddWarnings counts numeric coercion warnings.
func (m *ImportMetrics) AddWarnings(kind string, n int) {
	if m == nil || m.warnings == nil || n <= 0 {
		return
	}
	m.warnings.WithLabelValues(normalizeLabel(kind)).Add(float64(n))
}

// AddMatched counts reconciled roster entries.
func (m *ImportMetrics) AddMatched(kind string, n int) {
	if m == nil || m.matched == nil || n <= 0 {
		return
	}
	m.matched.WithLabelValues(normalizeLabel(kind)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
